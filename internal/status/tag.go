package status

import (
	"fmt"
	"strings"
)

// Tag is the status of a started subject.
type Tag string

const (
	Promocionada   Tag = "Promocionada"
	Regularizada   Tag = "Regularizada"
	Aprobada       Tag = "Aprobada"
	Desaprobada    Tag = "Desaprobada"
	NoRegularizada Tag = "No regularizada"
	FaltanNotas    Tag = "Faltan notas"
)

// legacyFaltanExamenes was written by older versions when a subject was started.
const legacyFaltanExamenes = "Faltan examenes"

// AllTags returns every status in display order.
func AllTags() []Tag {
	return []Tag{Promocionada, Aprobada, Regularizada, NoRegularizada, Desaprobada, FaltanNotas}
}

// ParseTag converts a stored or user-typed status to a Tag. Matching is
// case-insensitive and accepts the legacy "Faltan examenes" spelling.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, legacyFaltanExamenes) {
		return FaltanNotas, nil
	}
	for _, t := range AllTags() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether t is one of the known statuses.
func (t Tag) Valid() bool {
	for _, k := range AllTags() {
		if t == k {
			return true
		}
	}
	return false
}

// Approved reports whether t counts as passing the subject.
func (t Tag) Approved() bool {
	return t == Aprobada || t == Promocionada
}

// Regularized reports whether t is at least regularized.
func (t Tag) Regularized() bool {
	return t == Regularizada || t.Approved()
}

// Terminal reports whether the subject is no longer being attended.
// Non-terminal statuses count as in progress.
func (t Tag) Terminal() bool {
	switch t {
	case Aprobada, Promocionada, Regularizada, Desaprobada:
		return true
	}
	return false
}

// Label returns a short label for display.
func (t Tag) Label() string {
	if t == "" {
		return "Sin empezar"
	}
	return string(t)
}

// Icon returns a single-character marker for the status.
func (t Tag) Icon() string {
	switch t {
	case Promocionada:
		return "★"
	case Aprobada:
		return "✓"
	case Regularizada:
		return "◐"
	case Desaprobada:
		return "✗"
	case NoRegularizada:
		return "!"
	case FaltanNotas:
		return "…"
	}
	return " "
}

// UnmarshalText normalizes stored statuses, including the legacy spelling.
// Unknown values are kept as-is and report false from Valid.
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := ParseTag(string(b))
	if err != nil {
		*t = Tag(b)
		return nil
	}
	*t = parsed
	return nil
}
