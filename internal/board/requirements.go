package board

import (
	"sort"

	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

// Relation says which requirement list an edge came from.
type Relation string

const (
	RelationCursar  Relation = "cursar"
	RelationAprobar Relation = "aprobar"
)

// Dependent is a reverse edge: DependentID lists the indexed subject among
// its requirements.
type Dependent struct {
	DependentID string
	Relation    Relation
	Type        plan.ReqType
}

// Satisfies reports whether the referenced subject's effective status meets
// the requirement tier. Unresolvable ids and subjects without a record fail.
func Satisfies(r plan.Requirement, lookup record.EffectiveLookup) bool {
	if r.ID == "" || lookup == nil {
		return false
	}
	tag, ok := lookup(r.ID)
	if !ok {
		return false
	}
	if r.Type == plan.ReqRegularizada {
		return tag.Regularized()
	}
	return tag.Approved()
}

// MeetsCursarRequirements reports whether every cursar requirement of s is
// satisfied. A requirement on s itself never is.
func MeetsCursarRequirements(s plan.Subject, lookup record.EffectiveLookup) bool {
	for _, r := range s.Requirements.Cursar {
		if r.ID == s.Code || !Satisfies(r, lookup) {
			return false
		}
	}
	return true
}

// MissingCursarRequirements returns the cursar requirements of s that are not
// satisfied, in declaration order.
func MissingCursarRequirements(s plan.Subject, lookup record.EffectiveLookup) []plan.Requirement {
	var out []plan.Requirement
	for _, r := range s.Requirements.Cursar {
		if r.ID == s.Code || !Satisfies(r, lookup) {
			out = append(out, r)
		}
	}
	return out
}

// BuildDependentsIndex inverts the cursar and aprobar lists of subjects.
// Entries for each target keep subject order, cursar edges before aprobar.
func BuildDependentsIndex(subjects []plan.Subject) map[string][]Dependent {
	idx := make(map[string][]Dependent)
	for _, s := range subjects {
		for _, r := range s.Requirements.Cursar {
			if r.ID == "" {
				continue
			}
			idx[r.ID] = append(idx[r.ID], Dependent{DependentID: s.Code, Relation: RelationCursar, Type: r.Type})
		}
	}
	for _, s := range subjects {
		for _, r := range s.Requirements.Aprobar {
			if r.ID == "" {
				continue
			}
			idx[r.ID] = append(idx[r.ID], Dependent{DependentID: s.Code, Relation: RelationAprobar, Type: r.Type})
		}
	}
	return idx
}

// Availability classifies a subject on the board.
type Availability int

const (
	Locked Availability = iota
	Available
	Started
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Started:
		return "started"
	}
	return "locked"
}

// Classify places s as locked, available or started.
func Classify(s plan.Subject, lookup record.Lookup) Availability {
	if !MeetsCursarRequirements(s, lookup.Effective()) {
		return Locked
	}
	if _, ok := lookup(s.Code); ok {
		return Started
	}
	return Available
}

// NewlyUnlocked returns the codes in after that are not in before, sorted.
func NewlyUnlocked(before, after []string) []string {
	seen := make(map[string]bool, len(before))
	for _, c := range before {
		seen[c] = true
	}
	var out []string
	for _, c := range after {
		if !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	sort.Strings(out)
	return out
}

// effectiveOf is a nil-safe effective status read.
func effectiveOf(lookup record.Lookup, code string) (status.Tag, bool) {
	if lookup == nil {
		return "", false
	}
	r, ok := lookup(code)
	if !ok {
		return "", false
	}
	return r.Effective(), true
}
