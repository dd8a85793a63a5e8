package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWeekHours is used when a subject does not declare its weekly load.
const DefaultWeekHours = 6

// ReqType is the status tier a prerequisite must reach.
type ReqType string

const (
	ReqAprobada     ReqType = "aprobada"
	ReqRegularizada ReqType = "regularizada"
)

// Requirement is an edge of the prerequisite graph: the referenced subject
// must reach at least the given tier.
type Requirement struct {
	ID   string
	Type ReqType
}

// requirementDoc is the object form of a requirement. Older plans name the
// target with "code" instead of "id".
type requirementDoc struct {
	ID   string  `json:"id,omitempty" yaml:"id,omitempty"`
	Code string  `json:"code,omitempty" yaml:"code,omitempty"`
	Type ReqType `json:"type,omitempty" yaml:"type,omitempty"`
}

func (d requirementDoc) requirement() Requirement {
	r := Requirement{ID: strings.TrimSpace(d.ID), Type: d.Type}
	if r.ID == "" {
		r.ID = strings.TrimSpace(d.Code)
	}
	if r.Type == "" {
		r.Type = ReqAprobada
	}
	return r
}

// UnmarshalJSON accepts either a bare id string or an object.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = Requirement{ID: strings.TrimSpace(id), Type: ReqAprobada}
		return nil
	}
	var d requirementDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("requirement: %w", err)
	}
	*r = d.requirement()
	return nil
}

// MarshalJSON writes the object form.
func (r Requirement) MarshalJSON() ([]byte, error) {
	return json.Marshal(requirementDoc{ID: r.ID, Type: r.Type})
}

// UnmarshalYAML accepts either a scalar id or a mapping.
func (r *Requirement) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*r = Requirement{ID: strings.TrimSpace(n.Value), Type: ReqAprobada}
		return nil
	}
	var d requirementDoc
	if err := n.Decode(&d); err != nil {
		return fmt.Errorf("requirement: %w", err)
	}
	*r = d.requirement()
	return nil
}

// Requirements groups the prerequisites to attend (cursar) and to sit the
// final exam (aprobar).
type Requirements struct {
	Cursar  []Requirement `json:"cursar,omitempty" yaml:"cursar,omitempty"`
	Aprobar []Requirement `json:"aprobar,omitempty" yaml:"aprobar,omitempty"`
}

// Subject is immutable reference data for one course of the plan.
type Subject struct {
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	WeekHours    int          `json:"weekHours"`
	Requirements Requirements `json:"requirements"`
	// Elective marks subjects from the elective catalogue.
	Elective bool `json:"elective,omitempty"`
}

// subjectDoc distinguishes a missing weekHours from an explicit zero.
type subjectDoc struct {
	Code         string       `json:"code" yaml:"code"`
	Name         string       `json:"name" yaml:"name"`
	WeekHours    *int         `json:"weekHours" yaml:"weekHours"`
	Requirements Requirements `json:"requirements" yaml:"requirements"`
}

func (d subjectDoc) subject(elective bool) Subject {
	s := Subject{
		Code:         strings.TrimSpace(d.Code),
		Name:         d.Name,
		WeekHours:    DefaultWeekHours,
		Requirements: d.Requirements,
		Elective:     elective,
	}
	if d.WeekHours != nil {
		s.WeekHours = *d.WeekHours
	}
	return s
}

// Module is a column of the board (usually a year) or, when not rendered,
// the elective catalogue.
type Module struct {
	ID        string
	Name      string
	Render    bool
	Electivas int
	Subjects  []Subject
}

// ElectivesModuleID is the id of the elective catalogue module.
const ElectivesModuleID = "electives"
