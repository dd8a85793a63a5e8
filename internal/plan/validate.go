package plan

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Validate performs the structural checks on a plan and returns one error
// listing every problem found, or nil.
func Validate(p *Plan) error {
	var errs []string

	v := p.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Major(v) != "v1" {
		errs = append(errs, fmt.Sprintf("unsupported plan version %q (want v1.x.y)", p.Version))
	}

	seen := make(map[string]bool)
	var all []Subject
	for _, m := range p.Modules {
		if m.Electivas < 0 {
			errs = append(errs, fmt.Sprintf("module %q: electivas must be >= 0, got %d", m.ID, m.Electivas))
		}
		for _, s := range m.Subjects {
			if seen[s.Code] {
				errs = append(errs, fmt.Sprintf("duplicate subject code: %q", s.Code))
				continue
			}
			seen[s.Code] = true
			all = append(all, s)
			if s.WeekHours < 0 {
				errs = append(errs, fmt.Sprintf("subject %q: weekHours must be >= 0, got %d", s.Code, s.WeekHours))
			}
		}
	}

	for _, s := range all {
		for _, r := range s.allRequirements() {
			switch {
			case r.ID == "":
				errs = append(errs, fmt.Sprintf("subject %q has a requirement without id", s.Code))
			case !seen[r.ID]:
				errs = append(errs, fmt.Sprintf("subject %q references nonexistent requirement %q", s.Code, r.ID))
			}
			if r.Type != ReqAprobada && r.Type != ReqRegularizada {
				errs = append(errs, fmt.Sprintf("subject %q: unknown requirement type %q", s.Code, r.Type))
			}
		}
	}

	if cycle := cycleNodes(all, seen); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving subjects: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("plan %q validation failed:\n  %s", p.Name, strings.Join(errs, "\n  "))
	}
	return nil
}

// allRequirements returns the distinct cursar and aprobar edges of s.
func (s Subject) allRequirements() []Requirement {
	out := make([]Requirement, 0, len(s.Requirements.Cursar)+len(s.Requirements.Aprobar))
	out = append(out, s.Requirements.Cursar...)
	return append(out, s.Requirements.Aprobar...)
}

// cycleNodes runs Kahn's algorithm over requirement edges and returns the
// codes left with unresolved in-edges.
func cycleNodes(subjects []Subject, known map[string]bool) []string {
	inDegree := make(map[string]int, len(subjects))
	adj := make(map[string][]string)
	for _, s := range subjects {
		deps := make(map[string]bool)
		for _, r := range s.allRequirements() {
			if !known[r.ID] || deps[r.ID] {
				continue
			}
			deps[r.ID] = true
			adj[r.ID] = append(adj[r.ID], s.Code)
		}
		inDegree[s.Code] = len(deps)
	}

	var queue []string
	for _, s := range subjects {
		if inDegree[s.Code] == 0 {
			queue = append(queue, s.Code)
		}
	}
	visited := 0
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[code] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited == len(subjects) {
		return nil
	}
	var cycle []string
	for _, s := range subjects {
		if inDegree[s.Code] > 0 {
			cycle = append(cycle, s.Code)
		}
	}
	return cycle
}
