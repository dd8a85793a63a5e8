// Package plan loads curriculum plans: ordered modules of subjects with their
// prerequisites. Plans are read once and never mutated.
package plan

import "slices"

// Plan is a loaded, validated curriculum.
type Plan struct {
	Name    string
	Title   string
	Version string
	Modules []Module

	byCode    map[string]Subject
	electives int // index into Modules, -1 when absent
}

func newPlan(name, title, version string, modules []Module) *Plan {
	p := &Plan{
		Name:      name,
		Title:     title,
		Version:   version,
		Modules:   modules,
		byCode:    make(map[string]Subject),
		electives: -1,
	}
	for i, m := range modules {
		if p.electives < 0 && m.ID == ElectivesModuleID {
			p.electives = i
		}
	}
	if p.electives < 0 {
		for i, m := range modules {
			if !m.Render && len(m.Subjects) > 0 {
				p.electives = i
				break
			}
		}
	}
	for i := range p.Modules {
		elective := i == p.electives
		for j := range p.Modules[i].Subjects {
			p.Modules[i].Subjects[j].Elective = elective
			s := p.Modules[i].Subjects[j]
			if _, dup := p.byCode[s.Code]; !dup {
				p.byCode[s.Code] = s
			}
		}
	}
	return p
}

// VisibleModules returns the modules rendered as board columns, in order.
func (p *Plan) VisibleModules() []Module {
	var out []Module
	for i, m := range p.Modules {
		if m.Render && i != p.electives {
			out = append(out, m)
		}
	}
	return out
}

// Subjects returns the subjects of every visible module in board order.
func (p *Plan) Subjects() []Subject {
	var out []Subject
	for _, m := range p.VisibleModules() {
		out = append(out, m.Subjects...)
	}
	return out
}

// Electives returns the elective catalogue.
func (p *Plan) Electives() []Subject {
	if p.electives < 0 {
		return nil
	}
	return slices.Clone(p.Modules[p.electives].Subjects)
}

// ElectiveSlots returns how many electives the visible modules require.
func (p *Plan) ElectiveSlots() int {
	n := 0
	for _, m := range p.VisibleModules() {
		n += m.Electivas
	}
	return n
}

// Subject looks up a subject by code in any module.
func (p *Plan) Subject(code string) (Subject, bool) {
	s, ok := p.byCode[code]
	return s, ok
}

// ModuleOf returns the visible module holding code and its column index.
func (p *Plan) ModuleOf(code string) (Module, int, bool) {
	for i, m := range p.VisibleModules() {
		for _, s := range m.Subjects {
			if s.Code == code {
				return m, i, true
			}
		}
	}
	return Module{}, -1, false
}
