package plan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_K23(t *testing.T) {
	p, err := Builtin("k23")
	require.NoError(t, err)

	assert.Equal(t, "k23", p.Name)
	assert.Len(t, p.VisibleModules(), 5)
	assert.Len(t, p.Subjects(), 36)
	assert.Equal(t, 5, p.ElectiveSlots())
	assert.NotEmpty(t, p.Electives())
	for _, e := range p.Electives() {
		assert.True(t, e.Elective, e.Code)
	}

	am2, ok := p.Subject("AM2")
	require.True(t, ok)
	assert.Equal(t, []Requirement{{ID: "AM1", Type: ReqRegularizada}, {ID: "AGA", Type: ReqRegularizada}}, am2.Requirements.Cursar)

	ing1, ok := p.Subject("ING1")
	require.True(t, ok)
	assert.Equal(t, DefaultWeekHours, ing1.WeekHours)

	// Requirement objects may name their target with "code".
	gdi, ok := p.Subject("GDI")
	require.True(t, ok)
	assert.Equal(t, "BDD", gdi.Requirements.Cursar[0].ID)

	m, col, ok := p.ModuleOf("SSL")
	require.True(t, ok)
	assert.Equal(t, "y2", m.ID)
	assert.Equal(t, 1, col)

	_, _, ok = p.ModuleOf("GDI")
	assert.False(t, ok, "electives are not board columns")
}

func TestBuiltin_K23MedioYAML(t *testing.T) {
	p, err := Builtin("k23medio")
	require.NoError(t, err)

	assert.Len(t, p.VisibleModules(), 3)
	assert.Equal(t, 1, p.ElectiveSlots())

	bdd, ok := p.Subject("BDD")
	require.True(t, ok)
	require.Len(t, bdd.Requirements.Cursar, 4)
	assert.Equal(t, Requirement{ID: "LED", Type: ReqAprobada}, bdd.Requirements.Cursar[2])

	sop, ok := p.Subject("SOP")
	require.True(t, ok)
	assert.Equal(t, Requirement{ID: "ACO", Type: ReqRegularizada}, sop.Requirements.Cursar[0])
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("k99")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	assert.Equal(t, []string{"k23", "k23medio"}, Names())
	assert.True(t, IsBuiltin("k23medio"))
	assert.False(t, IsBuiltin("../k23"))
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yml")
	doc := `
name: mini
version: v1.0.0
modules:
  - id: y1
    subjects:
      - {code: A, name: Uno}
      - code: B
        name: Dos
        requirements: {cursar: [A]}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	p, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "mini", p.Name)
	assert.Len(t, p.Subjects(), 2)
	assert.Empty(t, p.Electives())

	_, err = Resolve(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing modules", `{"name":"x","version":"v1.0.0"}`},
		{"negative hours", `{"name":"x","version":"v1.0.0","modules":[{"id":"m","subjects":[{"code":"A","name":"A","weekHours":-1}]}]}`},
		{"bad requirement type", `{"name":"x","version":"v1.0.0","modules":[{"id":"m","subjects":[{"code":"A","name":"A"},{"code":"B","name":"B","requirements":{"cursar":[{"id":"A","type":"cursada"}]}}]}]}`},
		{"requirement without id", `{"name":"x","version":"v1.0.0","modules":[{"id":"m","subjects":[{"code":"B","name":"B","requirements":{"cursar":[{"type":"aprobada"}]}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc), FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	doc := `{"name":"broken","version":"v2.0.0","modules":[{"id":"m","electivas":0,"subjects":[
		{"code":"A","name":"A","requirements":{"cursar":["C"]}},
		{"code":"A","name":"A again"},
		{"code":"B","name":"B","requirements":{"aprobar":["Z"]}},
		{"code":"C","name":"C","requirements":{"cursar":[{"id":"A","type":"regularizada"}]}}
	]}]}`
	_, err := Load([]byte(doc), FormatJSON)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unsupported plan version "v2.0.0"`)
	assert.Contains(t, msg, `duplicate subject code: "A"`)
	assert.Contains(t, msg, `references nonexistent requirement "Z"`)
	assert.Contains(t, msg, "cycle detected involving subjects: A, C")
}

func TestRequirement_JSONShorthand(t *testing.T) {
	var reqs []Requirement
	require.NoError(t, json.Unmarshal([]byte(`["AM1", {"code":"AGA","type":"regularizada"}, {"id":" FIS1 "}]`), &reqs))
	assert.Equal(t, []Requirement{
		{ID: "AM1", Type: ReqAprobada},
		{ID: "AGA", Type: ReqRegularizada},
		{ID: "FIS1", Type: ReqAprobada},
	}, reqs)

	out, err := json.Marshal(reqs[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"AGA","type":"regularizada"}`, string(out))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("plan.YAML"))
	assert.Equal(t, FormatYAML, FormatFor("plan.yml"))
	assert.Equal(t, FormatJSON, FormatFor("plan.json"))
	assert.Equal(t, FormatJSON, FormatFor(strings.Repeat("x", 3)))
}
