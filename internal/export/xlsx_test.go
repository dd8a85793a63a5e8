package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/plan"
	"github.com/abhisek/utntracker/internal/record"
	"github.com/abhisek/utntracker/internal/status"
)

func testBoard(t *testing.T) *board.State {
	t.Helper()
	p, err := plan.Builtin("k23")
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var promoted status.AttemptSet
	promoted.SetParcial(status.Parcial1, 0, "9")
	promoted.SetParcial(status.Parcial2, 0, "10")
	return board.FromPlan(p, []board.Placement{{Code: "CSH", Column: 2}}, map[string]record.Record{
		"AM1": record.New(now).WithAttempts(promoted, now),
		"AGA": record.New(now),
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testBoard(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSubjects, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetSubjects)
	require.NoError(t, err)
	require.Len(t, rows, 1+36+1, "header, plan subjects and the placed elective")
	assert.Equal(t, subjectHeaders, rows[0])

	byCode := make(map[string][]string)
	for _, r := range rows[1:] {
		byCode[r[1]] = r
	}
	assert.Equal(t, "Promocionada", byCode["AM1"][5])
	assert.Equal(t, "Cursando", byCode["AM1"][4])
	assert.Equal(t, "10", byCode["AM1"][6])
	assert.Equal(t, "Faltan notas", byCode["AGA"][5])
	assert.Equal(t, "Bloqueada", byCode["AM2"][4])
	assert.Equal(t, "Sin empezar", byCode["FIS1"][5])
	assert.Equal(t, "Disponible", byCode["CSH"][4])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Materias totales", "41"}, summary[0])
	assert.Equal(t, []string{"Promedio", "10,00"}, summary[7])
}

func TestBuild_StatusFill(t *testing.T) {
	f, err := Build(testBoard(t))
	require.NoError(t, err)
	defer f.Close()

	// AM1 is the first subject row.
	code, err := f.GetCellValue(SheetSubjects, "B2")
	require.NoError(t, err)
	require.Equal(t, "AM1", code)

	styleID, err := f.GetCellStyle(SheetSubjects, "F2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotEmpty(t, style.Fill.Color)
	assert.Contains(t, strings.ToUpper(style.Fill.Color[0]), "A9D08E")

	plain, err := f.GetCellStyle(SheetSubjects, "F4")
	require.NoError(t, err)
	assert.NotEqual(t, styleID, plain)
}
