// Package export writes a board and its stats as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/utntracker/internal/board"
	"github.com/abhisek/utntracker/internal/stats"
	"github.com/abhisek/utntracker/internal/status"
)

const (
	SheetSubjects = "Materias"
	SheetSummary  = "Resumen"
)

var subjectHeaders = []string{"Módulo", "Código", "Materia", "Horas semanales", "Disponibilidad", "Estado", "Nota"}

// statusFill is the background colour of a status cell.
var statusFill = map[status.Tag]string{
	status.Promocionada:   "#A9D08E",
	status.Aprobada:       "#C6EFCE",
	status.Regularizada:   "#FFEB9C",
	status.FaltanNotas:    "#DDEBF7",
	status.NoRegularizada: "#F8CBAD",
	status.Desaprobada:    "#FFC7CE",
}

var availabilityLabel = map[board.Availability]string{
	board.Locked:    "Bloqueada",
	board.Available: "Disponible",
	board.Started:   "Cursando",
}

// Write renders st to w.
func Write(w io.Writer, st *board.State) error {
	f, err := Build(st)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build creates the workbook for st.
func Build(st *board.State) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSubjects); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSubjects(f, st); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %s: %w", SheetSubjects, err)
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, stats.ForBoard(st)); err != nil {
		f.Close()
		return nil, fmt.Errorf("sheet %s: %w", SheetSummary, err)
	}
	return f, nil
}

func writeSubjects(f *excelize.File, st *board.State) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	fills := make(map[status.Tag]int, len(statusFill))
	for tag, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		fills[tag] = id
	}

	if err := f.SetSheetRow(SheetSubjects, "A1", &subjectHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(subjectHeaders), 1)
	if err := f.SetCellStyle(SheetSubjects, "A1", last, header); err != nil {
		return err
	}

	row := 2
	for _, col := range st.Columns() {
		for _, s := range col.Subjects {
			tag, _ := st.Effective(s.Code)
			var gradeCell any = ""
			if r, ok := st.Record(s.Code); ok {
				if g, ok := stats.Grade(r); ok {
					gradeCell = g
				}
			}
			values := []any{col.Module.Name, s.Code, s.Name, s.WeekHours, availabilityLabel[st.Classify(s.Code)], tag.Label(), gradeCell}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SheetSubjects, cell, &values); err != nil {
				return err
			}
			if id, ok := fills[tag]; ok {
				statusCell, _ := excelize.CoordinatesToCellName(6, row)
				if err := f.SetCellStyle(SheetSubjects, statusCell, statusCell, id); err != nil {
					return err
				}
			}
			row++
		}
	}

	if err := f.SetColWidth(SheetSubjects, "A", "A", 16); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSubjects, "C", "C", 44); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSubjects, "D", "F", 16); err != nil {
		return err
	}
	if row > 2 {
		ref := fmt.Sprintf("A1:%s", mustCell(len(subjectHeaders), row-1))
		if err := f.AutoFilter(SheetSubjects, ref, nil); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, rep stats.Report) error {
	rows := [][]any{
		{"Materias totales", rep.TotalSubjects},
		{"Aprobadas", rep.ApprovedSubjects},
		{"Promocionadas", rep.PromotedSubjects},
		{"Regularizadas", rep.RegularizedSubjects},
		{"Cursando", rep.InProgressSubjects},
		{"Disponibles", rep.AvailableSubjects},
		{"Horas semanales", rep.WeeklyHours},
		{"Promedio", rep.AverageLabel()},
		{"Progreso (%)", rep.ProgressPercent},
	}
	for i, r := range rows {
		cell := mustCell(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 20)
}

func mustCell(col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(err)
	}
	return cell
}
