// Package report renders a calculation's fields, warnings and trace as a PDF
// or XLSX document.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"Ductolator/internal/calc/trace"
)

type Input struct {
	Title    string        `json:"title"`
	Project  string        `json:"project"`
	Author   string        `json:"author"`
	Kind     string        `json:"kind"`
	Fields   []trace.Field `json:"fields"`
	Trace    trace.Trace   `json:"trace"`
	Warnings []string      `json:"warnings"`
}

func (in *Input) defaults() {
	if in.Title == "" {
		in.Title = "Calculation Report"
	}
}

// RenderPDF writes a single-document PDF. Fields keep the order they were
// given in, which is the calculation type's stable order.
func RenderPDF(w io.Writer, in Input, date time.Time) error {
	in.defaults()
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range [][2]string{
		{"Project", in.Project},
		{"Author", in.Author},
		{"Calculation", in.Kind},
		{"Date", date.Format("2006-01-02")},
	} {
		if line[1] == "" {
			continue
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s: %s", line[0], line[1])))
		pdf.Ln(6)
	}

	if len(in.Fields) > 0 {
		heading(pdf, "Results")
		for _, f := range in.Fields {
			pdf.CellFormat(80, 6, tr(f.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%.4g", f.Value), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, tr(f.Unit), "1", 1, "L", false, 0, "")
		}
	}

	if len(in.Warnings) > 0 {
		heading(pdf, "Warnings")
		for _, msg := range in.Warnings {
			pdf.MultiCell(0, 6, tr("- "+msg), "", "L", false)
		}
	}

	if len(in.Trace) > 0 {
		heading(pdf, "Trace")
		section := ""
		for _, l := range in.Trace {
			if l.Section != section {
				section = l.Section
				pdf.SetFont("Helvetica", "B", 10)
				pdf.Cell(0, 6, tr(section))
				pdf.Ln(6)
				pdf.SetFont("Helvetica", "", 10)
			}
			pdf.CellFormat(90, 5, tr(l.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, tr(l.Value), "", 1, "L", false, 0, "")
		}
	}
	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, text)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}

const (
	SheetResults = "Results"
	SheetTrace   = "Trace"
)

// RenderXLSX writes a workbook with a Results sheet (fields then warnings)
// and a Trace sheet.
func RenderXLSX(w io.Writer, in Input, date time.Time) error {
	in.defaults()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetResults); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetTrace); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	rows := [][]any{
		{in.Title},
		{"Project", in.Project},
		{"Calculation", in.Kind},
		{"Date", date.Format("2006-01-02")},
		{},
		{"Field", "Value", "Unit"},
	}
	for _, fl := range in.Fields {
		rows = append(rows, []any{fl.Name, fl.Value, fl.Unit})
	}
	if len(in.Warnings) > 0 {
		rows = append(rows, []any{}, []any{"Warnings"})
		for _, msg := range in.Warnings {
			rows = append(rows, []any{msg})
		}
	}
	if err := writeRows(f, SheetResults, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetResults, "A6", "C6", bold); err != nil {
		return err
	}

	rows = [][]any{{"Section", "Label", "Value"}}
	for _, l := range in.Trace {
		rows = append(rows, []any{l.Section, l.Label, l.Value})
	}
	if err := writeRows(f, SheetTrace, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetTrace, "A1", "C1", bold); err != nil {
		return err
	}
	for _, sheet := range []string{SheetResults, SheetTrace} {
		if err := f.SetColWidth(sheet, "A", "B", 28); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
