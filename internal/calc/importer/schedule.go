// Package importer reads fixture schedules from XLSX workbooks.
package importer

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Ductolator/internal/calc/demand"
)

// ParseSchedule reads the first sheet of a workbook laid out as
// name, default FU, override FU, quantity with a header row. Rows without a
// name or default FU are skipped with a warning; an unreadable override
// counts as zero, as does a quantity that is not a whole number.
func ParseSchedule(r io.Reader) ([]demand.FixtureRow, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet %q has no fixture rows", sheet)
	}

	var out []demand.FixtureRow
	var warnings []string
	for i := 1; i < len(rows); i++ {
		row, ws, ok := parseRow(rows[i])
		for _, w := range ws {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", i+1, w))
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, warnings, nil
}

func parseRow(cells []string) (demand.FixtureRow, []string, bool) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	if cell(0) == "" && cell(1) == "" {
		return demand.FixtureRow{}, nil, false
	}
	row := demand.FixtureRow{Name: cell(0)}
	if row.Name == "" {
		return row, []string{"missing fixture name; skipped"}, false
	}
	var ws []string
	fu, err := toFloat(cell(1))
	if err != nil {
		return row, []string{fmt.Sprintf("default FU %q unreadable; skipped", cell(1))}, false
	}
	row.DefaultFU = fu
	if s := cell(2); s != "" {
		if row.OverrideFU, err = toFloat(s); err != nil {
			ws = append(ws, fmt.Sprintf("override FU %q unreadable; using default", s))
			row.OverrideFU = 0
		}
	}
	q, err := toFloat(cell(3))
	switch {
	case err != nil:
		ws = append(ws, fmt.Sprintf("quantity %q unreadable; counted as 0", cell(3)))
	case q != math.Trunc(q):
		ws = append(ws, fmt.Sprintf("quantity %q is not a whole number; counted as 0", cell(3)))
	default:
		row.Quantity = int(q)
	}
	return row, ws, true
}

func toFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, err
}
