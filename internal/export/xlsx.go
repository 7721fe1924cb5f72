// Package export writes filtered employee rows to a spreadsheet.
package export

import (
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/attrition-dashboard/internal/dataset"
	"github.com/sells-group/attrition-dashboard/internal/kpi"
)

// Sheet names in the exported workbook.
const (
	RowsSheet    = "Employees"
	SummarySheet = "Summary"
)

// WriteXLSX writes v as a workbook: the rows in file column order on the
// first sheet, the KPI labels and values on the second. Numeric cells are
// stored as numbers; blanks stay empty.
func WriteXLSX(w io.Writer, v *dataset.View) error {
	f := xlsx.NewFile()

	rows, err := f.AddSheet(RowsSheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add rows sheet")
	}

	cols := v.Dataset().Columns()
	header := rows.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c.Name)
	}
	for i := 0; i < v.Len(); i++ {
		r := v.Row(i)
		row := rows.AddRow()
		for _, c := range cols {
			cell := row.AddCell()
			if c.Type != dataset.Numeric {
				cell.SetString(c.Text(r))
				continue
			}
			if x := c.Float(r); !math.IsNaN(x) {
				cell.SetFloat(x)
			}
		}
	}

	summary, err := f.AddSheet(SummarySheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add summary sheet")
	}
	for _, m := range kpi.Aggregate(v).Metrics() {
		row := summary.AddRow()
		row.AddCell().SetString(m.Label)
		row.AddCell().SetString(m.Value)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}
