package chart

import (
	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// Table is the row-for-row preview of a view.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// TableRow carries the row's index in the full dataset and its cells in
// column order.
type TableRow struct {
	Index int      `json:"index"`
	Cells []string `json:"cells"`
}

// Preview copies every row and column of v, in order.
func Preview(v *dataset.View) *Table {
	ds := v.Dataset()
	t := &Table{
		Columns: ds.ColumnNames(),
		Rows:    make([]TableRow, 0, v.Len()),
	}

	cols := ds.Columns()
	for i := 0; i < v.Len(); i++ {
		r := v.Row(i)
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.Text(r)
		}
		t.Rows = append(t.Rows, TableRow{Index: r, Cells: cells})
	}
	return t
}

// Limit returns a copy of t with at most n rows; n <= 0 keeps all.
func (t *Table) Limit(n int) *Table {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	out := *t
	out.Rows = t.Rows[:n]
	return &out
}
