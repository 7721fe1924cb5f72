// Package dataset loads the employee CSV, holds it in memory and filters it.
package dataset

import (
	"math"
	"strconv"
)

// Column is one named, typed column. Categorical columns populate text;
// numeric columns populate nums, with NaN for blank cells.
type Column struct {
	Name string
	Type ColumnType

	text []string
	nums []float64
}

// Text returns the cell at row i as displayed text.
func (c *Column) Text(i int) string {
	if c.Type == Numeric {
		return FormatNumber(c.nums[i])
	}
	return c.text[i]
}

// Float returns the numeric cell at row i. Categorical columns yield NaN.
func (c *Column) Float(i int) float64 {
	if c.Type != Numeric {
		return math.NaN()
	}
	return c.nums[i]
}

// Dataset is the full table loaded from the source file. It is never
// modified after load.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a Dataset from already-typed columns of equal length.
func New(columns []*Column) *Dataset {
	ds := &Dataset{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		ds.index[c.Name] = i
		if c.Type == Numeric {
			ds.rows = len(c.nums)
		} else {
			ds.rows = len(c.text)
		}
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// Columns returns the columns in file order.
func (d *Dataset) Columns() []*Column { return d.columns }

// Column looks up a column by header name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.columns[i], true
}

// ColumnNames returns the header names in file order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of numeric columns in file order.
func (d *Dataset) NumericColumns() []string {
	var names []string
	for _, c := range d.columns {
		if c.Type == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// All returns a view over every row.
func (d *Dataset) All() *View {
	rows := make([]int, d.rows)
	for i := range rows {
		rows[i] = i
	}
	return &View{ds: d, rows: rows}
}

// View is an ordered subset of a Dataset's rows. It holds row indexes only.
type View struct {
	ds   *Dataset
	rows []int
}

// Dataset returns the table the view selects from.
func (v *View) Dataset() *Dataset { return v.ds }

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.rows) }

// Row maps the i-th view row to its index in the Dataset.
func (v *View) Row(i int) int { return v.rows[i] }

// Text returns the cell of column name at view row i, or "" if the column
// does not exist.
func (v *View) Text(i int, name string) string {
	c, ok := v.ds.Column(name)
	if !ok {
		return ""
	}
	return c.Text(v.rows[i])
}

// Texts returns column name for every view row.
func (v *View) Texts(name string) []string {
	out := make([]string, len(v.rows))
	c, ok := v.ds.Column(name)
	if !ok {
		return out
	}
	for i, r := range v.rows {
		out[i] = c.Text(r)
	}
	return out
}

// Floats returns column name for every view row. Blank cells and
// non-numeric columns yield NaN.
func (v *View) Floats(name string) []float64 {
	out := make([]float64, len(v.rows))
	c, ok := v.ds.Column(name)
	for i, r := range v.rows {
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = c.Float(r)
	}
	return out
}

// FormatNumber renders a numeric cell: integral values without a decimal
// point, blanks as "".
func FormatNumber(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
