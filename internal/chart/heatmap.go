package chart

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"

	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// Placeholder messages shown instead of a heatmap.
const (
	NoNumericColumns  = "No numeric columns available for correlation."
	NoRowsToCorrelate = "No rows match the current filters."
)

// Heatmap is the Pearson correlation matrix of the numeric columns.
// When Placeholder is set there is no matrix to draw.
type Heatmap struct {
	Title       string      `json:"title"`
	Columns     []string    `json:"columns"`
	Matrix      [][]float64 `json:"-"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// Correlate computes pairwise Pearson coefficients over the dataset's
// numeric columns, using only rows where both values are present.
// Undefined coefficients are NaN.
func Correlate(v *dataset.View) *Heatmap {
	h := &Heatmap{Columns: v.Dataset().NumericColumns()}
	switch {
	case len(h.Columns) == 0:
		h.Placeholder = NoNumericColumns
		return h
	case v.Len() == 0:
		h.Placeholder = NoRowsToCorrelate
		return h
	}

	cols := make([][]float64, len(h.Columns))
	for i, name := range h.Columns {
		cols[i] = v.Floats(name)
	}

	n := len(cols)
	h.Matrix = make([][]float64, n)
	for i := range h.Matrix {
		h.Matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pearson(cols[i], cols[j])
			h.Matrix[i][j] = r
			h.Matrix[j][i] = r
		}
	}
	return h
}

func pearson(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// MarshalJSON encodes the matrix with null for undefined coefficients.
func (h *Heatmap) MarshalJSON() ([]byte, error) {
	type alias Heatmap
	var cells [][]*float64
	for _, row := range h.Matrix {
		out := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				out[j] = &row[j]
			}
		}
		cells = append(cells, out)
	}
	return json.Marshal(struct {
		*alias
		Matrix [][]*float64 `json:"matrix,omitempty"`
	}{alias: (*alias)(h), Matrix: cells})
}

// Empty reports whether a placeholder replaces the heatmap.
func (h *Heatmap) Empty() bool { return h.Placeholder != "" }

// Coefficient returns the correlation of columns a and b, NaN if unknown.
func (h *Heatmap) Coefficient(a, b string) float64 {
	i, j := -1, -1
	for k, c := range h.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 || h.Matrix == nil {
		return math.NaN()
	}
	return h.Matrix[i][j]
}

// Annotation formats a coefficient as drawn in a cell; NaN is blank.
func Annotation(r float64) string {
	if math.IsNaN(r) {
		return ""
	}
	return fmt.Sprintf("%.2f", r)
}

// corrGrid adapts the matrix to plotter.GridXYZ with the first column at
// the top, as correlation tables are read.
type corrGrid struct{ m [][]float64 }

func (g corrGrid) Dims() (c, r int) { return len(g.m), len(g.m) }
func (g corrGrid) Z(c, r int) float64 {
	return g.m[len(g.m)-1-r][c]
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// SVG draws the annotated heatmap on a blue-white-red scale from -1 to 1.
func (h *Heatmap) SVG(size Size) ([]byte, error) {
	if h.Empty() {
		return nil, eris.New("chart: heatmap has no matrix")
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	grid := corrGrid{m: h.Matrix}
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = h.Title
	p.Add(hm)

	n := len(h.Columns)
	var cells plotter.XYLabels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			cells.Labels = append(cells.Labels, Annotation(grid.Z(c, r)))
		}
	}
	labels, err := plotter.NewLabels(cells)
	if err != nil {
		return nil, eris.Wrap(err, "chart: heatmap labels")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)

	reversed := make([]string, n)
	for i, c := range h.Columns {
		reversed[n-1-i] = c
	}
	p.NominalX(h.Columns...)
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight

	return encodeSVG(p, size)
}
