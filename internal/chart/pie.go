package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// NoPieData is shown in place of an empty pie chart.
const NoPieData = "No attrition data for the current filters."

// PieChart is the share of rows per value of one column.
type PieChart struct {
	Title  string  `json:"title"`
	Column string  `json:"column"`
	Slices []Slice `json:"slices"`
}

// Slice is one value's share.
type Slice struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
	Color string  `json:"color"`
}

// Distribution builds the pie for column, largest slice first; ties keep
// first-appearance order. Blank values are left out.
func Distribution(v *dataset.View, column string, palette []string) *PieChart {
	pc := &PieChart{Column: column, Slices: []Slice{}}

	order := dataset.DistinctIn(v, column)
	counts := make(map[string]int, len(order))
	for _, val := range order {
		counts[val] = 0
	}
	total := 0
	for _, val := range v.Texts(column) {
		if _, ok := counts[val]; ok {
			counts[val]++
			total++
		}
	}
	if total == 0 {
		return pc
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	for i, label := range order {
		pc.Slices = append(pc.Slices, Slice{
			Label: label,
			Count: counts[label],
			Pct:   100 * float64(counts[label]) / float64(total),
			Color: pick(palette, i),
		})
	}
	return pc
}

// Empty reports whether there is nothing to draw. Callers show a
// placeholder instead of calling SVG.
func (pc *PieChart) Empty() bool { return len(pc.Slices) == 0 }

// PctLabel formats a slice share to one decimal place.
func PctLabel(pct float64) string { return fmt.Sprintf("%.1f%%", pct) }

// SVG draws the pie, starting at 12 o'clock and running counterclockwise.
func (pc *PieChart) SVG(size Size) ([]byte, error) {
	if pc.Empty() {
		return nil, eris.New("chart: pie has no slices")
	}

	p := plot.New()
	p.Title.Text = pc.Title
	p.HideAxes()

	wedges := pieWedges{}
	var inner, outer plotter.XYLabels
	angle := math.Pi / 2
	for _, s := range pc.Slices {
		sweep := 2 * math.Pi * s.Pct / 100
		wedges.sweeps = append(wedges.sweeps, sweep)
		wedges.colors = append(wedges.colors, hexColor(s.Color))

		mid := angle + sweep/2
		inner.XYs = append(inner.XYs, plotter.XY{X: 0.6 * math.Cos(mid), Y: 0.6 * math.Sin(mid)})
		inner.Labels = append(inner.Labels, PctLabel(s.Pct))
		outer.XYs = append(outer.XYs, plotter.XY{X: 1.15 * math.Cos(mid), Y: 1.15 * math.Sin(mid)})
		outer.Labels = append(outer.Labels, s.Label)
		angle += sweep
	}
	p.Add(wedges)

	for _, l := range []plotter.XYLabels{inner, outer} {
		labels, err := plotter.NewLabels(l)
		if err != nil {
			return nil, eris.Wrap(err, "chart: pie labels")
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = text.XCenter
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}

	side := size.width()
	if h := size.height(); h < side {
		side = h
	}
	sq := Size{WidthIn: float64(side / vg.Inch), HeightIn: float64(side / vg.Inch)}
	return encodeSVG(p, sq)
}

// pieWedges draws filled wedges around the data-space origin with unit
// radius. It implements plot.Plotter and plot.DataRanger.
type pieWedges struct {
	sweeps []float64
	colors []color.Color
}

func (w pieWedges) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	r := trX(1) - trX(0)
	if ry := trY(1) - trY(0); ry < r {
		r = ry
	}

	start := math.Pi / 2
	for i, sweep := range w.sweeps {
		var path vg.Path
		path.Move(center)
		// At most a half turn per arc: a full-turn SVG arc draws nothing.
		for done := 0.0; done < sweep; {
			step := math.Min(math.Pi, sweep-done)
			path.Arc(center, r, start+done, step)
			done += step
		}
		path.Close()

		c.SetColor(w.colors[i])
		c.Fill(path)
		start += sweep
	}
}

func (w pieWedges) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}
