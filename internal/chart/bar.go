package chart

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/attrition-dashboard/internal/dataset"
)

// CountChart is a grouped bar chart of row counts: one group per value of
// Dimension, one bar per value of Hue.
type CountChart struct {
	Title      string   `json:"title"`
	Dimension  string   `json:"dimension"`
	Hue        string   `json:"hue"`
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// Series is the bars for one Hue value, aligned with Categories.
type Series struct {
	Name   string `json:"name"`
	Counts []int  `json:"counts"`
	Color  string `json:"color"`
}

// CountBy counts the rows of v per (dimension, hue) pair. Groups and series
// appear in order of first appearance; rows with a blank in either column
// are not counted.
func CountBy(v *dataset.View, dimension, hue string, palette []string) *CountChart {
	c := &CountChart{
		Dimension:  dimension,
		Hue:        hue,
		Categories: dataset.DistinctIn(v, dimension),
		Series:     []Series{},
	}

	hues := dataset.DistinctIn(v, hue)
	catIdx := indexOf(c.Categories)
	hueIdx := indexOf(hues)

	for i, h := range hues {
		c.Series = append(c.Series, Series{
			Name:   h,
			Counts: make([]int, len(c.Categories)),
			Color:  pick(palette, i),
		})
	}

	dims := v.Texts(dimension)
	hs := v.Texts(hue)
	for i := range dims {
		ci, ok := catIdx[dims[i]]
		if !ok {
			continue
		}
		hi, ok := hueIdx[hs[i]]
		if !ok {
			continue
		}
		c.Series[hi].Counts[ci]++
	}
	return c
}

// Empty reports whether there are no bars to draw.
func (c *CountChart) Empty() bool {
	return len(c.Categories) == 0 || len(c.Series) == 0
}

// Count returns the bar height for (category, hue), or 0 if absent.
func (c *CountChart) Count(category, hue string) int {
	for _, s := range c.Series {
		if s.Name != hue {
			continue
		}
		for i, cat := range c.Categories {
			if cat == category {
				return s.Counts[i]
			}
		}
	}
	return 0
}

// SVG draws the chart. An empty chart still renders its title and axes.
func (c *CountChart) SVG(size Size) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.Dimension
	p.Y.Label.Text = "Count"
	p.Y.Min = 0
	p.Legend.Top = true

	if !c.Empty() {
		p.NominalX(c.Categories...)

		group := size.width() * 0.6 / vg.Length(len(c.Categories))
		if group > 60 {
			group = 60
		}
		w := group / vg.Length(len(c.Series))
		mid := float64(len(c.Series)-1) / 2

		for i, s := range c.Series {
			vals := make(plotter.Values, len(s.Counts))
			for j, n := range s.Counts {
				vals[j] = float64(n)
			}

			bars, err := plotter.NewBarChart(vals, w)
			if err != nil {
				return nil, eris.Wrapf(err, "chart: bars for %s=%s", c.Hue, s.Name)
			}
			bars.Color = hexColor(s.Color)
			bars.LineStyle.Width = 0
			bars.Offset = vg.Length(float64(i)-mid) * w

			p.Add(bars)
			p.Legend.Add(s.Name, bars)
		}
	}

	return encodeSVG(p, size)
}

func indexOf(values []string) map[string]int {
	m := make(map[string]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}
