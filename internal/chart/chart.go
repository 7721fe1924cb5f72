// Package chart turns a filtered employee view into the dashboard's visual
// artifacts: grouped count bars, an attrition pie, a correlation heatmap and
// a tabular preview. Each artifact is plain data; SVG rendering is separate
// so the same artifact can back HTML, JSON and terminal output.
package chart

import (
	"bytes"
	"image/color"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Chart palettes: seaborn Set2 and Set1 for the bars, two pastels for the pie.
var (
	Set2 = []string{"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3"}
	Set1 = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#ffff33", "#a65628", "#f781bf", "#999999"}

	PieColors = []string{"#FF9999", "#99CCFF"}
)

// Size is a rendered chart's extent in inches.
type Size struct {
	WidthIn  float64
	HeightIn float64
}

func (s Size) width() vg.Length  { return vg.Length(s.WidthIn) * vg.Inch }
func (s Size) height() vg.Length { return vg.Length(s.HeightIn) * vg.Inch }

func encodeSVG(p *plot.Plot, size Size) ([]byte, error) {
	wt, err := p.WriterTo(size.width(), size.height(), "svg")
	if err != nil {
		return nil, eris.Wrap(err, "chart: svg writer")
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, eris.Wrap(err, "chart: encode svg")
	}
	return buf.Bytes(), nil
}

func pick(palette []string, i int) string {
	return palette[i%len(palette)]
}

// hexColor parses "#rrggbb". Malformed input yields gray.
func hexColor(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
