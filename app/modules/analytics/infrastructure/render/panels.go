package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 640
	panelHeight = 400
	maxTicks    = 8
)

// chartRenderer is satisfied by chart.Chart, chart.PieChart, chart.BarChart and
// chart.StackedBarChart.
type chartRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// rasterize renders a chart to PNG and decodes it back for compositing.
func rasterize(c chartRenderer) (image.Image, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode panel: %w", err)
	}
	return img, nil
}

// grid lays panels out row-major with the given column count.
func grid(panels []image.Image, cols int, bg drawing.Color) *image.RGBA {
	if cols < 1 {
		cols = 1
	}
	rows := (len(panels) + cols - 1) / cols
	colWidths := make([]int, cols)
	rowHeights := make([]int, rows)
	for i, p := range panels {
		b := p.Bounds()
		r, c := i/cols, i%cols
		colWidths[c] = max(colWidths[c], b.Dx())
		rowHeights[r] = max(rowHeights[r], b.Dy())
	}
	width, height := 0, 0
	for _, w := range colWidths {
		width += w
	}
	for _, h := range rowHeights {
		height += h
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	y := 0
	for r := 0; r < rows; r++ {
		x := 0
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i < len(panels) {
				b := panels[i].Bounds()
				draw.Draw(out, image.Rect(x, y, x+b.Dx(), y+b.Dy()), panels[i], b.Min, draw.Over)
			}
			x += colWidths[c]
		}
		y += rowHeights[r]
	}
	return out
}

func encodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// textPanel renders a title and lines of text on an otherwise empty canvas.
// The single series is transparent so the chart has something to lay out.
func textPanel(title string, lines []string, width, height int, palette Palette) chart.Chart {
	return chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style: chart.Style{
					StrokeColor: drawing.ColorTransparent,
					FillColor:   drawing.ColorTransparent,
				},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(11.0)
				if len(lines) == 1 {
					tb := r.MeasureText(lines[0])
					r.Text(lines[0], (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
					return
				}
				y := 48
				for _, line := range lines {
					r.Text(line, 24, y)
					y += 18
				}
			},
		},
	}
}

// noDataPanel is the placeholder drawn in place of a panel with nothing to plot.
func noDataPanel(title, msg string, palette Palette) (image.Image, error) {
	return rasterize(textPanel(title, []string{msg}, panelWidth, panelHeight, palette))
}

// ordinalTicks labels x positions 1..n with the given labels, thinning them so at
// most maxTicks are drawn. Ticks fix the x range, so a single label is framed by
// blank ticks at 0 and 2.
func ordinalTicks(labels []string) []chart.Tick {
	n := len(labels)
	if n == 1 {
		return []chart.Tick{{Value: 0}, {Value: 1, Label: labels[0]}, {Value: 2}}
	}
	step := (n + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}
	ticks := make([]chart.Tick, 0, maxTicks+1)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: labels[i]})
	}
	return ticks
}

// paddedRange returns a range that never has a zero delta.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	if hi <= lo {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.1
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
