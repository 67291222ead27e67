package render

import "github.com/wcharczuk/go-chart/v2/drawing"

// Palette holds the colors used by every chart panel.
type Palette struct {
	Background drawing.Color
	Text       drawing.Color
	Primary    drawing.Color
	Accent     drawing.Color
	Win        drawing.Color
	Loss       drawing.Color
	Draw       drawing.Color
	Bar        drawing.Color
	Series     []drawing.Color
}

// DefaultPalette is a light theme.
var DefaultPalette = Palette{
	Background: drawing.ColorWhite,
	Text:       drawing.ColorFromHex("1f2933"),
	Primary:    drawing.ColorFromHex("2b6cb0"),
	Accent:     drawing.ColorFromHex("d69e2e"),
	Win:        drawing.ColorFromHex("38a169"),
	Loss:       drawing.ColorFromHex("e53e3e"),
	Draw:       drawing.ColorFromHex("718096"),
	Bar:        drawing.ColorFromHex("ed8936"),
	Series: []drawing.Color{
		drawing.ColorFromHex("2b6cb0"),
		drawing.ColorFromHex("38a169"),
		drawing.ColorFromHex("d69e2e"),
		drawing.ColorFromHex("805ad5"),
		drawing.ColorFromHex("dd6b20"),
		drawing.ColorFromHex("319795"),
	},
}

func (p Palette) seriesColor(i int) drawing.Color {
	if len(p.Series) == 0 {
		return p.Primary
	}
	return p.Series[i%len(p.Series)]
}
