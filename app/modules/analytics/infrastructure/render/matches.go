package render

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/wcharczuk/go-chart/v2"
)

type datedMatch struct {
	stats analyticsdomain.MatchStatistics
	date  analyticsdomain.NormalizedDate
}

// sortMatches normalizes match dates and orders matches chronologically.
// Unparseable dates keep their raw text and sort last.
func (r *Renderer) sortMatches(ctx context.Context, stats []analyticsdomain.MatchStatistics) []datedMatch {
	out := make([]datedMatch, 0, len(stats))
	for _, s := range stats {
		d := r.dates().Normalize(s.Date)
		if !d.OK {
			r.logger().WarnContext(ctx, "Unparseable match date",
				attr.Int64("match_id", s.ID),
				attr.String("date", s.Date),
			)
		}
		out = append(out, datedMatch{stats: s, date: d})
	}
	slices.SortStableFunc(out, func(a, b datedMatch) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return cmp.Compare(a.stats.ID, b.stats.ID)
	})
	return out
}

// MatchChartBundle writes the 2x2 match statistics image: outcome distribution,
// match timeline, average performance trend and participant counts.
func (r *Renderer) MatchChartBundle(ctx context.Context, stats []analyticsdomain.MatchStatistics) (Artifact, error) {
	if len(stats) == 0 {
		return Artifact{}, analyticsdomain.ErrNoData
	}
	sorted := r.sortMatches(ctx, stats)

	builders := []func([]datedMatch) (image.Image, error){
		r.outcomePanel,
		r.sequencePanel,
		r.trendPanel,
		r.participantPanel,
	}
	panels := make([]image.Image, 0, len(builders))
	for _, build := range builders {
		img, err := build(sorted)
		if err != nil {
			return Artifact{}, fmt.Errorf("render match panel: %w", err)
		}
		panels = append(panels, img)
	}

	path := filepath.Join(r.Dir, MatchChartFile)
	if err := writeImage(path, grid(panels, 2, r.Palette.Background)); err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: MatchChartFile, Path: path}, nil
}

// OutcomeCounts tallies matches by recorded result. Matches without a result are
// left out so they do not skew the Win/Loss/Draw proportions.
func OutcomeCounts(stats []analyticsdomain.MatchStatistics) map[string]int {
	counts := make(map[string]int, len(analyticsdomain.Outcomes))
	for _, s := range stats {
		if s.Result.Valid() {
			counts[string(s.Result)]++
		}
	}
	return counts
}

func (r *Renderer) outcomePanel(sorted []datedMatch) (image.Image, error) {
	stats := make([]analyticsdomain.MatchStatistics, len(sorted))
	for i, m := range sorted {
		stats[i] = m.stats
	}
	counts := OutcomeCounts(stats)
	recorded := 0
	for _, n := range counts {
		recorded += n
	}
	if recorded == 0 {
		return noDataPanel("Match outcomes", "no recorded results", r.Palette)
	}

	colors := map[analyticsdomain.Outcome]chart.Style{
		analyticsdomain.OutcomeWin:  {FillColor: r.Palette.Win},
		analyticsdomain.OutcomeLoss: {FillColor: r.Palette.Loss},
		analyticsdomain.OutcomeDraw: {FillColor: r.Palette.Draw},
	}
	var values []chart.Value
	for _, o := range analyticsdomain.Outcomes {
		n := counts[string(o)]
		if n == 0 {
			continue
		}
		style := colors[o]
		style.FontColor = r.Palette.Text
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", o, float64(n)/float64(recorded)*100),
			Value: float64(n),
			Style: style,
		})
	}

	pie := chart.PieChart{
		Title:      "Match outcomes",
		Width:      panelWidth,
		Height:     panelHeight,
		Background: chart.Style{FillColor: r.Palette.Background},
		Canvas:     chart.Style{FillColor: r.Palette.Background},
		Values:     values,
	}
	return rasterize(pie)
}

func matchLabels(sorted []datedMatch) []string {
	labels := make([]string, len(sorted))
	for i, m := range sorted {
		labels[i] = m.date.Key()
	}
	return labels
}

func (r *Renderer) sequencePanel(sorted []datedMatch) (image.Image, error) {
	n := len(sorted)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range sorted {
		xs[i] = float64(i + 1)
		ys[i] = float64(i)
	}

	graph := chart.Chart{
		Title:      "Match timeline",
		Width:      panelWidth,
		Height:     panelHeight,
		Background: chart.Style{FillColor: r.Palette.Background},
		Canvas:     chart.Style{FillColor: r.Palette.Background},
		XAxis: chart.XAxis{
			Name:  "Date",
			Ticks: ordinalTicks(matchLabels(sorted)),
			Range: paddedRange(1, float64(n)),
			Style: chart.Style{FontColor: r.Palette.Text},
		},
		YAxis: chart.YAxis{
			Name:  "Match #",
			Range: paddedRange(0, float64(n-1)),
			Style: chart.Style{FontColor: r.Palette.Text},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Matches",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: r.Palette.Primary,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    r.Palette.Accent,
				},
			},
		},
	}
	return rasterize(graph)
}

func (r *Renderer) trendPanel(sorted []datedMatch) (image.Image, error) {
	const title = "Average performance"
	var xs, ys []float64
	for i, m := range sorted {
		if m.stats.AvgPerformance == nil {
			continue
		}
		xs = append(xs, float64(i+1))
		ys = append(ys, *m.stats.AvgPerformance)
	}
	if len(xs) == 0 {
		return noDataPanel(title, "no performance data", r.Palette)
	}

	lo, hi := slices.Min(ys), slices.Max(ys)
	graph := chart.Chart{
		Title:      title,
		Width:      panelWidth,
		Height:     panelHeight,
		Background: chart.Style{FillColor: r.Palette.Background},
		Canvas:     chart.Style{FillColor: r.Palette.Background},
		XAxis: chart.XAxis{
			Name:  "Date",
			Ticks: ordinalTicks(matchLabels(sorted)),
			Range: paddedRange(1, float64(len(sorted))),
			Style: chart.Style{FontColor: r.Palette.Text},
		},
		YAxis: chart.YAxis{
			Name:  "Average score",
			Range: paddedRange(lo, hi),
			Style: chart.Style{FontColor: r.Palette.Text},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Average",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: r.Palette.Win,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    r.Palette.Win,
				},
			},
		},
	}
	return rasterize(graph)
}

func (r *Renderer) participantPanel(sorted []datedMatch) (image.Image, error) {
	n := len(sorted)
	bars := make([]chart.Value, n)
	peak := 0
	for i, m := range sorted {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("#%d", i+1),
			Value: float64(m.stats.ParticipantCount),
			Style: chart.Style{FillColor: r.Palette.Bar, StrokeColor: r.Palette.Bar},
		}
		peak = max(peak, m.stats.ParticipantCount)
	}

	const spacing = 8
	barWidth := (panelWidth-120)/n - spacing
	barWidth = min(max(barWidth, 4), 40)

	bc := chart.BarChart{
		Title:      "Participants per match",
		Width:      panelWidth,
		Height:     panelHeight,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{FillColor: r.Palette.Background},
		Canvas:     chart.Style{FillColor: r.Palette.Background},
		XAxis:      chart.Style{FontColor: r.Palette.Text},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak + 1)},
			Style: chart.Style{FontColor: r.Palette.Text},
		},
		Bars: bars,
	}
	return rasterize(bc)
}

func writeImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", filepath.Base(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := encodePNG(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
