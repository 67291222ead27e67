package render

import (
	"log/slog"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
)

// Artifact file names, relative to the renderer's output directory.
const (
	MatchChartFile       = "match_statistics.png"
	ScheduleChartFile    = "schedule_report.png"
	ScheduleWorkbookFile = "schedule_report.xlsx"
)

// UnassignedPlaceholder is shown for schedule entries with no assigned member.
const UnassignedPlaceholder = "unassigned"

// Artifact is a file written by a renderer.
type Artifact struct {
	Name string
	Path string
}

// Renderer turns aggregate tables into report artifacts under Dir.
type Renderer struct {
	Dir     string
	Palette Palette
	Dates   *analyticsdomain.DateNormalizer
	Logger  *slog.Logger
}

// NewRenderer builds a Renderer with the default palette.
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		Dir:     dir,
		Palette: DefaultPalette,
		Dates:   analyticsdomain.NewDateNormalizer(),
		Logger:  logger,
	}
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Renderer) dates() *analyticsdomain.DateNormalizer {
	if r.Dates == nil {
		r.Dates = analyticsdomain.NewDateNormalizer()
	}
	return r.Dates
}
