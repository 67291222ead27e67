package render

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"slices"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"
)

const maxTableLines = 40

// ScheduleLine is one literal schedule table row. Date is the normalized
// YYYY-MM-DD key, or the raw text when it could not be parsed.
type ScheduleLine struct {
	Date     string
	TimeSlot string
	Activity string
	Assignee string
}

// SchedulePivot maps date x time slot to "activity (assignee)". The first entry
// for a cell wins.
type SchedulePivot struct {
	Dates []string
	Slots []string
	Cells map[string]map[string]string
}

// Cell returns the pivot value for date and slot, or "".
func (p SchedulePivot) Cell(date, slot string) string {
	return p.Cells[date][slot]
}

// ScheduleRender is the full schedule report.
type ScheduleRender struct {
	Lines    []ScheduleLine
	Pivot    SchedulePivot
	Image    Artifact
	Workbook Artifact
}

// AssigneeLabel returns the member name, or the unassigned placeholder.
func AssigneeLabel(name *string) string {
	if name == nil || *name == "" {
		return UnassignedPlaceholder
	}
	return *name
}

type datedRow struct {
	row  analyticsdomain.ScheduleRow
	date analyticsdomain.NormalizedDate
}

// ScheduleLines normalizes dates and orders rows chronologically, keeping
// the store's order within a day.
func (r *Renderer) ScheduleLines(ctx context.Context, rows []analyticsdomain.ScheduleRow) []ScheduleLine {
	dated := r.sortSchedule(ctx, rows)
	lines := make([]ScheduleLine, len(dated))
	for i, d := range dated {
		lines[i] = ScheduleLine{
			Date:     d.date.Key(),
			TimeSlot: d.row.TimeSlot,
			Activity: d.row.Activity,
			Assignee: AssigneeLabel(d.row.AssignedMember),
		}
	}
	return lines
}

func (r *Renderer) sortSchedule(ctx context.Context, rows []analyticsdomain.ScheduleRow) []datedRow {
	dated := make([]datedRow, 0, len(rows))
	for _, row := range rows {
		d := r.dates().Normalize(row.Date)
		if !d.OK {
			r.logger().WarnContext(ctx, "Unparseable schedule date", attr.String("date", row.Date))
		}
		dated = append(dated, datedRow{row: row, date: d})
	}
	slices.SortStableFunc(dated, func(a, b datedRow) int { return a.date.Compare(b.date) })
	return dated
}

// BuildPivot groups schedule lines by date and time slot.
func BuildPivot(lines []ScheduleLine) SchedulePivot {
	p := SchedulePivot{Cells: make(map[string]map[string]string)}
	seenSlot := make(map[string]bool)
	for _, l := range lines {
		row, ok := p.Cells[l.Date]
		if !ok {
			row = make(map[string]string)
			p.Cells[l.Date] = row
			p.Dates = append(p.Dates, l.Date)
		}
		if !seenSlot[l.TimeSlot] {
			seenSlot[l.TimeSlot] = true
			p.Slots = append(p.Slots, l.TimeSlot)
		}
		if _, taken := row[l.TimeSlot]; !taken {
			row[l.TimeSlot] = fmt.Sprintf("%s (%s)", l.Activity, l.Assignee)
		}
	}
	slices.Sort(p.Slots)
	return p
}

// ScheduleReport renders the schedule table and timeline image and the
// Schedule/Pivot workbook.
func (r *Renderer) ScheduleReport(ctx context.Context, rows []analyticsdomain.ScheduleRow) (ScheduleRender, error) {
	if len(rows) == 0 {
		return ScheduleRender{}, analyticsdomain.ErrNoData
	}
	lines := r.ScheduleLines(ctx, rows)
	out := ScheduleRender{Lines: lines, Pivot: BuildPivot(lines)}

	table, err := rasterize(r.scheduleTablePanel(lines))
	if err != nil {
		return out, fmt.Errorf("render schedule table: %w", err)
	}
	timeline, err := rasterize(r.timelinePanel(lines))
	if err != nil {
		return out, fmt.Errorf("render schedule timeline: %w", err)
	}
	imgPath := filepath.Join(r.Dir, ScheduleChartFile)
	if err := writeImage(imgPath, grid([]image.Image{table, timeline}, 1, r.Palette.Background)); err != nil {
		return out, err
	}
	out.Image = Artifact{Name: ScheduleChartFile, Path: imgPath}

	wbPath := filepath.Join(r.Dir, ScheduleWorkbookFile)
	if err := writeScheduleWorkbook(wbPath, lines, out.Pivot); err != nil {
		return out, err
	}
	out.Workbook = Artifact{Name: ScheduleWorkbookFile, Path: wbPath}
	return out, nil
}

func (r *Renderer) scheduleTablePanel(lines []ScheduleLine) chart.Chart {
	text := []string{fmt.Sprintf("%-12s %-12s %-28s %s", "Date", "Time slot", "Activity", "Assigned")}
	for i, l := range lines {
		if i == maxTableLines {
			text = append(text, fmt.Sprintf("... %d more", len(lines)-maxTableLines))
			break
		}
		text = append(text, fmt.Sprintf("%-12s %-12s %-28s %s", l.Date, l.TimeSlot, truncate(l.Activity, 28), l.Assignee))
	}
	height := max(panelHeight/2, 72+18*len(text))
	return textPanel("Schedule", text, 2*panelWidth, height, r.Palette)
}

// timelinePanel stacks each day's entries side by side in one bar per date.
func (r *Renderer) timelinePanel(lines []ScheduleLine) chart.StackedBarChart {
	var bars []chart.StackedBar
	index := make(map[string]int)
	for _, l := range lines {
		i, ok := index[l.Date]
		if !ok {
			i = len(bars)
			index[l.Date] = i
			bars = append(bars, chart.StackedBar{Name: l.Date})
		}
		bars[i].Values = append(bars[i].Values, chart.Value{
			Label: fmt.Sprintf("%s: %s", l.TimeSlot, l.Activity),
			Value: 1,
			Style: chart.Style{
				FillColor:   r.Palette.seriesColor(len(bars[i].Values)),
				StrokeColor: r.Palette.Background,
				StrokeWidth: 1,
				FontColor:   r.Palette.Text,
			},
		})
	}

	const spacing = 16
	width := 2 * panelWidth
	barWidth := min(max((width-160)/len(bars)-spacing, 8), 120)
	return chart.StackedBarChart{
		Title:      "Schedule timeline",
		Width:      width,
		Height:     panelHeight,
		BarSpacing: spacing,
		Background: chart.Style{FillColor: r.Palette.Background},
		Canvas:     chart.Style{FillColor: r.Palette.Background},
		XAxis:      chart.Style{FontColor: r.Palette.Text},
		YAxis:      chart.Style{FontColor: r.Palette.Text},
		Bars:       withWidth(bars, barWidth),
	}
}

func withWidth(bars []chart.StackedBar, width int) []chart.StackedBar {
	for i := range bars {
		bars[i].Width = width
	}
	return bars
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func writeScheduleWorkbook(path string, lines []ScheduleLine, pivot SchedulePivot) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", "Schedule"); err != nil {
		return fmt.Errorf("schedule workbook: %w", err)
	}
	header := []any{"date", "time_slot", "activity", "assigned_member"}
	if err := f.SetSheetRow("Schedule", "A1", &header); err != nil {
		return fmt.Errorf("schedule workbook: %w", err)
	}
	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{l.Date, l.TimeSlot, l.Activity, l.Assignee}
		if err := f.SetSheetRow("Schedule", cell, &row); err != nil {
			return fmt.Errorf("schedule workbook: %w", err)
		}
	}

	if _, err := f.NewSheet("Pivot"); err != nil {
		return fmt.Errorf("schedule workbook: %w", err)
	}
	pivotHeader := []any{"date"}
	for _, slot := range pivot.Slots {
		pivotHeader = append(pivotHeader, slot)
	}
	if err := f.SetSheetRow("Pivot", "A1", &pivotHeader); err != nil {
		return fmt.Errorf("schedule workbook: %w", err)
	}
	for i, date := range pivot.Dates {
		row := []any{date}
		for _, slot := range pivot.Slots {
			row = append(row, pivot.Cell(date, slot))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Pivot", cell, &row); err != nil {
			return fmt.Errorf("schedule workbook: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}
