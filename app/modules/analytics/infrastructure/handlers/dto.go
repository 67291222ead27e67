package analyticshandlers

import (
	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
)

type memberStatsDTO struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Position        string   `json:"position"`
	ExperienceLevel string   `json:"experience_level"`
	MatchesPlayed   int      `json:"matches_played"`
	AvgPerformance  *float64 `json:"avg_performance"`
	Wins            int      `json:"wins"`
}

type matchStatsDTO struct {
	ID               int64    `json:"id"`
	Date             string   `json:"date"`
	Opponent         string   `json:"opponent"`
	Tournament       string   `json:"tournament"`
	Result           string   `json:"result"`
	Score            string   `json:"score"`
	ParticipantCount int      `json:"participants_count"`
	AvgPerformance   *float64 `json:"avg_performance"`
}

type participationDTO struct {
	ID               int64   `json:"id"`
	MemberName       string  `json:"member_name"`
	MatchInfo        string  `json:"match_info"`
	Role             string  `json:"role"`
	PerformanceScore float64 `json:"performance_score"`
}

type analysisDTO struct {
	Outcome     string   `json:"outcome"`
	Summary     string   `json:"summary,omitempty"`
	Diagnostics string   `json:"diagnostics,omitempty"`
	ExitCode    int      `json:"exit_code"`
	Artifacts   []string `json:"artifacts,omitempty"`
}

type performanceReportDTO struct {
	Statistics []memberStatsDTO `json:"statistics"`
	Analysis   analysisDTO      `json:"analysis"`
}

type scheduleLineDTO struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
	Activity string `json:"activity"`
	Assignee string `json:"assigned_member"`
}

type scheduleReportDTO struct {
	Lines    []scheduleLineDTO            `json:"lines"`
	Pivot    map[string]map[string]string `json:"pivot"`
	Image    string                       `json:"image"`
	Workbook string                       `json:"workbook"`
}

type exportArtifactDTO struct {
	Table string `json:"table"`
	Path  string `json:"path"`
	Rows  int    `json:"rows"`
}

type exportDTOBody struct {
	Format    string              `json:"format"`
	Artifacts []exportArtifactDTO `json:"artifacts"`
	Errors    []string            `json:"errors,omitempty"`
}

func memberStatsDTOs(stats []analyticsdomain.MemberStatistics) []memberStatsDTO {
	out := make([]memberStatsDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, memberStatsDTO{
			ID:              s.ID,
			Name:            s.Name,
			Position:        s.Position,
			ExperienceLevel: string(s.ExperienceLevel),
			MatchesPlayed:   s.MatchesPlayed,
			AvgPerformance:  s.AvgPerformance,
			Wins:            s.Wins,
		})
	}
	return out
}

func matchStatsDTOs(stats []analyticsdomain.MatchStatistics) []matchStatsDTO {
	out := make([]matchStatsDTO, 0, len(stats))
	for _, s := range stats {
		out = append(out, matchStatsDTO{
			ID:               s.ID,
			Date:             s.Date,
			Opponent:         s.Opponent,
			Tournament:       s.Tournament,
			Result:           string(s.Result),
			Score:            s.Score,
			ParticipantCount: s.ParticipantCount,
			AvgPerformance:   s.AvgPerformance,
		})
	}
	return out
}

func participationDTOs(rows []analyticsdomain.ParticipationDetail) []participationDTO {
	out := make([]participationDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, participationDTO(p))
	}
	return out
}

func performanceDTO(pr *analyticsservice.PerformanceReport) performanceReportDTO {
	return performanceReportDTO{
		Statistics: memberStatsDTOs(pr.Statistics),
		Analysis: analysisDTO{
			Outcome:     string(pr.Analysis.Outcome),
			Summary:     pr.Analysis.Summary,
			Diagnostics: pr.Analysis.Diagnostics,
			ExitCode:    pr.Analysis.ExitCode,
			Artifacts:   pr.Analysis.Artifacts,
		},
	}
}

func scheduleDTO(sr *analyticsservice.ScheduleReport) scheduleReportDTO {
	lines := make([]scheduleLineDTO, 0, len(sr.Lines))
	for _, l := range sr.Lines {
		lines = append(lines, scheduleLineDTO(l))
	}
	return scheduleReportDTO{
		Lines:    lines,
		Pivot:    sr.Pivot.Cells,
		Image:    sr.Image.Path,
		Workbook: sr.Workbook.Path,
	}
}

func exportDTO(res *export.Result, err error) exportDTOBody {
	body := exportDTOBody{Format: string(res.Format), Artifacts: []exportArtifactDTO{}}
	for _, a := range res.Artifacts {
		body.Artifacts = append(body.Artifacts, exportArtifactDTO(a))
	}
	if err != nil {
		body.Errors = splitJoined(err)
	}
	return body
}

// splitJoined flattens an errors.Join result into one message per error.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
