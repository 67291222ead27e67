package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func assigned(id int64) *int64 { return &id }

func fixtureSource() TableSource {
	tables := map[string]analyticsdomain.Table{
		analyticsdomain.TableMembers: analyticsdomain.MembersTable([]analyticsdomain.Member{
			{ID: 1, Name: "Alice", Position: "Forward", JoinDate: "2023-01-10", ExperienceLevel: "advanced"},
		}),
		analyticsdomain.TableMatches: analyticsdomain.MatchesTable([]analyticsdomain.Match{
			{ID: 1, Date: "2024-05-01", Opponent: "Rovers", Result: analyticsdomain.OutcomeWin, Score: "2-1"},
		}),
		analyticsdomain.TableParticipations: analyticsdomain.ParticipationsTable([]analyticsdomain.Participation{
			{ID: 1, MemberID: 1, MatchID: 1, Role: "Starter", PerformanceScore: 7.5},
		}),
		analyticsdomain.TableSchedule: analyticsdomain.ScheduleTable([]analyticsdomain.ScheduleEntry{
			{ID: 1, Date: "2024-05-02", TimeSlot: "09:00", Activity: "Kit wash"},
			{ID: 2, Date: "2024-05-03", TimeSlot: "18:00", Activity: "Training", AssignedMemberID: assigned(1)},
		}),
	}
	return TableSourceFunc(func(_ context.Context, name string) (analyticsdomain.Table, error) {
		return tables[name], nil
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: "xlsx", want: FormatXLSX},
		{in: "Excel", want: FormatXLSX},
		{in: "json", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, analyticsdomain.ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExporter_ExportAll_CSV(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)

	res, err := e.ExportAll(context.Background(), fixtureSource(), "csv")
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 4)

	f, err := os.Open(filepath.Join(dir, "schedule_export.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "date", "time_slot", "activity", "assigned_member_id"},
		{"1", "2024-05-02", "09:00", "Kit wash", ""},
		{"2", "2024-05-03", "18:00", "Training", "1"},
	}, records)
}

func TestExporter_ExportAll_XLSX(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)

	res, err := e.ExportAll(context.Background(), fixtureSource(), "excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, res.Format)
	require.Len(t, res.Artifacts, 4)

	wb, err := excelize.OpenFile(filepath.Join(dir, "match_participation_export.xlsx"))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("match_participation")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "member_id", "match_id", "role", "performance_score"}, rows[0])
	assert.Equal(t, "Starter", rows[1][3])
}

func TestExporter_ExportAll_OneTableUnwritable(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the matches file makes that one write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "matches_export.csv"), 0o755))
	e := NewExporter(dir, nil)

	res, err := e.ExportAll(context.Background(), fixtureSource(), "csv")

	require.Error(t, err)
	var tableErr *TableExportError
	require.True(t, errors.As(err, &tableErr))
	assert.Equal(t, analyticsdomain.TableMatches, tableErr.Table)
	assert.Equal(t, FormatCSV, tableErr.Format)

	require.Len(t, res.Artifacts, 3)
	for _, name := range []string{"members", "match_participation", "schedule"} {
		_, statErr := os.Stat(filepath.Join(dir, name+"_export.csv"))
		assert.NoError(t, statErr, name)
	}
}

func TestExporter_ExportAll_FetchFailure(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)
	boom := errors.New("connection reset")
	base := fixtureSource()
	src := TableSourceFunc(func(ctx context.Context, name string) (analyticsdomain.Table, error) {
		if name == analyticsdomain.TableMembers {
			return analyticsdomain.Table{}, boom
		}
		return base.FetchTable(ctx, name)
	})

	res, err := e.ExportAll(context.Background(), src, "csv")

	assert.True(t, errors.Is(err, boom))
	assert.Len(t, res.Artifacts, 3)
}

func TestExporter_ExportAll_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, nil)

	_, err := e.ExportAll(context.Background(), fixtureSource(), "pdf")

	assert.True(t, errors.Is(err, analyticsdomain.ErrUnsupportedFormat))
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
