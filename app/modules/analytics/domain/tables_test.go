package analyticsdomain

import "testing"

func TestScheduleTable_UnassignedIsNil(t *testing.T) {
	id := int64(4)
	table := ScheduleTable([]ScheduleEntry{
		{ID: 1, Date: "2024-03-01", TimeSlot: "AM", Activity: "Drill", AssignedMemberID: &id},
		{ID: 2, Date: "2024-03-01", TimeSlot: "PM", Activity: "Review"},
	})

	if table.Name != TableSchedule {
		t.Fatalf("expected table name %q, got %q", TableSchedule, table.Name)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if got := table.Rows[0][4]; got != int64(4) {
		t.Fatalf("expected assigned member 4, got %v", got)
	}
	if got := table.Rows[1][4]; got != nil {
		t.Fatalf("expected nil for unassigned entry, got %v", got)
	}
}

func TestTables_ColumnCountsMatchRows(t *testing.T) {
	tables := []Table{
		MembersTable([]Member{{ID: 1, Name: "A"}}),
		MatchesTable([]Match{{ID: 1, Result: OutcomeWin}}),
		ParticipationsTable([]Participation{{ID: 1, MemberID: 1, MatchID: 1}}),
		ScheduleTable([]ScheduleEntry{{ID: 1}}),
	}
	for _, table := range tables {
		for _, row := range table.Rows {
			if len(row) != len(table.Columns) {
				t.Fatalf("%s: row has %d cells, want %d", table.Name, len(row), len(table.Columns))
			}
		}
	}
}
