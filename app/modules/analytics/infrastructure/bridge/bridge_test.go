package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	RunFunc func(ctx context.Context, inv Invocation) (Output, error)
	calls   []Invocation
}

func (s *stubRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	s.calls = append(s.calls, inv)
	if s.RunFunc != nil {
		return s.RunFunc(ctx, inv)
	}
	return Output{}, nil
}

func ptr(f float64) *float64 { return &f }

func sampleStats() []analyticsdomain.MemberStatistics {
	return []analyticsdomain.MemberStatistics{
		{ID: 1, Name: "Alice", Position: "Forward", ExperienceLevel: "advanced", MatchesPlayed: 2, AvgPerformance: ptr(7.5), Wins: 1},
		{ID: 2, Name: "Bob", Position: "Keeper", ExperienceLevel: "novice"},
	}
}

func TestWriteInterchange(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteInterchange(&sb, sampleStats()))
	want := "id,name,position,experience_level,matches_played,avg_performance,wins\n" +
		"1,Alice,Forward,advanced,2,7.5,1\n" +
		"2,Bob,Keeper,novice,0,,0\n"
	assert.Equal(t, want, sb.String())
}

func TestBridge_Analyze(t *testing.T) {
	tests := []struct {
		name         string
		runFunc      func(dir string) func(ctx context.Context, inv Invocation) (Output, error)
		wantOutcome  Outcome
		wantSummary  string
		wantArtifact int
	}{
		{
			name: "tool missing is skipped",
			runFunc: func(string) func(context.Context, Invocation) (Output, error) {
				return func(context.Context, Invocation) (Output, error) {
					return Output{ExitCode: -1}, ErrToolUnavailable
				}
			},
			wantOutcome: OutcomeSkipped,
			wantSummary: SkippedMessage,
		},
		{
			name: "non-zero exit fails",
			runFunc: func(string) func(context.Context, Invocation) (Output, error) {
				return func(context.Context, Invocation) (Output, error) {
					return Output{Stderr: "there is no package called 'ggplot2'", ExitCode: 1}, nil
				}
			},
			wantOutcome: OutcomeFailed,
		},
		{
			name: "deadline fails",
			runFunc: func(string) func(context.Context, Invocation) (Output, error) {
				return func(context.Context, Invocation) (Output, error) {
					return Output{ExitCode: -1}, context.DeadlineExceeded
				}
			},
			wantOutcome: OutcomeFailed,
		},
		{
			name: "success lists produced artifacts",
			runFunc: func(dir string) func(context.Context, Invocation) (Output, error) {
				return func(context.Context, Invocation) (Output, error) {
					if err := os.WriteFile(filepath.Join(dir, "performance_chart.png"), []byte("png"), 0o644); err != nil {
						return Output{}, err
					}
					return Output{Stdout: "=== Performance summary ===\n"}, nil
				}
			},
			wantOutcome:  OutcomeSucceeded,
			wantSummary:  "=== Performance summary ===\n",
			wantArtifact: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			runner := &stubRunner{RunFunc: tt.runFunc(dir)}
			b := New("Rscript", dir, nil)
			b.Runner = runner

			res := b.Analyze(context.Background(), sampleStats())

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			if tt.wantSummary != "" {
				assert.Equal(t, tt.wantSummary, res.Summary)
			}
			assert.Len(t, res.Artifacts, tt.wantArtifact)
			if tt.wantOutcome != OutcomeSucceeded {
				assert.Error(t, res.Err)
			}

			require.Len(t, runner.calls, 1)
			inv := runner.calls[0]
			assert.Equal(t, "Rscript", inv.Tool)
			require.Len(t, inv.Args, 1)
			assert.Equal(t, ScriptFile, filepath.Base(inv.Args[0]))
			assert.Equal(t, dir, inv.Dir)

			data, err := os.ReadFile(filepath.Join(dir, InterchangeFile))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(data), strings.Join(InterchangeHeader, ",")))
			_, err = os.Stat(filepath.Join(dir, ScriptFile))
			assert.NoError(t, err)
		})
	}
}

func TestBridge_Analyze_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	runner := &stubRunner{}
	b := &Bridge{Tool: "Rscript", Dir: filepath.Join(blocker, "sub"), Runner: runner}
	res := b.Analyze(context.Background(), sampleStats())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.Empty(t, runner.calls)
}

func TestExecRunner_MissingTool(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Invocation{Tool: "definitely-not-installed-ledger-tool"})
	assert.True(t, errors.Is(err, ErrToolUnavailable))
}
