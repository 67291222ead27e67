package bridge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	analyticsdomain "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability/attr"
)

const (
	InterchangeFile = "performance_data.csv"
	ScriptFile      = "R_analysis.R"
	DefaultTool     = "Rscript"
)

// ArtifactFiles are the images the analysis script is expected to produce.
var ArtifactFiles = []string{"performance_chart.png", "participation_chart.png"}

//go:embed scripts/R_analysis.R
var analysisScript []byte

// Outcome classifies a bridge run.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeSucceeded Outcome = "succeeded"
)

// SkippedMessage is reported when the external tool is not installed.
const SkippedMessage = "external tool unavailable, skipped"

// Result is the outcome of one analysis run. Err is set for failed and skipped
// runs; it is informational and never aborts the caller.
type Result struct {
	Outcome     Outcome
	Summary     string
	Diagnostics string
	ExitCode    int
	Artifacts   []string
	Err         error
}

// Analyzer hands member statistics to an external analysis tool.
type Analyzer interface {
	Analyze(ctx context.Context, stats []analyticsdomain.MemberStatistics) Result
}

// Bridge writes the interchange file and script into Dir and invokes Tool with
// the script path as its only argument.
type Bridge struct {
	Tool   string
	Dir    string
	Runner Runner
	Logger *slog.Logger
}

// New builds a Bridge backed by os/exec.
func New(tool, dir string, logger *slog.Logger) *Bridge {
	if tool == "" {
		tool = DefaultTool
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{Tool: tool, Dir: dir, Runner: ExecRunner{}, Logger: logger}
}

// Analyze never returns an error; every problem is folded into the Result.
func (b *Bridge) Analyze(ctx context.Context, stats []analyticsdomain.MemberStatistics) Result {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return b.fail(ctx, fmt.Errorf("create work dir %s: %w", b.Dir, err))
	}
	if err := writeInterchangeFile(filepath.Join(b.Dir, InterchangeFile), stats); err != nil {
		return b.fail(ctx, err)
	}
	scriptPath := filepath.Join(b.Dir, ScriptFile)
	if err := os.WriteFile(scriptPath, analysisScript, 0o644); err != nil {
		return b.fail(ctx, fmt.Errorf("write analysis script: %w", err))
	}

	absScript, err := filepath.Abs(scriptPath)
	if err != nil {
		absScript = scriptPath
	}
	out, err := b.Runner.Run(ctx, Invocation{Tool: b.Tool, Args: []string{absScript}, Dir: b.Dir})
	switch {
	case errors.Is(err, ErrToolUnavailable):
		logger.InfoContext(ctx, SkippedMessage, attr.String("tool", b.Tool))
		return Result{Outcome: OutcomeSkipped, Summary: SkippedMessage, ExitCode: -1, Err: err}
	case err != nil || out.ExitCode != 0:
		if err == nil {
			err = fmt.Errorf("%s exited with status %d", b.Tool, out.ExitCode)
		}
		logger.WarnContext(ctx, "external analysis failed",
			attr.String("tool", b.Tool),
			attr.Int("exit_code", out.ExitCode),
			attr.String("stderr", strings.TrimSpace(out.Stderr)),
			attr.Error(err),
		)
		return Result{Outcome: OutcomeFailed, Diagnostics: out.Stderr, ExitCode: out.ExitCode, Err: err}
	}

	res := Result{Outcome: OutcomeSucceeded, Summary: out.Stdout, Diagnostics: out.Stderr, ExitCode: out.ExitCode}
	for _, name := range ArtifactFiles {
		p := filepath.Join(b.Dir, name)
		if _, statErr := os.Stat(p); statErr == nil {
			res.Artifacts = append(res.Artifacts, p)
		}
	}
	logger.InfoContext(ctx, "external analysis completed",
		attr.String("tool", b.Tool),
		attr.Int("artifacts", len(res.Artifacts)),
	)
	return res
}

func (b *Bridge) fail(ctx context.Context, err error) Result {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "external analysis not run", attr.Error(err))
	return Result{Outcome: OutcomeFailed, ExitCode: -1, Err: err}
}
