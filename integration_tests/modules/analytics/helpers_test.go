package analyticsintegrationtests

import (
	"io"
	"log/slog"
	"testing"
	"time"

	analyticsservice "github.com/Black-And-White-Club/team-ledger/app/modules/analytics/application"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/bridge"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/export"
	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics/infrastructure/render"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	rosterseed "github.com/Black-And-White-Club/team-ledger/app/modules/roster/seed"
	"github.com/Black-And-White-Club/team-ledger/integration_tests/testutils"
	"github.com/Black-And-White-Club/team-ledger/pkg/observability"
	analyticsmetrics "github.com/Black-And-White-Club/team-ledger/pkg/observability/metrics/analytics"
	"go.opentelemetry.io/otel/trace/noop"
)

type serviceDeps struct {
	env     *testutils.TestEnvironment
	repo    rosterdb.Repository
	service *analyticsservice.AnalyticsService
	dir     string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testObservability() *observability.Observability {
	return &observability.Observability{
		Logger: discardLogger(),
		Tracer: noop.NewTracerProvider().Tracer("test"),
	}
}

// setupService builds the service against the shared Postgres database. The
// analysis tool does not exist, so performance reports are always skipped.
func setupService(t *testing.T) serviceDeps {
	t.Helper()
	env := GetTestEnv(t)
	dir := t.TempDir()
	logger := discardLogger()
	repo := rosterdb.NewRepository(env.DB)

	svc := analyticsservice.NewAnalyticsService(
		repo,
		bridge.New("ledger-analysis-tool-missing", dir, logger),
		render.NewRenderer(dir, logger),
		export.NewExporter(dir, logger),
		logger,
		analyticsmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		env.DB,
		analyticsservice.Options{AnalysisTimeout: 10 * time.Second},
	)
	return serviceDeps{env: env, repo: repo, service: svc, dir: dir}
}

func seedDefault(t *testing.T, deps serviceDeps) rosterseed.Counts {
	t.Helper()
	counts, err := rosterseed.Load(deps.env.Ctx, deps.env.DB, deps.repo, rosterseed.Generate(rosterseed.DefaultOptions()))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return counts
}
