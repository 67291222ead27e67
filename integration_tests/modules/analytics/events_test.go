package analyticsintegrationtests

import (
	"context"
	"testing"
	"time"

	"github.com/Black-And-White-Club/team-ledger/app/modules/analytics"
	rosterdb "github.com/Black-And-White-Club/team-ledger/app/modules/roster/infrastructure/repositories"
	analyticsevents "github.com/Black-And-White-Club/team-ledger/pkg/events/analytics"
	"github.com/Black-And-White-Club/team-ledger/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startModule runs the analytics module with its event router on the shared NATS bus.
func startModule(t *testing.T) (context.Context, *analytics.Module) {
	t.Helper()
	env := GetTestEnv(t)
	obs := testObservability()

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NewSlogLogger(obs.Logger))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(env.Ctx, 60*time.Second)
	module, err := analytics.NewAnalyticsModule(ctx, obs, analytics.Settings{
		OutputDir:       t.TempDir(),
		AnalysisTool:    "ledger-analysis-tool-missing",
		AnalysisTimeout: 5 * time.Second,
		RatePerSecond:   10,
		RateBurst:       10,
	}, env.EventBus, env.EventBus, router, env.DB)
	require.NoError(t, err)

	go func() {
		if err := router.Run(ctx); err != nil {
			t.Logf("router stopped: %v", err)
		}
	}()
	select {
	case <-router.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	t.Cleanup(func() {
		_ = module.Close()
		_ = router.Close()
		cancel()
	})
	return ctx, module
}

func publishRequest(t *testing.T, ctx context.Context, topic string, payload any) {
	t.Helper()
	msg, err := handlerwrapper.NewMessage(ctx, handlerwrapper.Result{Topic: topic, Payload: payload})
	require.NoError(t, err)
	require.NoError(t, GetTestEnv(t).EventBus.Publish(topic, msg))
}

// await returns the first message on ch whose correlation ID is runID.
func await(t *testing.T, ctx context.Context, ch <-chan *message.Message, runID string) *message.Message {
	t.Helper()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed")
			}
			msg.Ack()
			if msg.Metadata.Get(handlerwrapper.CorrelationIDKey) == runID {
				return msg
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for run %s", runID)
		}
	}
}

func TestReportRequested_PublishesCompleted(t *testing.T) {
	ctx, _ := startModule(t)
	env := GetTestEnv(t)
	repo := rosterdb.NewRepository(env.DB)
	require.NoError(t, repo.InsertMember(ctx, env.DB, &rosterdb.Member{Name: "Ada", Position: "Keeper"}))

	completed, err := env.EventBus.Subscribe(ctx, analyticsevents.ReportCompletedV1)
	require.NoError(t, err)

	runID := uuid.NewString()
	publishRequest(t, ctx, analyticsevents.ReportRequestedV1, analyticsevents.ReportRequestedPayloadV1{
		RunID:  runID,
		Report: analyticsevents.ReportMembers,
	})

	msg := await(t, ctx, completed, runID)
	var payload analyticsevents.ReportCompletedPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, runID, payload.RunID)
	assert.Equal(t, analyticsevents.ReportMembers, payload.Report)
	assert.Equal(t, 1, payload.Rows)
	assert.False(t, payload.NoData)
}

func TestExportRequested_UnsupportedFormatPublishesFailed(t *testing.T) {
	ctx, _ := startModule(t)
	env := GetTestEnv(t)

	failed, err := env.EventBus.Subscribe(ctx, analyticsevents.ReportFailedV1)
	require.NoError(t, err)

	runID := uuid.NewString()
	publishRequest(t, ctx, analyticsevents.ExportRequestedV1, analyticsevents.ExportRequestedPayloadV1{
		RunID:  runID,
		Format: "pdf",
	})

	msg := await(t, ctx, failed, runID)
	var payload analyticsevents.ReportFailedPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, analyticsevents.ReportExport, payload.Report)
	assert.Contains(t, payload.Reason, "pdf")
}
