package observability

import (
	"context"
	"testing"
	"time"

	"prizepool/config"
	"prizepool/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.initialize(context.Background(), reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordMessageHandled("deposit", OutcomeOK, time.Millisecond)
		mp.RecordQuery("pool_state", OutcomeOK)
	})
}

func TestMetricsProvider_RecordsMessages(t *testing.T) {
	t.Parallel()
	mp, reader := newTestProvider(t)

	outcome := OutcomeRejected
	mp.MeasureMessage("claim_rewards")(&outcome)
	mp.RecordQuery("lottery_info", OutcomeOK)

	data := collect(t, reader)
	handled, ok := data[MessagesHandledTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, handled.DataPoints, 1)
	assert.Equal(t, int64(1), handled.DataPoints[0].Value)

	outcomeAttr, _ := handled.DataPoints[0].Attributes.Value(LabelOutcome)
	assert.Equal(t, OutcomeRejected, outcomeAttr.AsString())

	queries, ok := data[QueriesTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), queries.DataPoints[0].Value)
}

func TestMetricsProvider_SubscribeToBus(t *testing.T) {
	t.Parallel()
	mp, reader := newTestProvider(t)

	bus := events.NewBus()
	mp.SubscribeToBus(bus)

	ctx := context.Background()
	bus.Emit(ctx, events.DrawCompletedEvent{Status: "winner", Winner: "alice", Prize: "11000", Fee: "110", Payout: "10890", Candidates: 2})
	bus.Emit(ctx, events.StakeDepositedEvent{Address: "bob", Amount: "1000000"})
	bus.Emit(ctx, events.StakeDepositedEvent{Address: "carol", Amount: "2000000"})
	bus.Emit(ctx, events.LifecycleChangedEvent{Action: "stop", OldState: "running", NewState: "stopped"})

	data := collect(t, reader)

	draws, ok := data[DrawsTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), draws.DataPoints[0].Value)

	prize, ok := data[PrizePaidTotal].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.InDelta(t, 10890, prize.DataPoints[0].Value, 0.001)

	volume, ok := data[TokenVolumeTotal].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, volume.DataPoints, 1)
	assert.InDelta(t, 3_000_000, volume.DataPoints[0].Value, 0.001)

	changes, ok := data[LifecycleChangesTotal].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), changes.DataPoints[0].Value)
}
