package observability

import (
	"context"
	"errors"
	"testing"

	"escrowbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.start(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	want := attribute.NewSet(attrs...)
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, point := range sum.DataPoints {
				if len(attrs) == 0 || point.Attributes.Equals(&want) {
					total += point.Value
				}
			}
		}
	}
	return total
}

func TestMetricsProvider_RecordsEscrowCalls(t *testing.T) {
	mp, reader := newManualProvider(t)
	ctx := context.Background()

	mp.RecordEscrowCall(ctx, "initialize", nil)
	mp.RecordEscrowCall(ctx, "initialize", nil)
	mp.RecordEscrowCall(ctx, "deposit", errors.New("rejected"))

	assert.Equal(t, int64(2), collectSum(t, reader, EscrowCallsTotal,
		attribute.String(LabelOp, "initialize"),
		attribute.String(LabelOutcome, OutcomeSuccess),
	))
	assert.Equal(t, int64(1), collectSum(t, reader, EscrowCallsTotal,
		attribute.String(LabelOp, "deposit"),
		attribute.String(LabelOutcome, OutcomeFailure),
	))
}

func TestMetricsProvider_RecordsCommandsAndAccounts(t *testing.T) {
	mp, reader := newManualProvider(t)
	ctx := context.Background()

	mp.RecordCommand(ctx, "BET", nil)
	mp.RecordAccountCreated(ctx)
	mp.RecordDuplicateEvent(ctx)
	mp.RecordNATSMessagePublished(ctx, "bet_opened")

	assert.Equal(t, int64(1), collectSum(t, reader, CommandsTotal))
	assert.Equal(t, int64(1), collectSum(t, reader, AccountsCreatedTotal))
	assert.Equal(t, int64(1), collectSum(t, reader, DuplicateEventsTotal))
	assert.Equal(t, int64(1), collectSum(t, reader, NATSMessagesPublishedTotal))
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = false

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.False(t, mp.isEnabled())

	mp.RecordCommand(context.Background(), "BET", nil)
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_NilIsNoop(t *testing.T) {
	var mp *MetricsProvider
	mp.RecordEscrowCall(context.Background(), "outcome", nil)
	mp.RecordCommand(context.Background(), "ACCEPT", nil)
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	err := NewMetricsProvider(cfg).Initialize(context.Background())
	assert.Error(t, err)
}
