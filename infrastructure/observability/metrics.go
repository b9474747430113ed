package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"escrowbot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages OpenTelemetry metrics for the bot.
// A nil provider and a disabled provider both record nothing.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	commandsCounter        metric.Int64Counter
	escrowCallsCounter     metric.Int64Counter
	accountsCreatedCounter metric.Int64Counter
	natsPublishedCounter   metric.Int64Counter
	duplicateEventsCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(reader); err != nil {
		return err
	}

	otel.SetMeterProvider(mp.meterProvider)
	log.Info("Metrics provider initialized successfully")
	return nil
}

// start builds the meter provider over reader. Callers hold mu.
func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("escrowbot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.commandsCounter, err = mp.meter.Int64Counter(
		CommandsTotal,
		metric.WithDescription("Total number of bot commands handled"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create commands counter: %w", err)
	}

	mp.escrowCallsCounter, err = mp.meter.Int64Counter(
		EscrowCallsTotal,
		metric.WithDescription("Total number of escrow program calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create escrow calls counter: %w", err)
	}

	mp.accountsCreatedCounter, err = mp.meter.Int64Counter(
		AccountsCreatedTotal,
		metric.WithDescription("Total number of custodial accounts created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create accounts created counter: %w", err)
	}

	mp.natsPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	mp.duplicateEventsCounter, err = mp.meter.Int64Counter(
		DuplicateEventsTotal,
		metric.WithDescription("Total number of redelivered social events dropped"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duplicate events counter: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordCommand records a handled command
func (mp *MetricsProvider) RecordCommand(ctx context.Context, verb string, err error) {
	if !mp.isEnabled() {
		return
	}

	mp.commandsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelVerb, verb),
			attribute.String(LabelOutcome, outcome(err)),
		),
	)
}

// RecordEscrowCall records one escrow program call
func (mp *MetricsProvider) RecordEscrowCall(ctx context.Context, op string, err error) {
	if !mp.isEnabled() {
		return
	}

	mp.escrowCallsCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelOp, op),
			attribute.String(LabelOutcome, outcome(err)),
		),
	)
}

// RecordAccountCreated records a new custodial account
func (mp *MetricsProvider) RecordAccountCreated(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}

	mp.accountsCreatedCounter.Add(ctx, 1)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(ctx context.Context, eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsPublishedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// RecordDuplicateEvent records a dropped redelivery
func (mp *MetricsProvider) RecordDuplicateEvent(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}

	mp.duplicateEventsCounter.Add(ctx, 1)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
