package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"prizepool/config"
	"prizepool/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsProvider manages OpenTelemetry metrics for the prize pool
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	messagesHandledCounter   metric.Int64Counter
	messageDurationHist      metric.Float64Histogram
	queriesCounter           metric.Int64Counter
	drawsCounter             metric.Int64Counter
	drawCandidatesHist       metric.Int64Histogram
	prizePaidCounter         metric.Float64Counter
	triggerFeeCounter        metric.Float64Counter
	tokenVolumeCounter       metric.Float64Counter
	lifecycleChangesCounter  metric.Int64Counter
	natsMessagesPublishedCtr metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	return mp.initialize(ctx, nil)
}

// initialize accepts a reader override so tests can collect metrics in memory
func (mp *MetricsProvider) initialize(ctx context.Context, reader sdkmetric.Reader) error {
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

	if reader == nil {
		switch mp.config.OTelExporterType {
		case "console":
			exporter, err := stdoutmetric.New()
			if err != nil {
				return fmt.Errorf("failed to create console exporter: %w", err)
			}
			reader = sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
			)
			log.Info("Using console metric exporter")

		case "none":
			log.Info("Metrics export disabled (exporter_type='none')")
			mp.initialized = true
			return nil

		default:
			return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
		}
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("prizepool")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.messagesHandledCounter, err = mp.meter.Int64Counter(
		MessagesHandledTotal,
		metric.WithDescription("Total number of handled pool messages"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create messages handled counter: %w", err)
	}

	mp.messageDurationHist, err = mp.meter.Float64Histogram(
		MessageHandleDuration,
		metric.WithDescription("Duration of handled pool messages in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create message duration histogram: %w", err)
	}

	mp.queriesCounter, err = mp.meter.Int64Counter(
		QueriesTotal,
		metric.WithDescription("Total number of answered queries"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create queries counter: %w", err)
	}

	mp.drawsCounter, err = mp.meter.Int64Counter(
		DrawsTotal,
		metric.WithDescription("Total number of completed draws by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draws counter: %w", err)
	}

	mp.drawCandidatesHist, err = mp.meter.Int64Histogram(
		DrawCandidates,
		metric.WithDescription("Number of weighted candidates per draw"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draw candidates histogram: %w", err)
	}

	mp.prizePaidCounter, err = mp.meter.Float64Counter(
		PrizePaidTotal,
		metric.WithDescription("Prize tokens credited to winners"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create prize paid counter: %w", err)
	}

	mp.triggerFeeCounter, err = mp.meter.Float64Counter(
		TriggerFeeTotal,
		metric.WithDescription("Trigger fee accrued by draws"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create trigger fee counter: %w", err)
	}

	mp.tokenVolumeCounter, err = mp.meter.Float64Counter(
		TokenVolumeTotal,
		metric.WithDescription("Tokens moved by users, by flow type"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create token volume counter: %w", err)
	}

	mp.lifecycleChangesCounter, err = mp.meter.Int64Counter(
		LifecycleChangesTotal,
		metric.WithDescription("Total number of lifecycle transitions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create lifecycle changes counter: %w", err)
	}

	mp.natsMessagesPublishedCtr, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of events published to NATS"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordMessageHandled records one execute message and how long it took
func (mp *MetricsProvider) RecordMessageHandled(messageType, outcome string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMessageType, messageType),
		attribute.String(LabelOutcome, outcome),
	)
	mp.messagesHandledCounter.Add(context.Background(), 1, attrs)
	mp.messageDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureMessage returns a function that records the message when called
//
//	defer mp.MeasureMessage("deposit")(&outcome)
func (mp *MetricsProvider) MeasureMessage(messageType string) func(outcome *string) {
	start := time.Now()
	return func(outcome *string) {
		mp.RecordMessageHandled(messageType, *outcome, time.Since(start))
	}
}

// RecordQuery records an answered query
func (mp *MetricsProvider) RecordQuery(queryType, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.queriesCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, queryType),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordNATSMessagePublished records an event published to NATS
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCtr.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelEventType, eventType),
		),
	)
}

// SubscribeToBus derives pool metrics from committed domain events
func (mp *MetricsProvider) SubscribeToBus(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDrawCompleted, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.DrawCompletedEvent)
		if !ok || !mp.isEnabled() {
			return
		}
		status := metric.WithAttributes(attribute.String(LabelStatus, ev.Status))
		mp.drawsCounter.Add(ctx, 1, status)
		mp.drawCandidatesHist.Record(ctx, int64(ev.Candidates), status)
		mp.prizePaidCounter.Add(ctx, tokens(ev.Payout))
		mp.triggerFeeCounter.Add(ctx, tokens(ev.Fee))
	})

	flows := map[events.EventType]func(events.Event) (string, string){
		events.EventTypeStakeDeposited: func(e events.Event) (string, string) {
			return FlowDeposit, e.(events.StakeDepositedEvent).Amount
		},
		events.EventTypeTokensWithdrawn: func(e events.Event) (string, string) {
			return FlowWithdraw, e.(events.TokensWithdrawnEvent).Amount
		},
		events.EventTypeStakeRedelegated: func(e events.Event) (string, string) {
			return FlowRedelegate, e.(events.StakeRedelegatedEvent).Amount
		},
		events.EventTypeStakeUnwound: func(e events.Event) (string, string) {
			return FlowUnwind, e.(events.StakeUnwoundEvent).Amount
		},
	}
	for eventType, extract := range flows {
		bus.Subscribe(eventType, func(ctx context.Context, e events.Event) {
			if !mp.isEnabled() {
				return
			}
			flow, amount := extract(e)
			mp.tokenVolumeCounter.Add(ctx, tokens(amount),
				metric.WithAttributes(attribute.String(LabelType, flow)),
			)
		})
	}

	bus.Subscribe(events.EventTypeLifecycleChanged, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.LifecycleChangedEvent)
		if !ok || !mp.isEnabled() {
			return
		}
		mp.lifecycleChangesCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String(LabelAction, ev.Action)),
		)
	})
}

// tokens converts a decimal amount to float64. Precision loss above 2^53 is acceptable for metrics.
func tokens(amount string) float64 {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider. It is never nil.
func GetMetrics() *MetricsProvider {
	if globalMetrics == nil {
		return NewMetricsProvider(config.NewTestConfig())
	}
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
