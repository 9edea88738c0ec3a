package cmd

import (
	"context"
	"fmt"
	"time"

	"prizepool/api"
	"prizepool/application"
	"prizepool/config"
	"prizepool/database"
	"prizepool/events"
	"prizepool/infrastructure"
	"prizepool/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// stack is every long-lived component a command needs
type stack struct {
	cfg        *config.Config
	db         *database.DB
	nats       *infrastructure.NATSClient
	blocks     application.BlockSource
	dispatcher *application.Dispatcher
}

// buildStack connects to the database and NATS and wires the dispatcher.
// The returned function releases everything it opened.
func buildStack(ctx context.Context, cfg *config.Config) (*stack, func(), error) {
	// Initialize metrics
	log.Info("Initializing metrics...")
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize NATS
	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers, cfg.NATSRequestTimeout)
	if err := natsClient.Connect(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("NATS connection established successfully")

	// Initialize event bus; metrics observe committed events only
	eventBus := events.NewBus()
	metrics := observability.GetMetrics()
	metrics.SubscribeToBus(eventBus)

	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper(), eventBus)
	if err := ensureStreams(natsClient, eventPublisher); err != nil {
		natsClient.Close()
		db.Close()
		return nil, nil, err
	}
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher, natsClient)

	blocks := application.NewWallClockBlocks(cfg.BlockIntervalSeconds)
	dispatcher := application.NewDispatcher(uowFactory, blocks, cfg.ContractAddress, metrics)

	cleanup := func() {
		log.Info("Closing NATS connection...")
		if err := natsClient.Close(); err != nil {
			log.Errorf("Error closing NATS connection: %v", err)
		}

		log.Info("Closing database connection...")
		db.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.Errorf("Error shutting down metrics: %v", err)
		}
	}

	return &stack{
		cfg:        cfg,
		db:         db,
		nats:       natsClient,
		blocks:     blocks,
		dispatcher: dispatcher,
	}, cleanup, nil
}

func ensureStreams(client *infrastructure.NATSClient, publisher *infrastructure.NATSEventPublisher) error {
	if err := client.EnsureCommandStream(); err != nil {
		return fmt.Errorf("failed to ensure command stream: %w", err)
	}
	if err := publisher.EnsureEventStream(client); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	return nil
}

// Run starts the HTTP API and the draw trigger worker and blocks until ctx is done
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting prize pool...")

	s, cleanup, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(s.dispatcher, cfg.HTTPAddr, map[string]api.HealthCheck{
		"database": func() error { return s.db.Ping(ctx) },
		"nats": func() error {
			if !s.nats.IsConnected() {
				return fmt.Errorf("not connected")
			}
			return nil
		},
	})
	stopServer := server.Start(ctx)
	defer stopServer()

	if cfg.DrawWorkerEnabled {
		worker := application.NewDrawTriggerWorker(s.dispatcher, s.blocks, cfg.TriggererAddress, cfg.DrawPollInterval)
		stopWorker := worker.Start(ctx)
		defer stopWorker()
	}

	log.Infof("Prize pool is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down prize pool...")
	return nil
}

// Draw triggers a single draw if the current window has ended
func Draw(ctx context.Context, cfg *config.Config) error {
	s, cleanup, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	worker := application.NewDrawTriggerWorker(s.dispatcher, s.blocks, cfg.TriggererAddress, cfg.DrawPollInterval)
	wait, err := worker.RunOnce(ctx)
	if err != nil {
		return err
	}
	log.WithField("next_check", wait).Info("Draw check finished")
	return nil
}

// Execute submits one message and returns the answer
func Execute(ctx context.Context, cfg *config.Config, req application.ExecuteRequest) (*application.HandleAnswer, error) {
	s, cleanup, err := buildStack(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return s.dispatcher.Execute(ctx, req)
}
