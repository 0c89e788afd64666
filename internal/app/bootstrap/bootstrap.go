package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	notificationservice "civicpulse/contexts/civic-alerts/notification-service"
	alertevents "civicpulse/contexts/civic-alerts/notification-service/adapters/events"
	alertpostgres "civicpulse/contexts/civic-alerts/notification-service/adapters/postgres"
	alertworkers "civicpulse/contexts/civic-alerts/notification-service/application/workers"
	issueservice "civicpulse/contexts/civic-issues/issue-service"
	"civicpulse/contexts/civic-issues/issue-service/adapters/directory"
	issueevents "civicpulse/contexts/civic-issues/issue-service/adapters/events"
	issuepostgres "civicpulse/contexts/civic-issues/issue-service/adapters/postgres"
	issueworkers "civicpulse/contexts/civic-issues/issue-service/application/workers"
	engagementservice "civicpulse/contexts/community-engagement/engagement-service"
	engagementpostgres "civicpulse/contexts/community-engagement/engagement-service/adapters/postgres"
	identityservice "civicpulse/contexts/identity-access/identity-service"
	identityevents "civicpulse/contexts/identity-access/identity-service/adapters/events"
	"civicpulse/contexts/identity-access/identity-service/adapters/password"
	identitypostgres "civicpulse/contexts/identity-access/identity-service/adapters/postgres"
	identityworkers "civicpulse/contexts/identity-access/identity-service/application/workers"
	"civicpulse/internal/platform/config"
	"civicpulse/internal/platform/db"
	"civicpulse/internal/platform/httpserver"
	"civicpulse/internal/platform/messaging"
	"civicpulse/internal/shared/authctx"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so context code stays framework-agnostic.

const (
	topicIssues   = "civic.issues"
	topicIdentity = "civic.identity"
	topicAlerts   = "civic.alerts"

	idempotencyTTL = 7 * 24 * time.Hour
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	bus           *messaging.Kafka
	identityRelay identityworkers.OutboxRelay
	issueRelay    issueworkers.OutboxRelay
	alertRelay    alertworkers.OutboxRelay
	consumer      alertworkers.Consumer
	welcome       bool
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	resolver, err := authctx.NewResolver(authctx.Config{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		TokenTTL: cfg.TokenTTL,
	}, logger)
	if err != nil {
		return nil, err
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	identityRepo := identitypostgres.NewRepository(pg.DB, logger)
	identity := identityservice.NewModule(identityservice.Dependencies{
		Repository: identityRepo,
		Hasher:     password.BcryptHasher{},
		Tokens:     resolver,
		Clock:      identitypostgres.SystemClock{},
		IDs:        identitypostgres.UUIDGenerator{},
		Logger:     logger,
	})

	issueRepo := issuepostgres.NewRepository(pg.DB, logger)
	issues := issueservice.NewModule(issueservice.Dependencies{
		Repository:     issueRepo,
		Idempotency:    issueRepo,
		Clock:          issuepostgres.SystemClock{},
		IDs:            issuepostgres.UUIDGenerator{},
		IdempotencyTTL: idempotencyTTL,
		Logger:         logger,
	})

	engagementRepo := engagementpostgres.NewRepository(pg.DB, logger)
	engagement := engagementservice.NewModule(engagementservice.Dependencies{
		Repository: engagementRepo,
		Issues:     directory.Directory{Repo: issueRepo},
		Clock:      engagementpostgres.SystemClock{},
		IDs:        engagementpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	alertRepo := alertpostgres.NewRepository(pg.DB, logger)
	alerts := notificationservice.NewModule(notificationservice.Dependencies{
		Repository:     alertRepo,
		Idempotency:    alertRepo,
		Dedup:          alertRepo,
		Clock:          alertpostgres.SystemClock{},
		IDs:            alertpostgres.UUIDGenerator{},
		IdempotencyTTL: idempotencyTTL,
		Logger:         logger,
	})

	server := httpserver.New(resolver, identity, issues, engagement, alerts, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	identityRepo := identitypostgres.NewRepository(pg.DB, logger)
	issueRepo := issuepostgres.NewRepository(pg.DB, logger)
	alertRepo := alertpostgres.NewRepository(pg.DB, logger)
	alerts := notificationservice.NewModule(notificationservice.Dependencies{
		Repository:     alertRepo,
		Idempotency:    alertRepo,
		Dedup:          alertRepo,
		Clock:          alertpostgres.SystemClock{},
		IDs:            alertpostgres.UUIDGenerator{},
		IdempotencyTTL: idempotencyTTL,
		Logger:         logger,
	})

	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		identityRelay: identityworkers.OutboxRelay{
			Outbox: identityRepo,
			Publisher: identityevents.Publisher{
				Bus:    bus,
				Topic:  topicIdentity,
				Logger: logger,
			},
			Clock:     identitypostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		issueRelay: issueworkers.OutboxRelay{
			Outbox: issueRepo,
			Publisher: issueevents.Publisher{
				Bus:    bus,
				Topic:  topicIssues,
				Logger: logger,
			},
			Clock:     issuepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		alertRelay: alertworkers.OutboxRelay{
			Outbox: alertRepo,
			Publisher: alertevents.Publisher{
				Bus:    bus,
				Topic:  topicAlerts,
				Logger: logger,
			},
			Clock:     alertpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		consumer:     alerts.Consumer,
		welcome:      cfg.EnableWelcomeNotifications,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.bus.Subscribe(ctx, topicIssues, "notification-service-cg", w.consumer.HandleEvent); err != nil {
		return err
	}
	if w.welcome {
		if err := w.bus.Subscribe(ctx, topicIdentity, "notification-service-cg", w.consumer.HandleEvent); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"welcome_notifications", w.welcome,
	)

	// Relay passes are retried on the next tick: a transient bus or
	// database failure must not take the worker down.
	relays := []struct {
		name string
		run  func(context.Context) error
	}{
		{"identity", w.identityRelay.RunOnce},
		{"issue", w.issueRelay.RunOnce},
		{"alert", w.alertRelay.RunOnce},
	}
	for {
		for _, relay := range relays {
			if err := relay.run(ctx); err != nil && w.logger != nil {
				w.logger.Warn("relay pass failed",
					"event", "bootstrap_relay_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"relay", relay.name,
					"error", err.Error(),
				)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
