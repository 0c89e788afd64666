package notificationservice

import (
	"log/slog"
	"time"

	httpadapter "civicpulse/contexts/civic-alerts/notification-service/adapters/http"
	"civicpulse/contexts/civic-alerts/notification-service/adapters/memory"
	"civicpulse/contexts/civic-alerts/notification-service/application"
	"civicpulse/contexts/civic-alerts/notification-service/application/workers"
	"civicpulse/contexts/civic-alerts/notification-service/ports"
)

// Module is the notification-service composition root exposed to runtime
// wiring. Consumer is handed to the bus subscription at bootstrap.
type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.Consumer
	Store    *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Dedup          ports.DedupStore
	Clock          ports.Clock
	IDs            ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:           deps.Repository,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDs:            deps.IDs,
		Logger:         deps.Logger,
		IdempotencyTTL: deps.IdempotencyTTL,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Consumer: workers.Consumer{
			Repo:   deps.Repository,
			Dedup:  deps.Dedup,
			Clock:  deps.Clock,
			IDs:    deps.IDs,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:     store,
		Idempotency:    store,
		Dedup:          store,
		Clock:          store,
		IDs:            store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
