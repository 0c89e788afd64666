package engagementservice

import (
	"log/slog"

	httpadapter "civicpulse/contexts/community-engagement/engagement-service/adapters/http"
	"civicpulse/contexts/community-engagement/engagement-service/adapters/memory"
	"civicpulse/contexts/community-engagement/engagement-service/application"
	"civicpulse/contexts/community-engagement/engagement-service/ports"
)

// Module is the engagement-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository ports.Repository
	Issues     ports.IssueDirectory
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Issues: deps.Issues,
		Clock:  deps.Clock,
		IDs:    deps.IDs,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. The issue directory is still injected: engagement always
// validates against the issue context, even in memory wiring.
func NewInMemoryModule(issues ports.IssueDirectory, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Issues:     issues,
		Clock:      store,
		IDs:        store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
