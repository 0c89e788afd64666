package identityservice

import (
	"log/slog"

	httpadapter "civicpulse/contexts/identity-access/identity-service/adapters/http"
	"civicpulse/contexts/identity-access/identity-service/adapters/memory"
	"civicpulse/contexts/identity-access/identity-service/adapters/password"
	"civicpulse/contexts/identity-access/identity-service/application"
	"civicpulse/contexts/identity-access/identity-service/ports"
	"civicpulse/internal/shared/authctx"
)

// Module is the identity-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
// Registration events reach the bus through the outbox relay in
// application/workers, not through the module itself.
type Dependencies struct {
	Repository ports.Repository
	Hasher     ports.PasswordHasher
	Tokens     *authctx.Resolver
	Clock      ports.Clock
	IDs        ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Hasher: deps.Hasher,
		Tokens: deps.Tokens,
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
// adapters and a low bcrypt cost to keep tests fast.
func NewInMemoryModule(tokens *authctx.Resolver, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Hasher:     password.BcryptHasher{Cost: 4},
		Tokens:     tokens,
		Clock:      store,
		IDs:        store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
