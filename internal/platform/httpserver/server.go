package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	notificationservice "civicpulse/contexts/civic-alerts/notification-service"
	issueservice "civicpulse/contexts/civic-issues/issue-service"
	engagementservice "civicpulse/contexts/community-engagement/engagement-service"
	identityservice "civicpulse/contexts/identity-access/identity-service"
	"civicpulse/internal/shared/authctx"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "civicpulse/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	resolver   *authctx.Resolver
	identity   identityservice.Module
	issues     issueservice.Module
	engagement engagementservice.Module
	alerts     notificationservice.Module
}

func New(
	resolver *authctx.Resolver,
	identity identityservice.Module,
	issues issueservice.Module,
	engagement engagementservice.Module,
	alerts notificationservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		resolver:   resolver,
		identity:   identity,
		issues:     issues,
		engagement: engagement,
		alerts:     alerts,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerIdentityRoutes()
	s.registerIssueRoutes()
	s.registerEngagementRoutes()
	s.registerAlertRoutes()
}

// authContext resolves the caller's identity from the request. Missing,
// malformed, or expired tokens resolve to anonymous; the guards in the
// application layer decide whether anonymous is acceptable.
func (s *Server) authContext(r *http.Request) authctx.Context {
	return s.resolver.Resolve(authctx.BearerFromRequest(r))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
