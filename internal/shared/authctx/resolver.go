package authctx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is the cookie consulted when no Authorization header is present.
const TokenCookie = "token"

// Config carries the shared-secret contract between the token issuer and
// every resolver instance. Built once at startup from process configuration
// and injected; read-only afterwards.
type Config struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration
}

// Resolver converts a raw bearer credential into a Context and mints tokens
// for the identity context. Resolution is a pure function of the credential
// and the verification secret: no cache, no I/O, so a rotated secret takes
// effect on the very next request.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

func NewResolver(cfg Config, logger *slog.Logger) (*Resolver, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("authctx: signing secret is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger}, nil
}

// tokenClaims is the wire shape of the compact token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Resolve turns a raw credential into an authorization context.
//
// Absence of a credential is not a failure: public operations run as
// Anonymous. A bad signature, malformed token, expired exp, or a role outside
// the taxonomy also degrade to Anonymous. The resolver never raises past its
// boundary; private endpoints fail in the guards, not at transport level, and
// an invalid token is never upgraded to any identity.
func (r *Resolver) Resolve(rawToken string) Context {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Anonymous()
	}

	parsed := &tokenClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.cfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(rawToken, parsed, func(*jwt.Token) (any, error) {
		return r.cfg.Secret, nil
	}, opts...)
	if err != nil {
		r.logger.Warn("credential rejected, continuing as anonymous",
			"event", "authctx_token_rejected",
			"module", "internal/shared/authctx",
			"layer", "shared",
			"error", err.Error(),
		)
		return Anonymous()
	}

	role, ok := ParseRole(parsed.Role)
	if !ok {
		r.logger.Warn("credential carries role outside taxonomy, continuing as anonymous",
			"event", "authctx_untrusted_role",
			"module", "internal/shared/authctx",
			"layer", "shared",
			"role", parsed.Role,
		)
		return Anonymous()
	}

	return Authenticated(Claims{
		SubjectID: parsed.Subject,
		Username:  parsed.Username,
		Email:     parsed.Email,
		Role:      role,
	})
}

// Issue mints a signed, time-limited token encoding the claims. The identity
// context calls this at login/registration; every field is carried verbatim
// so Resolve reconstructs the exact claims.
func (r *Resolver) Issue(claims Claims, now time.Time) (string, error) {
	if !claims.Role.Valid() {
		return "", ErrInvalidRole
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			Issuer:    r.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.cfg.TokenTTL)),
		},
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role.String(),
	})
	return token.SignedString(r.cfg.Secret)
}

// TokenTTL exposes the configured lifetime for response metadata.
func (r *Resolver) TokenTTL() time.Duration { return r.cfg.TokenTTL }

// BearerFromRequest extracts the raw credential from an inbound request:
// Authorization: Bearer header first, then the token cookie. Returns the
// empty string when neither is present.
func BearerFromRequest(req *http.Request) string {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	if cookie, err := req.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
