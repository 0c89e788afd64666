package authctx

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	resolver, err := NewResolver(Config{
		Secret:   []byte("test-secret"),
		Issuer:   "civicpulse",
		TokenTTL: time.Hour,
	}, nil)
	require.NoError(t, err)
	return resolver
}

func TestResolveRoundTripPreservesClaims(t *testing.T) {
	resolver := newTestResolver(t)
	claims := Claims{
		SubjectID: "user-1",
		Username:  "ada",
		Email:     "ada@example.org",
		Role:      RoleResident,
	}

	token, err := resolver.Issue(claims, time.Now())
	require.NoError(t, err)

	ctx := resolver.Resolve(token)
	require.True(t, ctx.IsAuthenticated())

	got, ok := ctx.Claims()
	require.True(t, ok)
	require.Equal(t, claims, got)

	// Verification is stateless, so repeating it yields the same result.
	again := resolver.Resolve(token)
	gotAgain, _ := again.Claims()
	require.Equal(t, got, gotAgain)
}

func TestResolveMissingTokenIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)

	require.False(t, resolver.Resolve("").IsAuthenticated())
	require.False(t, resolver.Resolve("   ").IsAuthenticated())
}

func TestResolveMalformedTokenIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)

	require.False(t, resolver.Resolve("not-a-token").IsAuthenticated())
	require.False(t, resolver.Resolve("a.b.c").IsAuthenticated())
}

func TestResolveWrongSecretIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)
	other, err := NewResolver(Config{
		Secret:   []byte("other-secret"),
		Issuer:   "civicpulse",
		TokenTTL: time.Hour,
	}, nil)
	require.NoError(t, err)

	token, err := other.Issue(Claims{SubjectID: "user-1", Role: RoleAdmin}, time.Now())
	require.NoError(t, err)

	require.False(t, resolver.Resolve(token).IsAuthenticated())
}

func TestResolveExpiredTokenIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)

	token, err := resolver.Issue(Claims{SubjectID: "user-1", Role: RoleResident}, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	require.False(t, resolver.Resolve(token).IsAuthenticated())
}

func TestResolveUnexpectedSigningMethodIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "civicpulse",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "admin",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.False(t, resolver.Resolve(signed).IsAuthenticated())
}

func TestResolveRoleOutsideTaxonomyIsAnonymous(t *testing.T) {
	resolver := newTestResolver(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "civicpulse",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "staff",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.False(t, resolver.Resolve(signed).IsAuthenticated())
}

func TestIssueRejectsRoleOutsideTaxonomy(t *testing.T) {
	resolver := newTestResolver(t)

	_, err := resolver.Issue(Claims{SubjectID: "user-1", Role: Role("staff")}, time.Now())
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestBearerFromRequest(t *testing.T) {
	withHeader := func(value string) *http.Request {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		if value != "" {
			req.Header.Set("Authorization", value)
		}
		return req
	}

	require.Equal(t, "abc", BearerFromRequest(withHeader("Bearer abc")))
	require.Equal(t, "abc", BearerFromRequest(withHeader("bearer abc")))
	require.Equal(t, "", BearerFromRequest(withHeader("Basic abc")))
	require.Equal(t, "", BearerFromRequest(withHeader("")))

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "cookie-token"})
	require.Equal(t, "cookie-token", BearerFromRequest(req))

	// Header takes precedence over the cookie.
	req.Header.Set("Authorization", "Bearer header-token")
	require.Equal(t, "header-token", BearerFromRequest(req))
}
