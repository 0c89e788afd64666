package authctx

import "errors"

var (
	// ErrUnauthenticated is returned by guards when an operation required a
	// credential and none was valid.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned by guards when the credential was valid but the
	// role or ownership check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRole is returned at issuance time for roles outside the taxonomy.
	ErrInvalidRole = errors.New("role outside taxonomy")
)

// Claims is the verified identity embedded in a token. Treated as immutable
// and trusted for the lifetime of the token; re-derived from the user record
// each time a token is minted.
type Claims struct {
	SubjectID string
	Username  string
	Email     string
	Role      Role
}

// Context is the per-request authorization value: either an authenticated
// identity or anonymity. Constructed once per inbound request, never mutated.
type Context struct {
	claims        Claims
	authenticated bool
}

// Anonymous is the context for requests without a valid credential.
func Anonymous() Context { return Context{} }

// Authenticated wraps verified claims into a context.
func Authenticated(claims Claims) Context {
	return Context{claims: claims, authenticated: true}
}

func (c Context) IsAuthenticated() bool { return c.authenticated }

// Claims returns the verified identity, and false for Anonymous.
func (c Context) Claims() (Claims, bool) {
	return c.claims, c.authenticated
}

// RequireAuthenticated fails with ErrUnauthenticated when the context is
// Anonymous; otherwise it returns the claims. Guard operations never retry
// and are never fatal: callers translate the error into a 4xx response.
func RequireAuthenticated(ctx Context) (Claims, error) {
	if !ctx.authenticated {
		return Claims{}, ErrUnauthenticated
	}
	return ctx.claims, nil
}

// RequireRole fails with ErrForbidden unless the authenticated role is in the
// allowed set. Membership is exact: no hierarchy is traversed, so admin-only
// operations must pass RoleAdmin explicitly.
func RequireRole(ctx Context, allowed ...Role) (Claims, error) {
	claims, err := RequireAuthenticated(ctx)
	if err != nil {
		return Claims{}, err
	}
	if !roleIn(claims.Role, allowed) {
		return Claims{}, ErrForbidden
	}
	return claims, nil
}

// RequireSelfOrRole succeeds when the caller is the target subject or holds
// one of the allowed roles. Encodes the recurring owner-or-elevated pattern
// used for profile access and issue ownership checks.
func RequireSelfOrRole(ctx Context, targetSubjectID string, allowed ...Role) (Claims, error) {
	claims, err := RequireAuthenticated(ctx)
	if err != nil {
		return Claims{}, err
	}
	if claims.SubjectID == targetSubjectID {
		return claims, nil
	}
	if !roleIn(claims.Role, allowed) {
		return Claims{}, ErrForbidden
	}
	return claims, nil
}
