// Package authctx is the request authentication and role-authorization
// contract shared by every CivicPulse context.
//
// It owns three things and nothing else:
// - the closed role taxonomy used platform-wide
// - resolution of a bearer credential into a per-request authorization context
// - the guard operations contexts use to gate their operations
//
// Boundary notes:
// - Contexts import this package; this package imports no context.
// - A credential that fails verification degrades to Anonymous here, and the
//   actual rejection happens in the guards. Keep that single decision point.
package authctx
