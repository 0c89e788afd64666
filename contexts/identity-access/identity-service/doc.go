// Package identityservice implements the Identity Service inside CivicPulse.
//
// It is the credential store and token issuer: residents and staff register,
// authenticate, and manage their profile here; every other context trusts the
// tokens this service mints via the shared authctx contract.
//
// Layering:
// - domain: user entity, invariants, errors
// - application: use cases behind explicit ports
// - ports: persistence/hashing/clock boundaries
// - adapters: concrete HTTP, memory, postgres, bcrypt implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Password hashes never cross the transport boundary.
// - Role changes are admin-only and never self-applied.
package identityservice
