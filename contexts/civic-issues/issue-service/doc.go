// Package issueservice implements the Issue Service inside CivicPulse.
//
// Residents report local problems (potholes, flooding, hazards); municipal
// staff triage them through a fixed status lifecycle. Status changes append
// to an audit trail and emit an outbox event the alerts context consumes.
//
// Boundary notes:
// - Authorization decisions use only the shared authctx guards.
// - Cross-context communication happens via the event bus; this package
//   never imports another context.
package issueservice
