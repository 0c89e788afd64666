// Package notificationservice delivers civic alerts and per-user
// notifications. Inbox rows are created either by staff broadcasts or by
// consuming cross-context events (issue status changes, new registrations).
// Outbound delivery goes through an outbox with bounded retries.
package notificationservice
