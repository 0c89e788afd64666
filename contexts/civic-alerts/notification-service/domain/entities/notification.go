package entities

import "time"

// Type classifies how a notification reached the inbox.
type Type string

const (
	TypeIssueUpdate Type = "issue_update"
	TypeBroadcast   Type = "broadcast"
	TypeWelcome     Type = "welcome"
)

// Notification is one row in a user's inbox.
type Notification struct {
	NotificationID string
	RecipientID    string
	Type           Type
	Title          string
	Body           string
	Read           bool
	CreatedAt      time.Time
	ReadAt         *time.Time
}

// Broadcast is an area-wide alert sent by staff. The broadcast row is the
// audit record; fan-out to external channels happens through the outbox.
type Broadcast struct {
	BroadcastID string
	SenderID    string
	District    string
	Title       string
	Body        string
	CreatedAt   time.Time
}
