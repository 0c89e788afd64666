package httptransport

import "time"

type NotificationDTO struct {
	NotificationID string     `json:"notification_id"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Read           bool       `json:"read"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

type BroadcastRequest struct {
	District string `json:"district,omitempty"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

type BroadcastDTO struct {
	BroadcastID string    `json:"broadcast_id"`
	SenderID    string    `json:"sender_id"`
	District    string    `json:"district,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
