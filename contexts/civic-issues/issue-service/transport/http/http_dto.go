package httptransport

import "time"

type ReportIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	District    string  `json:"district,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

type IssueDTO struct {
	IssueID     string    `json:"issue_id"`
	ReporterID  string    `json:"reporter_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	District    string    `json:"district,omitempty"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListIssuesRequest struct {
	Status   string
	Category string
	District string
	Cursor   string
	Limit    int
}

type ListIssuesResponse struct {
	Issues     []IssueDTO `json:"issues"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type AssignIssueRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type StatusChangeDTO struct {
	ChangeID   string    `json:"change_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

type StatusHistoryResponse struct {
	IssueID string            `json:"issue_id"`
	Changes []StatusChangeDTO `json:"changes"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
