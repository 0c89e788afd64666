package httptransport

import "time"

type AddCommentRequest struct {
	Body string `json:"body"`
}

type CommentDTO struct {
	CommentID string    `json:"comment_id"`
	IssueID   string    `json:"issue_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type ListCommentsResponse struct {
	IssueID    string       `json:"issue_id"`
	Comments   []CommentDTO `json:"comments"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type EndorseRequest struct {
	Note string `json:"note,omitempty"`
}

type EndorsementDTO struct {
	IssueID    string    `json:"issue_id"`
	AdvocateID string    `json:"advocate_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListEndorsementsResponse struct {
	IssueID      string           `json:"issue_id"`
	Endorsements []EndorsementDTO `json:"endorsements"`
}

type SummaryDTO struct {
	IssueID      string `json:"issue_id"`
	Comments     int    `json:"comments"`
	Upvotes      int    `json:"upvotes"`
	Endorsements int    `json:"endorsements"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
