package entities

import "time"

// Comment is a public remark on an issue.
type Comment struct {
	CommentID string
	IssueID   string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Upvote records one resident's support for an issue. At most one per
// user per issue.
type Upvote struct {
	IssueID   string
	UserID    string
	CreatedAt time.Time
}

// Endorsement is an advocate's public backing of an issue. It carries more
// weight than an upvote and is likewise unique per advocate per issue.
type Endorsement struct {
	IssueID    string
	AdvocateID string
	Note       string
	CreatedAt  time.Time
}

// Summary aggregates engagement counts for one issue.
type Summary struct {
	IssueID      string
	Comments     int
	Upvotes      int
	Endorsements int
}
