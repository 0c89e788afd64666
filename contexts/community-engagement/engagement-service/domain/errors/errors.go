package errors

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid engagement request")
	ErrIssueNotFound   = errors.New("issue not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrAlreadyUpvoted  = errors.New("issue already upvoted by this user")
	ErrUpvoteNotFound  = errors.New("upvote not found")
	ErrAlreadyEndorsed = errors.New("issue already endorsed by this advocate")
)
