package entities

import (
	"strings"
	"time"
)

// Status is the triage lifecycle position of an issue.
type Status string

const (
	StatusReported   Status = "reported"
	StatusInReview   Status = "in_review"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusReported:
		return StatusReported, true
	case StatusInReview:
		return StatusInReview, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusResolved:
		return StatusResolved, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

// allowedTransitions is the closed triage state machine. Resolved and
// rejected are terminal.
var allowedTransitions = map[Status][]Status{
	StatusReported:   {StatusInReview, StatusRejected},
	StatusInReview:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved, StatusRejected},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Category is the closed set of issue kinds the platform triages.
type Category string

const (
	CategoryPothole     Category = "pothole"
	CategoryFlooding    Category = "flooding"
	CategoryStreetlight Category = "streetlight"
	CategorySafety      Category = "safety"
	CategorySanitation  Category = "sanitation"
	CategoryOther       Category = "other"
)

func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryPothole:
		return CategoryPothole, true
	case CategoryFlooding:
		return CategoryFlooding, true
	case CategoryStreetlight:
		return CategoryStreetlight, true
	case CategorySafety:
		return CategorySafety, true
	case CategorySanitation:
		return CategorySanitation, true
	case CategoryOther:
		return CategoryOther, true
	default:
		return "", false
	}
}

// Issue is a resident-reported problem moving through triage.
type Issue struct {
	IssueID     string
	ReporterID  string
	Title       string
	Description string
	Category    Category
	Status      Status
	District    string
	Latitude    float64
	Longitude   float64
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StatusChange is one entry in an issue's triage trail.
type StatusChange struct {
	ChangeID   string
	IssueID    string
	FromStatus Status
	ToStatus   Status
	ActorID    string
	Note       string
	ChangedAt  time.Time
}
