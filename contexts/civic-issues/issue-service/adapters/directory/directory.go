package directory

import (
	"context"
	"errors"

	domainerrors "civicpulse/contexts/civic-issues/issue-service/domain/errors"
	"civicpulse/contexts/civic-issues/issue-service/ports"
)

// Directory answers existence checks for other contexts without exposing the
// full repository surface across the boundary.
type Directory struct {
	Repo ports.Repository
}

func (d Directory) IssueExists(ctx context.Context, issueID string) (bool, error) {
	_, err := d.Repo.GetIssue(ctx, issueID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrIssueNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
