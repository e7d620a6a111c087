// Package cleanup prunes old interviews from the archive.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/letterloop/letterloop/internal/session"
)

// Archive is the part of the session store pruning needs.
type Archive interface {
	ListInterviews(ctx context.Context, limit int) ([]session.Summary, error)
	DeleteInterview(ctx context.Context, id string) error
}

// now is replaced in tests.
var now = time.Now

// PruneByAge removes interviews last updated more than maxAgeDays ago.
// If dryRun is true, nothing is deleted; the function only returns the IDs
// that would be removed.
func PruneByAge(ctx context.Context, archive Archive, maxAgeDays int, dryRun bool) ([]string, error) {
	all, err := archive.ListInterviews(ctx, -1)
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}

	cutoff := now().AddDate(0, 0, -maxAgeDays)
	var pruned []string
	for _, s := range all {
		if !s.UpdatedAt.Before(cutoff) {
			continue
		}
		if !dryRun {
			if err := archive.DeleteInterview(ctx, s.ID); err != nil {
				return pruned, fmt.Errorf("removing %s: %w", s.ID, err)
			}
		}
		pruned = append(pruned, s.ID)
	}
	return pruned, nil
}

// PruneKeepRecent removes all interviews except the keep most recently
// updated. If dryRun is true, nothing is deleted.
func PruneKeepRecent(ctx context.Context, archive Archive, keep int, dryRun bool) ([]string, error) {
	if keep < 0 {
		keep = 0
	}
	all, err := archive.ListInterviews(ctx, -1)
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	if len(all) <= keep {
		return nil, nil
	}

	// The archive lists newest first.
	var pruned []string
	for _, s := range all[keep:] {
		if !dryRun {
			if err := archive.DeleteInterview(ctx, s.ID); err != nil {
				return pruned, fmt.Errorf("removing %s: %w", s.ID, err)
			}
		}
		pruned = append(pruned, s.ID)
	}
	return pruned, nil
}
