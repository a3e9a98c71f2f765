package achievement

import (
	"context"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Repository defines the persistence contract for earned achievements.
type Repository interface {
	// Award records an earned achievement. The store enforces at-most-once
	// via the (user, achievement) unique constraint; awarding something the
	// user already has returns shared.ErrAlreadyEarned, which callers treat
	// as benign.
	Award(ctx context.Context, ua *UserAchievement) error

	// ListByUser returns everything the user has earned, newest first.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*UserAchievement, error)

	// Has reports whether the user already earned the achievement.
	Has(ctx context.Context, userID shared.UserID, id AchievementID) (bool, error)
}
