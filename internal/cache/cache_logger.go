package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAttemptCache drops every cached result derived from one attempt.
// Used when an attempt is abandoned or re-scored.
func InvalidateAttemptCache(ctx context.Context, cm *CacheManager, attemptID string) {
	SafeDelete(ctx, cm.Score, attemptID)
	SafeDelete(ctx, cm.Analysis, attemptID)
	SafeInvalidatePattern(ctx, cm.Submission, fmt.Sprintf("%s*", attemptID))
}
