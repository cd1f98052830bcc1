package repository

import (
	"context"

	"github.com/taskvault/backend/domain"
)

// TaskListCache caches per-user task listings. Implementations are
// best-effort: a miss or backend failure must never fail the read path.
type TaskListCache interface {
	Get(ctx context.Context, userID int64) ([]domain.Task, bool)
	Set(ctx context.Context, userID int64, tasks []domain.Task)
	Invalidate(ctx context.Context, userID int64)
}
