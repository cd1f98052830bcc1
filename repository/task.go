package repository

import (
	"context"

	"github.com/taskvault/backend/domain"
)

// TaskRepository persists task records. Every operation that touches an
// existing task filters by (id, userID) jointly, so a task owned by another
// user is indistinguishable from a task that does not exist.
type TaskRepository interface {
	GetByIDAndOwner(ctx context.Context, id, userID int64) (*domain.Task, error)
	// ListByOwner returns the user's tasks ordered newest-first.
	ListByOwner(ctx context.Context, userID int64) ([]domain.Task, error)
	// Create inserts the task and fills in the assigned id and creation time.
	Create(ctx context.Context, task *domain.Task) error
	// Update overwrites title, description and completion of the task
	// identified by (task.ID, task.UserID).
	Update(ctx context.Context, task *domain.Task) error
	SetCompleted(ctx context.Context, id, userID int64, completed bool) error
	Delete(ctx context.Context, id, userID int64) error
}
