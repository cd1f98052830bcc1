package repository

import (
	"context"

	"github.com/taskvault/backend/domain"
)

// UserRepository persists identity records. Lookups by username expect the
// caller to have lowercased the value already.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create inserts the user and fills in the assigned id and creation time.
	Create(ctx context.Context, user *domain.User) error
}
