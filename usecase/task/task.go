// Package task implements the ownership-scoped gateway over task records.
// Every operation takes an already-authenticated user id and can only ever
// observe or mutate that user's tasks.
package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
	"github.com/taskvault/backend/repository"
)

type taskInput struct {
	Title       string `validate:"required,min=1,max=255"`
	Description string `validate:"max=2000"`
}

type UseCase struct {
	tasks    repository.TaskRepository
	cache    repository.TaskListCache
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// New builds the gateway. cache may be nil, in which case every list hits
// the primary store.
func New(tasks repository.TaskRepository, cache repository.TaskListCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Intended for tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// List returns the user's tasks ordered newest-first.
func (uc *UseCase) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	if uc.cache != nil {
		if tasks, ok := uc.cache.Get(ctx, userID); ok {
			return tasks, nil
		}
	}

	tasks, err := uc.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, userID, tasks)
	}
	return tasks, nil
}

// Get returns one task, or domain.ErrTaskNotFound when the id does not exist
// under this owner.
func (uc *UseCase) Get(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	return uc.tasks.GetByIDAndOwner(ctx, taskID, userID)
}

// Create validates and persists a new task owned by userID. Title and
// description are trimmed before validation, completion starts false.
func (uc *UseCase) Create(ctx context.Context, userID int64, title, description string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := uc.validateInput(title, description); err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   uc.now(),
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, userID)
	return task, nil
}

// Update overwrites title, description and completion of the user's task.
func (uc *UseCase) Update(ctx context.Context, userID, taskID int64, title, description string, completed bool) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := uc.validateInput(title, description); err != nil {
		return err
	}

	task := &domain.Task{
		ID:          taskID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   completed,
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return err
	}

	uc.invalidate(ctx, userID)
	return nil
}

// SetCompletion flips only the completion flag of the user's task.
func (uc *UseCase) SetCompletion(ctx context.Context, userID, taskID int64, completed bool) error {
	if err := uc.tasks.SetCompleted(ctx, taskID, userID, completed); err != nil {
		return err
	}
	uc.invalidate(ctx, userID)
	return nil
}

// Delete removes the user's task.
func (uc *UseCase) Delete(ctx context.Context, userID, taskID int64) error {
	if err := uc.tasks.Delete(ctx, taskID, userID); err != nil {
		return err
	}
	uc.invalidate(ctx, userID)
	return nil
}

func (uc *UseCase) invalidate(ctx context.Context, userID int64) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, userID)
	}
}

func (uc *UseCase) validateInput(title, description string) error {
	err := uc.validate.Struct(taskInput{Title: title, Description: description})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInvalidPayload
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			fields["title"] = "title is required and must be between 1 and 255 characters"
		case "Description":
			fields["description"] = "description cannot exceed 2000 characters"
		}
	}
	return domain.NewValidationError(fields)
}
