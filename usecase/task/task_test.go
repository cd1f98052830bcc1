package task

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskvault/backend/domain"
)

type memoryTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

func newMemoryTaskRepo() *memoryTaskRepo {
	return &memoryTaskRepo{tasks: make(map[int64]*domain.Task)}
}

func (r *memoryTaskRepo) GetByIDAndOwner(_ context.Context, id, userID int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memoryTaskRepo) ListByOwner(_ context.Context, userID int64) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID == userID {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memoryTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memoryTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.Completed = task.Completed
	return nil
}

func (r *memoryTaskRepo) SetCompleted(_ context.Context, id, userID int64, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return domain.ErrTaskNotFound
	}
	existing.Completed = completed
	return nil
}

func (r *memoryTaskRepo) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[id]
	if !ok || existing.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeCache struct {
	mu            sync.Mutex
	entries       map[int64][]domain.Task
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[int64][]domain.Task)}
}

func (c *fakeCache) Get(_ context.Context, userID int64) ([]domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks, ok := c.entries[userID]
	return tasks, ok
}

func (c *fakeCache) Set(_ context.Context, userID int64, tasks []domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = tasks
}

func (c *fakeCache) Invalidate(_ context.Context, userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	c.invalidations++
}

func newTestUseCase() (*UseCase, *memoryTaskRepo) {
	repo := newMemoryTaskRepo()
	return New(repo, nil, zap.NewNop()), repo
}

func TestCreate_TrimsAndDefaults(t *testing.T) {
	uc, _ := newTestUseCase()

	task, err := uc.Create(context.Background(), 1, "  Buy milk  ", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "", task.Description)
	assert.False(t, task.Completed)
	assert.NotZero(t, task.ID)
	assert.Equal(t, int64(1), task.UserID)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	uc, repo := newTestUseCase()

	cases := []struct {
		name        string
		title       string
		description string
		field       string
	}{
		{"missing title", "", "desc", "title"},
		{"blank title", "   ", "desc", "title"},
		{"title too long", strings.Repeat("x", 256), "desc", "title"},
		{"description too long", "ok", strings.Repeat("x", 2001), "description"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Create(context.Background(), 1, tc.title, tc.description)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

			var dErr *domain.Error
			require.ErrorAs(t, err, &dErr)
			assert.Contains(t, dErr.Fields, tc.field)
		})
	}
	assert.Empty(t, repo.tasks, "validation failures must not reach the store")
}

func TestList_NewestFirst(t *testing.T) {
	uc, _ := newTestUseCase()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	uc.WithClock(func() time.Time { return clock })

	_, err := uc.Create(context.Background(), 1, "first", "")
	require.NoError(t, err)
	clock = base.Add(time.Minute)
	_, err = uc.Create(context.Background(), 1, "second", "")
	require.NoError(t, err)
	clock = base.Add(2 * time.Minute)
	newest, err := uc.Create(context.Background(), 1, "third", "")
	require.NoError(t, err)

	tasks, err := uc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, newest.ID, tasks[0].ID)
	assert.Equal(t, "third", tasks[0].Title)
	assert.Equal(t, "first", tasks[2].Title)
}

func TestOwnershipIsolation(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	mine, err := uc.Create(ctx, 1, "mine", "")
	require.NoError(t, err)
	theirs, err := uc.Create(ctx, 2, "theirs", "")
	require.NoError(t, err)

	// Reads across owners yield not found, never the other user's task.
	_, err = uc.Get(ctx, 1, theirs.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	_, err = uc.Get(ctx, 2, mine.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	// Mutations across owners are rejected the same way.
	err = uc.Update(ctx, 1, theirs.ID, "hijacked", "", true)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	err = uc.SetCompletion(ctx, 1, theirs.ID, true)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	err = uc.Delete(ctx, 1, theirs.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	// The other user's task is untouched.
	kept, err := uc.Get(ctx, 2, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "theirs", kept.Title)
	assert.False(t, kept.Completed)

	lists, err := uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, mine.ID, lists[0].ID)
}

func TestUpdate_OverwritesMutableFields(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	task, err := uc.Create(ctx, 1, "original", "before")
	require.NoError(t, err)

	err = uc.Update(ctx, 1, task.ID, "  renamed  ", "after", true)
	require.NoError(t, err)

	updated, err := uc.Get(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "after", updated.Description)
	assert.True(t, updated.Completed)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
}

func TestSetCompletion_LeavesOtherFieldsAlone(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	task, err := uc.Create(ctx, 1, "Buy milk", "two liters")
	require.NoError(t, err)

	err = uc.SetCompletion(ctx, 1, task.ID, true)
	require.NoError(t, err)

	got, err := uc.Get(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "two liters", got.Description)

	err = uc.SetCompletion(ctx, 1, task.ID, false)
	require.NoError(t, err)
	got, err = uc.Get(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestDelete(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	task, err := uc.Create(ctx, 1, "temp", "")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, 1, task.ID))

	_, err = uc.Get(ctx, 1, task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	err = uc.Delete(ctx, 1, task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestList_UsesCacheAndInvalidatesOnMutation(t *testing.T) {
	repo := newMemoryTaskRepo()
	cache := newFakeCache()
	uc := New(repo, cache, zap.NewNop())
	ctx := context.Background()

	task, err := uc.Create(ctx, 1, "cached", "")
	require.NoError(t, err)

	// First list populates the cache.
	tasks, err := uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	_, ok := cache.Get(ctx, 1)
	assert.True(t, ok)

	// A mutation drops the entry so the next list sees fresh data.
	require.NoError(t, uc.SetCompletion(ctx, 1, task.ID, true))
	_, ok = cache.Get(ctx, 1)
	assert.False(t, ok)

	tasks, err = uc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}
