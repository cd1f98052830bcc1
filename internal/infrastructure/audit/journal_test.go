package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	journal, err := Open(filepath.Join(t.TempDir(), "audit.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestJournal_AppendAndRecent(t *testing.T) {
	journal := openTestJournal(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := journal.Append(Event{
			UserID:   int64(i + 1),
			Username: "alice",
			Action:   "login",
			Success:  i%2 == 0,
			At:       base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	size, err := journal.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)

	events, err := journal.Recent(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first.
	assert.Equal(t, int64(5), events[0].UserID)
	assert.Equal(t, int64(4), events[1].UserID)
	assert.Equal(t, int64(3), events[2].UserID)
}

func TestJournal_NormalizesEvent(t *testing.T) {
	journal := openTestJournal(t)

	require.NoError(t, journal.Append(Event{Username: "bob", Action: "register", Success: true}))

	events, err := journal.Recent(1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].At.IsZero())
}

func TestJournal_Cleanup(t *testing.T) {
	journal := openTestJournal(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		err := journal.Append(Event{
			Username: "alice",
			Action:   "login",
			At:       base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	require.NoError(t, journal.Cleanup(base.Add(2*time.Hour)))

	size, err := journal.Size()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	events, err := journal.Recent(10)
	require.NoError(t, err)
	for _, event := range events {
		assert.False(t, event.At.Before(base.Add(2*time.Hour)))
	}
}

func TestJournal_RecentLimitDefault(t *testing.T) {
	journal := openTestJournal(t)

	require.NoError(t, journal.Append(Event{Username: "alice", Action: "login"}))

	events, err := journal.Recent(0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestJournal_ClosedJournalErrors(t *testing.T) {
	journal := openTestJournal(t)
	require.NoError(t, journal.Close())

	err := journal.Append(Event{Username: "alice", Action: "login"})
	assert.Error(t, err)
}
