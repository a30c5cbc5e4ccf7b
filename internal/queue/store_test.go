package queue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pemira/internal/model"
)

func entry(id, nim string, status model.Status) model.QueueEntry {
	return model.QueueEntry{
		ID:          id,
		NIM:         nim,
		Name:        "Voter " + nim,
		Status:      status,
		CheckedInAt: time.Now().UTC(),
	}
}

func TestStore_Insert_DuplicateVoter(t *testing.T) {
	s := NewStore(10)

	require.NoError(t, s.Insert(entry("q1", "2110510023", model.StatusCheckedIn)))
	assert.ErrorIs(t, s.Insert(entry("q2", "2110510023", model.StatusCheckedIn)), ErrDuplicateVoter)
	assert.Equal(t, 1, s.Len(), "a rejected duplicate must not grow the queue")

	// A cancelled entry does not block re-admission.
	_, _, err := s.Transition("q1", model.StatusCancelled, time.Now())
	require.NoError(t, err)
	assert.NoError(t, s.Insert(entry("q2", "2110510023", model.StatusCheckedIn)))
}

func TestStore_Insert_CapacityEvictsOldestTerminal(t *testing.T) {
	// Capacity 3: two active and two terminal entries already exist.
	s := NewStore(3)
	now := time.Now().UTC()

	require.NoError(t, s.Insert(model.QueueEntry{ID: "t1", NIM: "n1", Status: model.StatusVoted, CheckedInAt: now}))
	require.NoError(t, s.Insert(model.QueueEntry{ID: "t2", NIM: "n2", Status: model.StatusRejected, CheckedInAt: now}))
	require.NoError(t, s.Insert(entry("a1", "n3", model.StatusCheckedIn)))
	require.NoError(t, s.Insert(entry("a2", "n4", model.StatusCheckedIn)))

	// Each additional active entry shrinks the terminal budget, evicting
	// the oldest terminal entries first.
	require.NoError(t, s.Insert(entry("a3", "n5", model.StatusCheckedIn)))

	assert.Equal(t, 3, s.Len())
	for _, id := range []string{"t1", "t2"} {
		_, found := s.Get(id)
		assert.False(t, found, "terminal entry %s should be evicted", id)
	}
	for _, id := range []string{"a1", "a2", "a3"} {
		_, found := s.Get(id)
		assert.True(t, found, "active entry %s must survive", id)
	}
}

func TestStore_Insert_ActiveCapacity(t *testing.T) {
	s := NewStore(2)

	require.NoError(t, s.Insert(entry("a1", "n1", model.StatusCheckedIn)))
	require.NoError(t, s.Insert(entry("a2", "n2", model.StatusCheckedIn)))

	err := s.Insert(entry("a3", "n3", model.StatusCheckedIn))
	assert.ErrorIs(t, err, ErrActiveCapacity)
	assert.Equal(t, 2, s.Len(), "a capacity violation must not mutate the queue")
}

func TestStore_Transition(t *testing.T) {
	s := NewStore(10)
	require.NoError(t, s.Insert(entry("q1", "n1", model.StatusCheckedIn)))

	now := time.Now().UTC()
	updated, warned, err := s.Transition("q1", model.StatusVoted, now)
	require.NoError(t, err)
	assert.False(t, warned)
	assert.Equal(t, model.StatusVoted, updated.Status)
	require.NotNil(t, updated.VotedAt)
	assert.Equal(t, now, *updated.VotedAt)

	// Re-stating the terminal status is a warning no-op.
	again, warned, err := s.Transition("q1", model.StatusVoted, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, warned)
	assert.Equal(t, now, *again.VotedAt, "a no-op must not restamp the vote time")

	// Any other transition out of a terminal state is rejected.
	_, _, err = s.Transition("q1", model.StatusRejected, now)
	assert.ErrorIs(t, err, ErrTerminal)

	_, _, err = s.Transition("missing", model.StatusVoted, now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Transition_InvalidEdge(t *testing.T) {
	s := NewStore(10)
	require.NoError(t, s.Insert(entry("q1", "n1", model.StatusCheckedIn)))

	_, _, err := s.Transition("q1", model.StatusCheckedIn, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStore_Remove(t *testing.T) {
	s := NewStore(10)
	require.NoError(t, s.Insert(entry("q1", "n1", model.StatusCheckedIn)))

	removed, err := s.Remove("q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", removed.ID)
	assert.Equal(t, 0, s.Len())

	_, err = s.Remove("q1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Replace(t *testing.T) {
	s := NewStore(10)
	require.NoError(t, s.Insert(entry("local", "n1", model.StatusCheckedIn)))

	snapshot := []model.QueueEntry{
		entry("b1", "n2", model.StatusCheckedIn),
		entry("b2", "n3", model.StatusVoted),
	}
	s.Replace(snapshot)

	got := s.List()
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].ID)
	assert.Equal(t, "b2", got[1].ID)
	_, found := s.Get("local")
	assert.False(t, found, "local-only entries must not survive a replace")

	s.Replace(nil)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Replace_AppliesCapacity(t *testing.T) {
	s := NewStore(3)

	snapshot := make([]model.QueueEntry, 0, 5)
	for i := 0; i < 2; i++ {
		snapshot = append(snapshot, entry(fmt.Sprintf("a%d", i), fmt.Sprintf("an%d", i), model.StatusCheckedIn))
	}
	for i := 0; i < 3; i++ {
		snapshot = append(snapshot, entry(fmt.Sprintf("t%d", i), fmt.Sprintf("tn%d", i), model.StatusVoted))
	}
	s.Replace(snapshot)

	assert.Equal(t, 3, s.Len())
	for _, id := range []string{"a0", "a1", "t0"} {
		_, found := s.Get(id)
		assert.True(t, found, "expected %s to be retained", id)
	}
	for _, id := range []string{"t1", "t2"} {
		_, found := s.Get(id)
		assert.False(t, found, "expected oldest terminal %s to be trimmed", id)
	}
}
