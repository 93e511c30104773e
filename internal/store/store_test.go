package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

func TestStore_AppendDeleteClear(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Append(types.Record{Name: "a"}))
	assert.Equal(t, 1, s.Append(types.Record{Name: "b"}))
	assert.Equal(t, 2, s.Append(types.Record{Name: "c"}))

	removed, err := s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Name)
	assert.Equal(t, []types.Record{{Name: "a"}, {Name: "c"}}, s.Records())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Records())
}

func TestStore_DeleteOutOfRangeLeavesStore(t *testing.T) {
	s := New(types.Record{Name: "a"})

	for _, i := range []int{-1, 1, 42} {
		_, err := s.Delete(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	assert.Equal(t, []types.Record{{Name: "a"}}, s.Records())
}

func TestStore_RecordsIsSnapshot(t *testing.T) {
	seed := []types.Record{{Name: "a"}}
	s := New(seed...)
	seed[0].Name = "changed"

	snap := s.Records()
	snap[0].Name = "mutated"
	assert.Equal(t, "a", s.Records()[0].Name)
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(types.Record{Name: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}

func TestSessions_IsolatedStores(t *testing.T) {
	sessions := NewSessions(time.Minute)
	idA, a := sessions.Create()
	idB, b := sessions.Create()
	require.NotEqual(t, idA, idB)

	a.Append(types.Record{Name: "only in a"})

	gotA, ok := sessions.Get(idA)
	require.True(t, ok)
	assert.Equal(t, 1, gotA.Len())

	gotB, ok := sessions.Get(idB)
	require.True(t, ok)
	assert.Same(t, b, gotB)
	assert.Equal(t, 0, gotB.Len())

	_, ok = sessions.Get(uuid.New())
	assert.False(t, ok)
}

func TestSessions_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions(10 * time.Minute)
	sessions.now = func() time.Time { return now }

	idle, _ := sessions.Create()
	now = now.Add(5 * time.Minute)
	active, _ := sessions.Create()

	now = now.Add(6 * time.Minute)
	_, ok := sessions.Get(active)
	require.True(t, ok)

	assert.Equal(t, 1, sessions.Sweep())
	_, ok = sessions.Get(idle)
	assert.False(t, ok)
	assert.Equal(t, 1, sessions.Len())
}

func TestSessions_NoTTLNeverSweeps(t *testing.T) {
	sessions := NewSessions(0)
	sessions.Create()
	assert.Equal(t, 0, sessions.Sweep())
	assert.Equal(t, 1, sessions.Len())
}
