package transcript

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func stub(id string, start time.Time) *Transcript {
	return New(id, "table-"+id, "Table "+id, Metadata{
		Variant:     deck.Variant36,
		ScoreTarget: 200,
		Seats: []SeatMeta{
			{PlayerID: "p0", Name: "north", Position: 0},
			{PlayerID: "p1", Name: "east", Position: 1, IsBot: true},
		},
	}, start)
}

func TestAppendAndClose(t *testing.T) {
	tr := stub("g1", t0)
	tr.Append(t0, KindGameStart, nil, game.Snapshot{ID: "g1"})
	tr.Append(t0.Add(time.Second), KindBidMade,
		map[string]any{"playerId": "p0", "points": 60}, game.Snapshot{ID: "g1"})
	tr.Close(t0.Add(time.Minute))

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, KindGameStart, tr.Entries[0].Kind)
	assert.Equal(t, t0.Add(time.Minute), tr.EndedAt)
}

func TestCloneIsDetached(t *testing.T) {
	tr := stub("g1", t0)
	tr.Append(t0, KindGameStart, nil, game.Snapshot{ID: "g1"})

	cp := tr.Clone()
	tr.Append(t0.Add(time.Second), KindBidPass, nil, game.Snapshot{ID: "g1"})

	assert.Equal(t, 1, len(cp.Entries))
	assert.Equal(t, 2, tr.Len())
}

func TestStorePutAndGet(t *testing.T) {
	s := NewStore(0) // default limit
	s.Put(stub("g1", t0))

	got, ok := s.Get("g1")
	require.True(t, ok)
	assert.Equal(t, "table-g1", got.TableID)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStoreDuplicatePutIsNoop(t *testing.T) {
	s := NewStore(2)
	first := stub("g1", t0)
	s.Put(first)
	s.Put(stub("g1", t0.Add(time.Hour)))

	got, _ := s.Get("g1")
	assert.Same(t, first, got)
	assert.Equal(t, 1, s.Len())
}

// At capacity, the transcript with the oldest start time goes first.
func TestStoreEvictsOldestStart(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 3; i++ {
		s.Put(stub(fmt.Sprintf("g%d", i), t0.Add(time.Duration(i)*time.Minute)))
	}
	require.Equal(t, 3, s.Len())

	s.Put(stub("g3", t0.Add(3*time.Minute)))

	assert.Equal(t, 3, s.Len())
	_, ok := s.Get("g0")
	assert.False(t, ok, "oldest transcript must be evicted")
	for _, id := range []string{"g1", "g2", "g3"} {
		_, ok := s.Get(id)
		assert.True(t, ok, "%s should survive", id)
	}
}

func TestStoreListOrdering(t *testing.T) {
	s := NewStore(10)
	s.Put(stub("old", t0))
	mid := stub("mid", t0.Add(time.Minute))
	mid.Append(t0.Add(time.Minute), KindGameStart, nil, game.Snapshot{})
	s.Put(mid)
	s.Put(stub("new", t0.Add(2*time.Minute)))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"},
		[]string{list[0].GameID, list[1].GameID, list[2].GameID})
	assert.Equal(t, 1, list[1].Entries)
}
