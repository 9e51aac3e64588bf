package transcript

import (
	"sort"
	"sync"
	"time"
)

// DefaultLimit bounds the process-wide store
const DefaultLimit = 100

// Summary is the listing view of a stored transcript
type Summary struct {
	GameID    string    `json:"gameId"`
	TableID   string    `json:"tableId"`
	TableName string    `json:"tableName"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitzero"`
	Entries   int       `json:"entryCount"`
}

// Store holds transcripts across game cleanup. When full, inserting a
// new game evicts the transcript with the oldest start time.
type Store struct {
	mu     sync.RWMutex
	limit  int
	byGame map[string]*Transcript
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, byGame: make(map[string]*Transcript)}
}

// Put registers a transcript. Re-registering a known game id is a
// no-op and never evicts.
func (s *Store) Put(t *Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byGame[t.GameID]; ok {
		return
	}
	if len(s.byGame) >= s.limit {
		s.evictOldest()
	}
	s.byGame[t.GameID] = t
}

// evictOldest removes the transcript with the smallest start time.
// Caller holds the lock.
func (s *Store) evictOldest() {
	var victim string
	var oldest time.Time
	for id, t := range s.byGame {
		if victim == "" || t.StartedAt.Before(oldest) {
			victim, oldest = id, t.StartedAt
		}
	}
	if victim != "" {
		delete(s.byGame, victim)
	}
}

func (s *Store) Get(gameID string) (*Transcript, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byGame[gameID]
	return t, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byGame)
}

// List enumerates stored transcripts, most recent start first
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.byGame))
	for _, t := range s.byGame {
		out = append(out, Summary{
			GameID:    t.GameID,
			TableID:   t.TableID,
			TableName: t.TableName,
			StartedAt: t.StartedAt,
			EndedAt:   t.EndedAt,
			Entries:   t.Len(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}
