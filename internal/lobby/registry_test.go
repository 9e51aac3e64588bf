package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/game"
)

func TestCreateAndFindTable(t *testing.T) {
	r := NewRegistry(testLogger())
	tbl := newTestTable(t)
	require.NoError(t, r.CreateTable(DefaultLobby, tbl))

	got, ok := r.Table(DefaultLobby, "t1")
	require.True(t, ok)
	assert.Same(t, tbl, got)

	got, lobbyID, ok := r.FindTable("t1")
	require.True(t, ok)
	assert.Same(t, tbl, got)
	assert.Equal(t, DefaultLobby, lobbyID)

	_, _, ok = r.FindTable("missing")
	assert.False(t, ok)
}

func TestDuplicateTableRejected(t *testing.T) {
	r := NewRegistry(testLogger())
	require.NoError(t, r.CreateTable(DefaultLobby, newTestTable(t)))

	err := r.CreateTable(DefaultLobby, newTestTable(t))
	assertCode(t, err, game.CodeTableExists)

	// Same id in a different lobby is fine.
	assert.NoError(t, r.CreateTable("other", newTestTable(t)))
}

func TestRemoveTable(t *testing.T) {
	r := NewRegistry(testLogger())
	require.NoError(t, r.CreateTable(DefaultLobby, newTestTable(t)))
	r.Remove(DefaultLobby, "t1")
	_, ok := r.Table(DefaultLobby, "t1")
	assert.False(t, ok)
}

func TestListSortsAndSummarizes(t *testing.T) {
	r := NewRegistry(testLogger())
	b, err := NewTable("tb", "Back Room", "alice", DefaultTableConfig(), true, "pw")
	require.NoError(t, err)
	a, err := NewTable("ta", "Acadie", "alice", DefaultTableConfig(), false, "")
	require.NoError(t, err)
	_, err = a.Join(human("alice"))
	require.NoError(t, err)
	a.SetGameID("g1")
	require.NoError(t, r.CreateTable(DefaultLobby, b))
	require.NoError(t, r.CreateTable(DefaultLobby, a))

	list := r.List(DefaultLobby)
	require.Len(t, list, 2)
	assert.Equal(t, "Acadie", list[0].Name)
	assert.Equal(t, 1, list[0].Occupied)
	assert.True(t, list[0].HasGame)
	assert.Equal(t, "Back Room", list[1].Name)
	assert.True(t, list[1].Private)

	assert.Empty(t, r.List("empty-lobby"))
}

func TestBotNameRotation(t *testing.T) {
	seen := make(map[string]struct{})
	for range botNames {
		seen[NextBotName()] = struct{}{}
	}
	// The cycle may start anywhere, but a full lap covers every name.
	assert.Len(t, seen, len(botNames))
}
