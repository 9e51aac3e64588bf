package lobby

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestReserveUnique(t *testing.T) {
	n := NewNames(testLogger())
	assert.Equal(t, "alice", n.Reserve("alice"))
	assert.True(t, n.Held("alice"))
}

// Collisions are resolved with numeric suffixes, never rejected.
func TestReserveCollisionSuffixes(t *testing.T) {
	n := NewNames(testLogger())
	assert.Equal(t, "alice", n.Reserve("alice"))
	assert.Equal(t, "alice-2", n.Reserve("alice"))
	assert.Equal(t, "alice-3", n.Reserve("alice"))
}

func TestReleaseFreesName(t *testing.T) {
	n := NewNames(testLogger())
	n.Reserve("bob")
	n.Release("bob")
	assert.False(t, n.Held("bob"))
	assert.Equal(t, "bob", n.Reserve("bob"))
}

func TestReleaseSuffixedNameOnly(t *testing.T) {
	n := NewNames(testLogger())
	n.Reserve("carol")
	second := n.Reserve("carol")
	n.Release(second)
	assert.True(t, n.Held("carol"))
	assert.Equal(t, "carol-2", n.Reserve("carol"))
}
