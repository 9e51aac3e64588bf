// Package lobby owns everything outside a running game: the display
// name registry, tables with their seat rosters and configuration, and
// the lobby-to-table mapping.
package lobby

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Names is the process-wide reservation set for display names.
// Reservation is soft: a collision is logged and resolved with a
// numeric suffix, never rejected.
type Names struct {
	mu    sync.Mutex
	taken map[string]struct{}
	log   *log.Logger
}

func NewNames(logger *log.Logger) *Names {
	return &Names{
		taken: make(map[string]struct{}),
		log:   logger.WithPrefix("names"),
	}
}

// Reserve claims the name, falling back to name-2, name-3, ... when it
// is already held. The returned name is the one actually reserved.
func (n *Names) Reserve(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	candidate := name
	for i := 2; ; i++ {
		if _, ok := n.taken[candidate]; !ok {
			break
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	if candidate != name {
		n.log.Info("name collision", "requested", name, "assigned", candidate)
	}
	n.taken[candidate] = struct{}{}
	return candidate
}

// Release frees a previously reserved name
func (n *Names) Release(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.taken, name)
}

// Held reports whether a name is currently reserved
func (n *Names) Held(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.taken[name]
	return ok
}
