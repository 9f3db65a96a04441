package allocation

import (
	"sync"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

// History is a bounded ring buffer of the most recent placements. The engine
// itself is stateless between calls; all retention lives here, owned by the
// policy layer.
type History struct {
	mu      sync.RWMutex
	entries []domain.Placement
	next    int
	full    bool
}

// NewHistory creates a history retaining at most size placements. A size of
// zero or less retains one.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{entries: make([]domain.Placement, size)}
}

// Add records a placement, evicting the oldest when the buffer is full.
func (h *History) Add(p domain.Placement) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = p
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns the retained placements, newest first.
func (h *History) Recent() []domain.Placement {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := h.next
	if h.full {
		count = len(h.entries)
	}

	out := make([]domain.Placement, 0, count)
	for i := 1; i <= count; i++ {
		idx := (h.next - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

// Len returns the number of retained placements.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.full {
		return len(h.entries)
	}
	return h.next
}
