package allocation

import (
	"fmt"
	"testing"

	"github.com/puneet-chandna/hippoplace/internal/domain"
)

func placementN(n int) domain.Placement {
	return domain.Placement{RunID: fmt.Sprintf("run-%d", n)}
}

func TestHistory_RetainsMostRecent(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Add(placementN(i))
	}

	if h.Len() != 3 {
		t.Fatalf("expected 3 retained placements, got %d", h.Len())
	}

	recent := h.Recent()
	want := []string{"run-5", "run-4", "run-3"}
	for i, id := range want {
		if recent[i].RunID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, recent[i].RunID)
		}
	}
}

func TestHistory_PartiallyFilled(t *testing.T) {
	h := NewHistory(10)
	h.Add(placementN(1))
	h.Add(placementN(2))

	if h.Len() != 2 {
		t.Fatalf("expected 2 placements, got %d", h.Len())
	}
	recent := h.Recent()
	if recent[0].RunID != "run-2" || recent[1].RunID != "run-1" {
		t.Errorf("expected newest-first order, got %v, %v", recent[0].RunID, recent[1].RunID)
	}
}

func TestHistory_MinimumSize(t *testing.T) {
	h := NewHistory(0)
	h.Add(placementN(1))
	h.Add(placementN(2))

	if h.Len() != 1 {
		t.Fatalf("zero-size history should retain one entry, got %d", h.Len())
	}
	if h.Recent()[0].RunID != "run-2" {
		t.Errorf("expected run-2, got %s", h.Recent()[0].RunID)
	}
}
