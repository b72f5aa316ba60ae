package upload

import (
	"testing"
	"time"
)

func TestNewImageIDTimeBased(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	base := now.UnixMilli()
	for i := 0; i < 100; i++ {
		id := NewImageID(now)
		if id < base || id >= base+1000 {
			t.Fatalf("id %d outside perturbation window [%d, %d)", id, base, base+1000)
		}
	}
}

func TestNewImageIDNonNegative(t *testing.T) {
	if id := NewImageID(time.Now()); id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}
}
