package upload

import (
	"math/rand"
	"time"
)

// NewImageID allocates an image id the way the editing surfaces always
// have: the current Unix millisecond timestamp plus a random perturbation,
// so two images pasted within the same millisecond do not collide. Ids are
// unique within one document and never reused.
func NewImageID(now time.Time) int64 {
	return now.UnixMilli() + rand.Int63n(1000)
}
