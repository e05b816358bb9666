package runtime

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const stripeCount = 64

// stripedLocks serialises edits and deletes per message id
// without one global lock for the whole log.
type stripedLocks struct {
	stripes [stripeCount]sync.Mutex
}

func (s *stripedLocks) lock(id uuid.UUID) func() {
	m := &s.stripes[xxhash.Sum64(id[:])%stripeCount]
	m.Lock()
	return m.Unlock
}
