package optimistic

import (
	"sync"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

// Kind names the category of mutation for single-flight purposes. Two
// mutations collide only when both the entity and the kind match.
type Kind string

const (
	KindStatus  Kind = "status"
	KindTier    Kind = "tier"
	KindAssign  Kind = "assign"
	KindAccount Kind = "account"
)

type flightKey struct {
	entityType domain.EntityType
	entityID   string
	kind       Kind
}

type entityKey struct {
	entityType domain.EntityType
	entityID   string
}

// registry is the keyed in-flight mutation registry. It replaces any notion
// of a global "something is updating" flag: unrelated entities never
// serialize against each other, while a duplicate (entity, kind) request is
// rejected without reaching the network. The guard is advisory; cross-session
// races are resolved by the backend's own concurrency control.
type registry struct {
	mu       sync.Mutex
	inflight map[flightKey]struct{}
	// gen counts tentative writes per entity. Reconciliation results only
	// land while the issuing mutation is still the latest writer.
	gen map[entityKey]uint64
}

func newRegistry() *registry {
	return &registry{
		inflight: make(map[flightKey]struct{}),
		gen:      make(map[entityKey]uint64),
	}
}

// acquire registers a flight and returns the generation stamped on its
// tentative write. ok is false when the same (entity, kind) is already in
// flight.
func (r *registry) acquire(k flightKey) (gen uint64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.inflight[k]; exists {
		return 0, false
	}
	r.inflight[k] = struct{}{}

	ek := entityKey{k.entityType, k.entityID}
	r.gen[ek]++
	return r.gen[ek], true
}

// release drops the flight and reports whether gen is still the entity's
// latest tentative write. When it is not, a later mutation owns the cached
// value and the caller must not touch it (last-writer-wins).
func (r *registry) release(k flightKey, gen uint64) (latest bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inflight, k)
	return r.gen[entityKey{k.entityType, k.entityID}] == gen
}

// pending reports whether a flight for k is outstanding.
func (r *registry) pending(k flightKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.inflight[k]
	return exists
}
