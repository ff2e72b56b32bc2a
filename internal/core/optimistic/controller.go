// Package optimistic implements the snapshot / tentative-apply / reconcile
// protocol for admin mutations. The controller is the single writer of the
// shared entity cache: component code reads the cache and issues mutations,
// never patches it ad hoc.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/observability/metrics"
)

const (
	// DefaultMutationTimeout bounds how long a tentative value may sit in the
	// cache without an authoritative answer. On expiry the snapshot is
	// restored, so a dead network call never leaves an entity stuck.
	DefaultMutationTimeout = 15 * time.Second

	// reconcileTimeout bounds the cache writes performed during
	// reconciliation. These use a fresh context: a rollback must land even
	// when the caller's request context is already gone.
	reconcileTimeout = 5 * time.Second

	refetchTimeout = 10 * time.Second
)

// ListRefresher refetches one dependent list view into the cache after an
// invalidation.
type ListRefresher func(ctx context.Context, list string) error

// Mutation describes one optimistic state change.
type Mutation struct {
	EntityType domain.EntityType
	EntityID   string
	Kind       Kind

	// Tentative is written to the cache immediately, before dispatch.
	Tentative []byte

	// Dispatch performs the backend call and returns the authoritative
	// entity value on success.
	Dispatch func(ctx context.Context) ([]byte, error)

	// Invalidates names the dependent list views to invalidate and refetch
	// once the mutation commits.
	Invalidates []string
}

type Controller struct {
	cache    ports.EntityCache
	registry *registry
	refresh  ListRefresher
	timeout  time.Duration

	mu        sync.Mutex
	refetches map[string]*refetchHandle
}

type refetchHandle struct {
	cancel context.CancelFunc
}

func NewController(cache ports.EntityCache, refresh ListRefresher, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultMutationTimeout
	}
	return &Controller{
		cache:     cache,
		registry:  newRegistry(),
		refresh:   refresh,
		timeout:   timeout,
		refetches: make(map[string]*refetchHandle),
	}
}

// Do runs the full optimistic protocol for m and returns the authoritative
// entity value. On any dispatch failure the pre-mutation snapshot is restored
// exactly and the entity is left mutable again.
func (c *Controller) Do(ctx context.Context, m Mutation) ([]byte, error) {
	if m.EntityID == "" || m.Kind == "" || m.Dispatch == nil || len(m.Tentative) == 0 {
		return nil, fmt.Errorf("%w: incomplete mutation", domain.ErrValidation)
	}

	fk := flightKey{m.EntityType, m.EntityID, m.Kind}

	// Single-flight guard: a duplicate (entity, kind) request never reaches
	// the network.
	gen, ok := c.registry.acquire(fk)
	if !ok {
		metrics.ObserveMutation(string(m.Kind), "rejected_in_flight")
		return nil, fmt.Errorf("%w: %s %s/%s", domain.ErrMutationInFlight, m.Kind, m.EntityType, m.EntityID)
	}

	// A slow in-flight list read must not clobber the tentative value we are
	// about to write.
	c.cancelRefetches(m.Invalidates)

	snapshot, err := c.cache.GetEntity(ctx, m.EntityType, m.EntityID)
	hadSnapshot := err == nil
	if err != nil && !errors.Is(err, domain.ErrEntityNotFound) {
		c.registry.release(fk, gen)
		return nil, err
	}

	if err := c.cache.PutEntity(ctx, m.EntityType, m.EntityID, m.Tentative); err != nil {
		c.registry.release(fk, gen)
		return nil, err
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, dispatchErr := m.Dispatch(dispatchCtx)

	latest := c.registry.release(fk, gen)

	if dispatchErr != nil {
		if latest {
			if isConflict(dispatchErr) {
				c.converge(m)
			} else {
				c.restore(m, snapshot, hadSnapshot)
			}
		}
		metrics.ObserveMutation(string(m.Kind), "rolled_back")
		if errors.Is(dispatchErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", domain.ErrMutationTimeout, c.timeout)
		}
		return nil, dispatchErr
	}

	// A later mutation wrote its own tentative value while we were in
	// flight; its value wins until its own reconciliation completes.
	outcome := "superseded"
	if latest {
		c.commit(m, result)
		outcome = "committed"
	}

	metrics.ObserveMutation(string(m.Kind), outcome)
	return result, nil
}

// isConflict reports a dispatch failure meaning another writer changed the
// entity first. In that case the local snapshot is stale too, not just the
// tentative value.
func isConflict(err error) bool {
	return errors.Is(err, domain.ErrClientAlreadyAssigned) ||
		errors.Is(err, domain.ErrInvalidTransition)
}

// InFlight reports whether a mutation of the given kind is outstanding for
// the entity.
func (c *Controller) InFlight(entityType domain.EntityType, entityID string, kind Kind) bool {
	return c.registry.pending(flightKey{entityType, entityID, kind})
}

func (c *Controller) commit(m Mutation, authoritative []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if len(authoritative) > 0 {
		if err := c.cache.PutEntity(ctx, m.EntityType, m.EntityID, authoritative); err != nil {
			log.Printf("optimistic: commit write failed for %s/%s: %v", m.EntityType, m.EntityID, err)
		}
	}

	for _, list := range m.Invalidates {
		if err := c.cache.InvalidateList(ctx, list); err != nil {
			log.Printf("optimistic: invalidate %q failed: %v", list, err)
		}
		c.scheduleRefetch(list)
	}
}

// converge reconciles a lost race. Restoring the snapshot would pin the
// loser's pre-mutation view until the cache TTL, so instead the entity key is
// dropped and the dependent lists refetched; the next read lands on the
// winner's value.
func (c *Controller) converge(m Mutation) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if err := c.cache.DeleteEntity(ctx, m.EntityType, m.EntityID); err != nil {
		log.Printf("optimistic: conflict discard failed for %s/%s: %v", m.EntityType, m.EntityID, err)
	}
	for _, list := range m.Invalidates {
		if err := c.cache.InvalidateList(ctx, list); err != nil {
			log.Printf("optimistic: invalidate %q failed: %v", list, err)
		}
		c.scheduleRefetch(list)
	}
	metrics.ObserveRollback(string(m.Kind))
}

func (c *Controller) restore(m Mutation, snapshot []byte, hadSnapshot bool) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	var err error
	if hadSnapshot {
		err = c.cache.PutEntity(ctx, m.EntityType, m.EntityID, snapshot)
	} else {
		err = c.cache.DeleteEntity(ctx, m.EntityType, m.EntityID)
	}
	if err != nil {
		log.Printf("optimistic: rollback failed for %s/%s: %v", m.EntityType, m.EntityID, err)
	}
	metrics.ObserveRollback(string(m.Kind))
}

// scheduleRefetch starts one asynchronous refetch per list, replacing (and
// cancelling) any refetch already running for it.
func (c *Controller) scheduleRefetch(list string) {
	if c.refresh == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	handle := &refetchHandle{cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.refetches[list]; ok {
		prev.cancel()
	}
	c.refetches[list] = handle
	c.mu.Unlock()

	go func() {
		defer cancel()
		if err := c.refresh(ctx, list); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("optimistic: refetch %q failed: %v", list, err)
		}

		c.mu.Lock()
		// Only clear our own registration; a newer refetch may have replaced it.
		if c.refetches[list] == handle {
			delete(c.refetches, list)
		}
		c.mu.Unlock()
	}()
}

func (c *Controller) cancelRefetches(lists []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, list := range lists {
		if handle, ok := c.refetches[list]; ok {
			handle.cancel()
			delete(c.refetches, list)
		}
	}
}
