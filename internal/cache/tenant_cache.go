package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

// DefaultSize is the per-kind entry capacity used when none is configured.
const DefaultSize = 1024

// ErrTenantMismatch is returned when a read key is scoped to a tenant other
// than the caller's.
var ErrTenantMismatch = errors.New("cache key tenant does not match request tenant")

// Metrics receives cache lookups and evictions.
type Metrics interface {
	RecordLookup(ctx context.Context, kind string, hit bool)
	RecordEviction(ctx context.Context, kind string, broad bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, string, bool)   {}
func (noopMetrics) RecordEviction(context.Context, string, bool) {}

// store holds the entries of one kind. gen counts invalidations of the kind;
// a load only populates the store if no invalidation happened while it ran.
type store struct {
	mu      sync.RWMutex
	gen     uint64
	entries *lru.Cache[Key, any]
}

// TenantCache is a read-through cache with event-driven eviction. Entries have
// no TTL and stay until evicted (or pushed out by the per-kind LRU bound).
//
// Cached values are shared between callers and must be treated as read-only.
type TenantCache struct {
	size        int
	origin      string
	metrics     Metrics
	broadcaster Broadcaster

	mu     sync.RWMutex
	stores map[Kind]*store
}

// Option configures a TenantCache.
type Option func(*TenantCache)

// WithSize sets the per-kind LRU capacity.
func WithSize(n int) Option {
	return func(c *TenantCache) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithMetrics records lookups and evictions on m.
func WithMetrics(m Metrics) Option {
	return func(c *TenantCache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithBroadcaster fans local evictions out to other instances through b.
func WithBroadcaster(b Broadcaster) Option {
	return func(c *TenantCache) {
		c.broadcaster = b
	}
}

// New creates an empty cache.
func New(opts ...Option) *TenantCache {
	c := &TenantCache{
		size:    DefaultSize,
		origin:  uuid.NewString(),
		metrics: noopMetrics{},
		stores:  make(map[Kind]*store),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TenantCache) storeFor(kind Kind) *store {
	c.mu.RLock()
	s, ok := c.stores[kind]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stores[kind]; ok {
		return s
	}
	entries, err := lru.New[Key, any](c.size)
	if err != nil {
		// lru.New only fails for a non-positive size, which WithSize prevents.
		panic(fmt.Sprintf("cache: create store for %s: %v", kind, err))
	}
	s = &store{entries: entries}
	c.stores[kind] = s
	return s
}

// lookup returns the entry and the generation observed with it.
func (c *TenantCache) lookup(key Key) (any, uint64, bool) {
	s := c.storeFor(key.kind)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries.Get(key)
	return v, s.gen, ok
}

// storeIfCurrent writes value unless the kind was invalidated after gen was
// observed.
func (c *TenantCache) storeIfCurrent(key Key, value any, gen uint64) bool {
	s := c.storeFor(key.kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.entries.Add(key, value)
	return true
}

// GetOrLoad returns the value cached under key or runs load and caches its
// result. key must be scoped to the caller's tenant. Load errors are returned
// as is and nothing is cached for them.
//
// Concurrent misses on one key may each run load. A load that overlaps an
// invalidation of the same kind returns its result without caching it.
func GetOrLoad[V any](ctx context.Context, c *TenantCache, key Key, load func(context.Context) (V, error)) (V, error) {
	var zero V

	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return zero, err
	}
	if key.tenantID != tenantID {
		return zero, ErrTenantMismatch
	}

	cached, gen, ok := c.lookup(key)
	if ok {
		if v, ok := cached.(V); ok {
			c.metrics.RecordLookup(ctx, string(key.kind), true)
			return v, nil
		}
	}
	c.metrics.RecordLookup(ctx, string(key.kind), false)

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if !c.storeIfCurrent(key, v, gen) {
		logging.Op().Debug("cache fill skipped after concurrent invalidation", "key", key.String())
	}
	return v, nil
}

// Invalidate removes the given entries. It returns after the local eviction
// is applied, so a response sent afterwards never races a stale read.
func (c *TenantCache) Invalidate(ctx context.Context, keys ...Key) {
	for _, key := range keys {
		c.evict(ctx, key)
		c.publish(ctx, Event{Kind: key.kind, Scope: key.scope, TenantID: key.tenantID})
	}
}

// InvalidateAll removes every entry of the given kinds across all tenants
// and scopes.
func (c *TenantCache) InvalidateAll(ctx context.Context, kinds ...Kind) {
	for _, kind := range kinds {
		c.evictKind(ctx, kind)
		c.publish(ctx, Event{Kind: kind, All: true})
	}
}

func (c *TenantCache) evict(ctx context.Context, key Key) {
	s := c.storeFor(key.kind)
	s.mu.Lock()
	s.gen++
	s.entries.Remove(key)
	s.mu.Unlock()
	c.metrics.RecordEviction(ctx, string(key.kind), false)
}

func (c *TenantCache) evictKind(ctx context.Context, kind Kind) {
	s := c.storeFor(kind)
	s.mu.Lock()
	s.gen++
	s.entries.Purge()
	s.mu.Unlock()
	c.metrics.RecordEviction(ctx, string(kind), true)
}

// Len returns the number of entries held for kind.
func (c *TenantCache) Len(kind Kind) int {
	return c.storeFor(kind).entries.Len()
}

func (c *TenantCache) publish(ctx context.Context, ev Event) {
	if c.broadcaster == nil {
		return
	}
	ev.Origin = c.origin
	if err := c.broadcaster.Publish(ctx, ev); err != nil {
		logging.Op().Warn("cache invalidation broadcast failed",
			"kind", string(ev.Kind), "all", ev.All, "error", err)
	}
}

// apply evicts locally on behalf of another instance.
func (c *TenantCache) apply(ctx context.Context, ev Event) {
	if ev.Origin == c.origin || ev.Kind == "" {
		return
	}
	if ev.All {
		c.evictKind(ctx, ev.Kind)
		return
	}
	c.evict(ctx, Key{kind: ev.Kind, scope: ev.Scope, tenantID: ev.TenantID})
}

// Listen applies evictions published by other instances until ctx ends.
func (c *TenantCache) Listen(ctx context.Context) error {
	if c.broadcaster == nil {
		return nil
	}
	return c.broadcaster.Subscribe(ctx, func(ev Event) {
		c.apply(ctx, ev)
	})
}
