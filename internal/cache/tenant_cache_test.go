package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
)

func tenantCtx(tenantID int64) context.Context {
	return auth.WithPrincipal(context.Background(), auth.NewPrincipal(1, "u", tenantID, []auth.Role{auth.RoleMember}))
}

type countingLoader[V any] struct {
	calls atomic.Int32
	value atomic.Value
}

func newCountingLoader[V any](v V) *countingLoader[V] {
	l := &countingLoader[V]{}
	l.value.Store(v)
	return l
}

func (l *countingLoader[V]) set(v V) { l.value.Store(v) }

func (l *countingLoader[V]) load(context.Context) (V, error) {
	l.calls.Add(1)
	return l.value.Load().(V), nil
}

type recordingMetrics struct {
	mu        sync.Mutex
	hits      map[string]int
	misses    map[string]int
	evictions map[string]int
	broad     map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		hits: map[string]int{}, misses: map[string]int{},
		evictions: map[string]int{}, broad: map[string]int{},
	}
}

func (m *recordingMetrics) RecordLookup(_ context.Context, kind string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits[kind]++
	} else {
		m.misses[kind]++
	}
}

func (m *recordingMetrics) RecordEviction(_ context.Context, kind string, broad bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if broad {
		m.broad[kind]++
	} else {
		m.evictions[kind]++
	}
}

func TestGetOrLoad_ReadThrough(t *testing.T) {
	metrics := newRecordingMetrics()
	c := New(WithMetrics(metrics))
	ctx := tenantCtx(9)
	loader := newCountingLoader("alice")

	key, err := EntityKey(ctx, KindUsers, 5)
	require.NoError(t, err)

	for range 3 {
		v, err := GetOrLoad(ctx, c, key, loader.load)
		require.NoError(t, err)
		assert.Equal(t, "alice", v)
	}
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.Equal(t, 1, metrics.misses[string(KindUsers)])
	assert.Equal(t, 2, metrics.hits[string(KindUsers)])
}

func TestGetOrLoad_RequiresTenant(t *testing.T) {
	c := New()
	loader := newCountingLoader(1)

	_, err := GetOrLoad(context.Background(), c, TenantEntityKey(KindUsers, 1, 9), loader.load)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	noTenant := auth.WithPrincipal(context.Background(), auth.NewPrincipal(1, "u", 0, nil))
	_, err = GetOrLoad(noTenant, c, TenantEntityKey(KindUsers, 1, 9), loader.load)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = EntityKey(context.Background(), KindUsers, 1)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	assert.Zero(t, loader.calls.Load())
}

func TestGetOrLoad_TenantIsolation(t *testing.T) {
	c := New()
	ctxA, ctxB := tenantCtx(1), tenantCtx(2)

	keyA, err := EntityKey(ctxA, KindProjects, 7)
	require.NoError(t, err)
	keyB, err := EntityKey(ctxB, KindProjects, 7)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyB)

	_, err = GetOrLoad(ctxA, c, keyA, newCountingLoader("tenant-1 project").load)
	require.NoError(t, err)

	v, err := GetOrLoad(ctxB, c, keyB, newCountingLoader("tenant-2 project").load)
	require.NoError(t, err)
	assert.Equal(t, "tenant-2 project", v)

	// A request of tenant 2 may not read through a tenant-1 key.
	loader := newCountingLoader("leak")
	_, err = GetOrLoad(ctxB, c, keyA, loader.load)
	assert.ErrorIs(t, err, ErrTenantMismatch)
	assert.Zero(t, loader.calls.Load())
}

func TestGetOrLoad_ErrorsAreNotCached(t *testing.T) {
	c := New()
	ctx := tenantCtx(1)
	key, err := EntityKey(ctx, KindTasks, 1)
	require.NoError(t, err)

	notFound := errors.New("not found")
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", notFound
		}
		return "task", nil
	}

	_, err = GetOrLoad(ctx, c, key, load)
	assert.ErrorIs(t, err, notFound)

	v, err := GetOrLoad(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, "task", v)
	assert.Equal(t, 2, calls)
}

func TestInvalidate_UpdateIsVisible(t *testing.T) {
	c := New()
	ctx := tenantCtx(3)
	key, err := EntityKey(ctx, KindTasks, 11)
	require.NoError(t, err)
	loader := newCountingLoader("v1")

	v, err := GetOrLoad(ctx, c, key, loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	loader.set("v2")
	c.Invalidate(ctx, key)

	v, err = GetOrLoad(ctx, c, key, loader.load)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestInvalidate_IsPrecise(t *testing.T) {
	c := New()
	ctx1, ctx2 := tenantCtx(1), tenantCtx(2)
	users1, _ := CollectionKey(ctx1, KindCompanyUsers)
	users2, _ := CollectionKey(ctx2, KindCompanyUsers)

	l1 := newCountingLoader([]string{"a"})
	l2 := newCountingLoader([]string{"b"})
	_, _ = GetOrLoad(ctx1, c, users1, l1.load)
	_, _ = GetOrLoad(ctx2, c, users2, l2.load)

	c.Invalidate(ctx1, users1)

	_, _ = GetOrLoad(ctx1, c, users1, l1.load)
	_, _ = GetOrLoad(ctx2, c, users2, l2.load)
	assert.Equal(t, int32(2), l1.calls.Load())
	assert.Equal(t, int32(1), l2.calls.Load(), "other tenant keeps its entry")
}

func TestInvalidateAll_EvictsEveryScopeAndTenant(t *testing.T) {
	metrics := newRecordingMetrics()
	c := New(WithMetrics(metrics))

	type cached struct {
		ctx context.Context
		key Key
	}
	var entries []cached
	for tenant := int64(1); tenant <= 3; tenant++ {
		ctx := tenantCtx(tenant)
		for _, scope := range []string{"all", "project:1", "project:2"} {
			key, err := ScopedCollectionKey(ctx, KindProjectTasks, scope)
			require.NoError(t, err)
			entries = append(entries, cached{ctx: ctx, key: key})
		}
	}
	other, _ := EntityKey(tenantCtx(1), KindTasks, 1)

	for _, e := range entries {
		_, err := GetOrLoad(e.ctx, c, e.key, newCountingLoader(e.key.String()).load)
		require.NoError(t, err)
	}
	_, _ = GetOrLoad(tenantCtx(1), c, other, newCountingLoader("task").load)
	assert.Equal(t, len(entries), c.Len(KindProjectTasks))

	c.InvalidateAll(context.Background(), KindProjectTasks)
	assert.Zero(t, c.Len(KindProjectTasks))
	assert.Equal(t, 1, c.Len(KindTasks), "other kinds are untouched")
	assert.Equal(t, 1, metrics.broad[string(KindProjectTasks)])

	for _, e := range entries {
		loader := newCountingLoader("reloaded")
		v, err := GetOrLoad(e.ctx, c, e.key, loader.load)
		require.NoError(t, err)
		assert.Equal(t, "reloaded", v)
		assert.Equal(t, int32(1), loader.calls.Load(), "key %s must reload", e.key)
	}
}

func TestScenario_CompanyUsersReloadAfterCreate(t *testing.T) {
	c := New()
	ctx := tenantCtx(9)
	users := []string{"owner"}
	load := func(context.Context) ([]string, error) {
		return append([]string(nil), users...), nil
	}

	key, err := CollectionKey(ctx, KindCompanyUsers)
	require.NoError(t, err)

	got, err := GetOrLoad(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, got)

	// A user is created in tenant 9, then the tenant-9 collection is evicted.
	users = append(users, "newcomer")
	c.Invalidate(ctx, TenantCollectionKey(KindCompanyUsers, 9))

	got, err = GetOrLoad(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "newcomer"}, got)
}

func TestGetOrLoad_LoadOverlappingInvalidationIsNotCached(t *testing.T) {
	c := New()
	ctx := tenantCtx(1)
	key, err := EntityKey(ctx, KindComments, 1)
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	slowLoad := func(context.Context) (string, error) {
		close(started)
		<-release
		return "stale", nil
	}

	done := make(chan string)
	go func() {
		v, _ := GetOrLoad(ctx, c, key, slowLoad)
		done <- v
	}()

	<-started
	c.Invalidate(ctx, key)
	close(release)
	assert.Equal(t, "stale", <-done, "the caller still gets its own result")

	fresh := newCountingLoader("fresh")
	v, err := GetOrLoad(ctx, c, key, fresh.load)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, int32(1), fresh.calls.Load())
}

func TestTenantCache_ConcurrentAccessConverges(t *testing.T) {
	c := New(WithSize(16))
	var version atomic.Int64
	load := func(context.Context) (int64, error) {
		return version.Load(), nil
	}

	var wg sync.WaitGroup
	for g := range 16 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ctx := tenantCtx(int64(g%4 + 1))
			for i := range 200 {
				key, _ := EntityKey(ctx, KindUsers, int64(i%8))
				if i%10 == 0 {
					version.Add(1)
					c.Invalidate(ctx, key)
					continue
				}
				if i%37 == 0 {
					c.InvalidateAll(ctx, KindUsers)
					continue
				}
				_, err := GetOrLoad(ctx, c, key, load)
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	// After all writers are done, an invalidated key reloads the final version.
	ctx := tenantCtx(1)
	key, _ := EntityKey(ctx, KindUsers, 0)
	c.Invalidate(ctx, key)
	v, err := GetOrLoad(ctx, c, key, load)
	require.NoError(t, err)
	assert.Equal(t, version.Load(), v)
}

func TestGetOrLoad_TypeChangeReloads(t *testing.T) {
	c := New()
	ctx := tenantCtx(1)
	key, _ := EntityKey(ctx, KindUsers, 1)

	_, err := GetOrLoad(ctx, c, key, newCountingLoader("string").load)
	require.NoError(t, err)

	n, err := GetOrLoad(ctx, c, key, newCountingLoader(42).load)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "users/5@9", TenantEntityKey(KindUsers, 5, 9).String())
	assert.Equal(t, "companyUsers/*@9", TenantCollectionKey(KindCompanyUsers, 9).String())

	key, err := ScopedCollectionKey(tenantCtx(2), KindTaskComments, "")
	require.NoError(t, err)
	assert.Equal(t, "taskComments/*@2", key.String())
}
