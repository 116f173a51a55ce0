package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipal_Immutable(t *testing.T) {
	roles := []Role{RoleMember}
	p := NewPrincipal(1, "alice", 2, roles)

	roles[0] = RoleOwner
	assert.Equal(t, []Role{RoleMember}, p.Roles())

	got := p.Roles()
	got[0] = RoleOwner
	assert.Equal(t, []Role{RoleMember}, p.Roles())
}

func TestCurrentTenantID(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		_, err := CurrentTenantID(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = CurrentUserID(context.Background())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("nil principal stays anonymous", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), nil)
		_, ok := PrincipalFromContext(ctx)
		assert.False(t, ok)
		_, err := CurrentTenantID(ctx)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("no tenant", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), NewPrincipal(3, "bob", 0, nil))
		_, err := CurrentTenantID(ctx)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = CurrentUserID(ctx)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("resolved", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), NewPrincipal(3, "bob", 7, nil))
		tenantID, err := CurrentTenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), tenantID)
		userID, err := CurrentUserID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), userID)
	})
}

func TestCurrentTenantID_ConcurrentRequestsAreIsolated(t *testing.T) {
	const requests = 200
	base := context.Background()

	var wg sync.WaitGroup
	mismatches := make(chan int64, requests)
	start := make(chan struct{})

	for i := int64(1); i <= requests; i++ {
		wg.Add(1)
		go func(tenant int64) {
			defer wg.Done()
			ctx := WithPrincipal(base, NewPrincipal(tenant*10, "u", tenant, []Role{RoleMember}))
			<-start
			for range 50 {
				got, err := CurrentTenantID(ctx)
				if err != nil || got != tenant {
					mismatches <- tenant
					return
				}
			}
		}(i)
	}

	close(start)
	wg.Wait()
	close(mismatches)

	var bad []int64
	for m := range mismatches {
		bad = append(bad, m)
	}
	assert.Empty(t, bad)
	_, err := CurrentTenantID(base)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
