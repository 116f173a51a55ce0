package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
)

// Kind names a family of cache entries, e.g. single users or a company's
// user list. Broad eviction works per kind.
type Kind string

// collectionScope is the scope of a key covering a tenant's whole collection.
const collectionScope = "*"

// Key identifies one cache entry as (kind, scope, tenant). The tenant is
// always part of the key, so an entry of tenant T can only be hit by a key
// built for T.
//
// Fields are unexported: keys are built from a request context, which pins the
// tenant to the authenticated principal, or explicitly for eviction via
// TenantEntityKey and TenantCollectionKey.
type Key struct {
	kind     Kind
	scope    string
	tenantID int64
}

// Kind returns the key's kind.
func (k Key) Kind() Kind { return k.kind }

// TenantID returns the tenant the key is scoped to.
func (k Key) TenantID() int64 { return k.tenantID }

// String renders the key as kind/scope@tenant.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%d", k.kind, k.scope, k.tenantID)
}

// EntityKey addresses a single entity of the caller's tenant.
func EntityKey(ctx context.Context, kind Kind, id int64) (Key, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return Key{}, err
	}
	return TenantEntityKey(kind, id, tenantID), nil
}

// CollectionKey addresses the whole collection of kind for the caller's tenant.
func CollectionKey(ctx context.Context, kind Kind) (Key, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return Key{}, err
	}
	return TenantCollectionKey(kind, tenantID), nil
}

// ScopedCollectionKey addresses a collection of the caller's tenant narrowed by
// scope, e.g. the comments of one task.
func ScopedCollectionKey(ctx context.Context, kind Kind, scope string) (Key, error) {
	tenantID, err := auth.CurrentTenantID(ctx)
	if err != nil {
		return Key{}, err
	}
	if scope == "" {
		scope = collectionScope
	}
	return Key{kind: kind, scope: scope, tenantID: tenantID}, nil
}

// TenantEntityKey builds an entity key for an explicit tenant. Reads through
// such a key still have to match the caller's tenant; see GetOrLoad.
func TenantEntityKey(kind Kind, id int64, tenantID int64) Key {
	return Key{kind: kind, scope: strconv.FormatInt(id, 10), tenantID: tenantID}
}

// TenantCollectionKey builds a collection key for an explicit tenant, used by
// flows that run before a principal exists such as registration.
func TenantCollectionKey(kind Kind, tenantID int64) Key {
	return Key{kind: kind, scope: collectionScope, tenantID: tenantID}
}
