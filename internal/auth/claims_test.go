package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalFromClaims(t *testing.T) {
	tests := []struct {
		name      string
		claims    Claims
		wantErr   bool
		wantRoles []Role
		wantTen   int64
	}{
		{
			name:      "valid",
			claims:    Claims{"sub": "5", "email": "e@x.io", "roles": []any{"MEMBER", "ADMIN"}, "companyId": json.Number("9")},
			wantRoles: []Role{RoleAdmin, RoleMember},
			wantTen:   9,
		},
		{
			name:      "missing roles is empty set",
			claims:    Claims{"sub": "5", "companyId": json.Number("9")},
			wantRoles: []Role{},
			wantTen:   9,
		},
		{
			name:      "duplicate roles collapse",
			claims:    Claims{"sub": "5", "roles": []any{"MEMBER", "MEMBER"}, "companyId": json.Number("9")},
			wantRoles: []Role{RoleMember},
			wantTen:   9,
		},
		{
			name:      "no tenant yet",
			claims:    Claims{"sub": "5", "roles": []any{"MEMBER"}},
			wantRoles: []Role{RoleMember},
		},
		{
			name:    "unknown role fails whole conversion",
			claims:  Claims{"sub": "5", "roles": []any{"MEMBER", "SUPERUSER"}, "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "legacy prefixed role",
			claims:  Claims{"sub": "5", "roles": []any{"ROLE_ADMIN"}, "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "roles not a list",
			claims:  Claims{"sub": "5", "roles": "ADMIN", "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "missing subject",
			claims:  Claims{"roles": []any{"MEMBER"}, "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "non numeric subject",
			claims:  Claims{"sub": "alice", "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "zero subject",
			claims:  Claims{"sub": "0", "companyId": json.Number("9")},
			wantErr: true,
		},
		{
			name:    "fractional tenant",
			claims:  Claims{"sub": "5", "companyId": json.Number("9.5")},
			wantErr: true,
		},
		{
			name:    "negative tenant",
			claims:  Claims{"sub": "5", "companyId": json.Number("-2")},
			wantErr: true,
		},
		{
			name:    "boolean tenant",
			claims:  Claims{"sub": "5", "companyId": true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PrincipalFromClaims(tt.claims)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(5), p.UserID())
			assert.ElementsMatch(t, tt.wantRoles, p.Roles())
			tenantID, ok := p.TenantID()
			assert.Equal(t, tt.wantTen, tenantID)
			assert.Equal(t, tt.wantTen > 0, ok)
		})
	}
}

func TestResolver_PropagatesVerifyFailure(t *testing.T) {
	_, err := NewResolver(newTestCodec(t)).Resolve("abc.def.ghi")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles([]string{"OWNER", "MEMBER", "OWNER"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleMember, RoleOwner}, roles)

	_, err = ParseRoles([]string{"member"})
	assert.Error(t, err, "matching is case sensitive")
}
