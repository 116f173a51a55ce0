package repotest

import (
	"context"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
)

// PrincipalContext returns a context carrying a principal of tenantID.
func PrincipalContext(userID, tenantID int64, roles ...auth.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.NewPrincipal(userID, "tester", tenantID, roles))
}
