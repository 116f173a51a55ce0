package cmdutil

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/HeorhiiKortunov/CoreTask/internal/auth"
	"github.com/HeorhiiKortunov/CoreTask/internal/config"
	"github.com/HeorhiiKortunov/CoreTask/internal/db/bunx"
	"github.com/HeorhiiKortunov/CoreTask/internal/migrations"
	"github.com/HeorhiiKortunov/CoreTask/internal/repository"
)

// cliUsername names the principal CLI commands act as.
const cliUsername = "coretask-cli"

// Stack bundles the database connection with the repositories built on it so
// commands share one connection.
type Stack struct {
	DB          *bun.DB
	Companies   *repository.BunCompanyRepository
	Users       *repository.BunUserRepository
	Projects    *repository.BunProjectRepository
	Tasks       *repository.BunTaskRepository
	Comments    *repository.BunCommentRepository
	Invitations *repository.BunInvitationRepository
}

// Open connects to the configured database and builds every repository.
func Open(cfg *config.Config, opts ...bunx.Option) (*Stack, error) {
	opts = append([]bunx.Option{bunx.WithMaxConnections(cfg.MaxDBConnections)}, opts...)
	db, err := bunx.NewDB(cfg.DatabaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Stack{
		DB:          db,
		Companies:   repository.NewBunCompanyRepository(db),
		Users:       repository.NewBunUserRepository(db),
		Projects:    repository.NewBunProjectRepository(db),
		Tasks:       repository.NewBunTaskRepository(db),
		Comments:    repository.NewBunCommentRepository(db),
		Invitations: repository.NewBunInvitationRepository(db),
	}, nil
}

// Close releases the underlying database connection.
func (s *Stack) Close() {
	if s == nil || s.DB == nil {
		return
	}
	_ = bunx.Close(s.DB)
}

// Migrator returns a migrator over the registered schema migrations.
func (s *Stack) Migrator() *migrate.Migrator {
	return migrate.NewMigrator(s.DB, migrations.Migrations)
}

// TenantContext returns ctx carrying a role-less principal of companyID, for
// commands that call tenant-scoped services outside a request.
func TenantContext(ctx context.Context, companyID int64) context.Context {
	return auth.WithPrincipal(ctx, auth.NewPrincipal(0, cliUsername, companyID, nil))
}
