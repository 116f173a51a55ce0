package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/logging"
)

func init() {
	Migrations.MustRegister(up_20260301000000, down_20260301000000)
}

type tableSpec struct {
	model       any
	name        string
	foreignKeys []string
	indexes     []string
}

// schemaTables lists tables in dependency order.
var schemaTables = []tableSpec{
	{
		model: (*models.Company)(nil),
		name:  "companies",
	},
	{
		model: (*models.User)(nil),
		name:  "users",
		foreignKeys: []string{
			`(company_id) REFERENCES companies(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_users_company ON users(company_id)`,
		},
	},
	{
		model: (*models.Project)(nil),
		name:  "projects",
		foreignKeys: []string{
			`(company_id) REFERENCES companies(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_projects_company ON projects(company_id)`,
		},
	},
	{
		model: (*models.Task)(nil),
		name:  "tasks",
		foreignKeys: []string{
			`(company_id) REFERENCES companies(id) ON DELETE CASCADE`,
			`(project_id) REFERENCES projects(id) ON DELETE CASCADE`,
			`(assignee_id) REFERENCES users(id) ON DELETE SET NULL`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_tasks_company_project ON tasks(company_id, project_id)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`,
		},
	},
	{
		model: (*models.Comment)(nil),
		name:  "comments",
		foreignKeys: []string{
			`(company_id) REFERENCES companies(id) ON DELETE CASCADE`,
			`(task_id) REFERENCES tasks(id) ON DELETE CASCADE`,
			`(author_id) REFERENCES users(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_comments_company_task ON comments(company_id, task_id)`,
		},
	},
	{
		model: (*models.Invitation)(nil),
		name:  "invitations",
		foreignKeys: []string{
			`(company_id) REFERENCES companies(id) ON DELETE CASCADE`,
		},
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_invitations_company ON invitations(company_id)`,
		},
	},
}

// up_20260301000000 creates the tenant schema
func up_20260301000000(ctx context.Context, db *bun.DB) error {
	for _, tbl := range schemaTables {
		logging.Op().Info("migration: creating table", "table", tbl.name)

		q := db.NewCreateTable().
			Model(tbl.model).
			IfNotExists()
		for _, fk := range tbl.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
		}

		for _, stmt := range tbl.indexes {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s: %w", tbl.name, err)
			}
		}
	}
	return nil
}

// down_20260301000000 drops all tables
func down_20260301000000(ctx context.Context, db *bun.DB) error {
	for i := len(schemaTables) - 1; i >= 0; i-- {
		tbl := schemaTables[i]
		logging.Op().Info("migration: dropping table", "table", tbl.name)

		q := db.NewDropTable().Model(tbl.model).IfExists()
		if IsPostgreSQL(db) {
			q = q.Cascade()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", tbl.name, err)
		}
	}
	return nil
}
