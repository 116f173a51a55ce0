package repository

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// Create inserts a new user into the database
func (r *BunUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return wrapWrite("create user", err)
	}
	return nil
}

// GetByID retrieves a user of the company by ID
func (r *BunUserRepository) GetByID(ctx context.Context, companyID, id int64) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get user", err)
	}
	return user, nil
}

func (r *BunUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get user by username", err)
	}
	return user, nil
}

func (r *BunUserRepository) ListByCompany(ctx context.Context, companyID int64) ([]models.User, error) {
	var users []models.User
	err := r.db.NewSelect().
		Model(&users).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("list users", err)
	}
	return users, nil
}

// Update writes displayed name, email and password hash
func (r *BunUserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.db.NewUpdate().
		Model(user).
		Column("displayed_name", "email", "password_hash").
		Where("id = ?", user.ID).
		Where("company_id = ?", user.CompanyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("update user", err)
	}
	return requireAffected("update user", res)
}

func (r *BunUserRepository) SetRoles(ctx context.Context, companyID, id int64, roles []string) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("roles = ?", models.RoleList(roles)).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("set user roles", err)
	}
	return requireAffected("set user roles", res)
}

func (r *BunUserRepository) Delete(ctx context.Context, companyID, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		Exec(ctx)
	if err != nil {
		return wrapWrite("delete user", err)
	}
	return requireAffected("delete user", res)
}
