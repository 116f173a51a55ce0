package repository

import (
	"context"
	"errors"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

var (
	// ErrNotFound is returned when no row matches, including rows that exist
	// in another company.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrAlreadyAccepted is returned when an invitation was accepted by an
	// earlier request.
	ErrAlreadyAccepted = errors.New("invitation already accepted")
)

// Every method taking a companyID only sees rows of that company.

// CompanyRepository exposes persistence operations for tenants.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	// CreateWithOwner inserts the company and its first user in one
	// transaction and sets owner.CompanyID.
	CreateWithOwner(ctx context.Context, company *models.Company, owner *models.User) error
}

// UserRepository exposes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, companyID, id int64) (*models.User, error)
	// GetByUsername looks across companies; only login uses it.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.User, error)
	// Update writes the profile fields and password hash.
	Update(ctx context.Context, user *models.User) error
	SetRoles(ctx context.Context, companyID, id int64, roles []string) error
	Delete(ctx context.Context, companyID, id int64) error
}

// ProjectRepository exposes persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, companyID, id int64) (*models.Project, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, companyID, id int64) error
}

// TaskRepository exposes persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, companyID, id int64) (*models.Task, error)
	// List returns the company's tasks, narrowed to one project when
	// projectID is not nil.
	List(ctx context.Context, companyID int64, projectID *int64) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, companyID, id int64) error
}

// CommentRepository exposes persistence operations for task comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, companyID, id int64) (*models.Comment, error)
	ListByTask(ctx context.Context, companyID, taskID int64) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, companyID, id int64) error
}

// InvitationRepository exposes persistence operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	// GetByToken looks across companies; the token is the credential.
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	// Accept marks the invitation accepted and inserts user in one
	// transaction. It returns ErrAlreadyAccepted if the invitation was already
	// accepted.
	Accept(ctx context.Context, invitationID int64, user *models.User) error
}
