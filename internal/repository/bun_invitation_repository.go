package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
)

// BunInvitationRepository implements InvitationRepository using Bun ORM
type BunInvitationRepository struct {
	db *bun.DB
}

// NewBunInvitationRepository creates a new Bun-based invitation repository
func NewBunInvitationRepository(db *bun.DB) *BunInvitationRepository {
	return &BunInvitationRepository{db: db}
}

func (r *BunInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if invitation.CreatedAt.IsZero() {
		invitation.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(invitation).Exec(ctx); err != nil {
		return wrapWrite("create invitation", err)
	}
	return nil
}

func (r *BunInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	invitation := new(models.Invitation)
	err := r.db.NewSelect().
		Model(invitation).
		Where("token = ?", token).
		Scan(ctx)
	if err != nil {
		return nil, wrapRead("get invitation", err)
	}
	return invitation, nil
}

func (r *BunInvitationRepository) Accept(ctx context.Context, invitationID int64, user *models.User) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Invitation)(nil)).
			Set("accepted = ?", true).
			Where("id = ?", invitationID).
			Where("accepted = ?", false).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("accept invitation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("accept invitation: get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("accept invitation %d: %w", invitationID, ErrAlreadyAccepted)
		}

		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return wrapWrite("create invited user", err)
		}
		return nil
	})
}
