package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Invitation lets the holder of Token join CompanyID as a member until
// ExpiresAt. It can be accepted once.
type Invitation struct {
	bun.BaseModel `bun:"table:invitations,alias:inv"`

	ID        int64     `bun:"id,pk,autoincrement"`
	CompanyID int64     `bun:"company_id,notnull"`
	Email     string    `bun:"email,notnull"`
	Token     string    `bun:"token,notnull,unique"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	Accepted  bool      `bun:"accepted,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Usable reports whether the invitation can still be accepted at now.
func (i *Invitation) Usable(now time.Time) bool {
	return !i.Accepted && now.Before(i.ExpiresAt)
}
