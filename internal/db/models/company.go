package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Company is a tenant. Every other row belongs to exactly one company.
type Company struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
