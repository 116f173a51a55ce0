package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// User is an account inside one company. PasswordHash holds the bcrypt hash.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            int64     `bun:"id,pk,autoincrement"`
	CompanyID     int64     `bun:"company_id,notnull"`
	Username      string    `bun:"username,notnull,unique"`
	DisplayedName string    `bun:"displayed_name,notnull"`
	Email         string    `bun:"email,notnull,unique"`
	PasswordHash  string    `bun:"password_hash,notnull"`
	Roles         RoleList  `bun:"roles,type:text,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RoleList stores role names as a JSON array in a text column.
type RoleList []string

// Scan implements sql.Scanner for reading from database
func (r *RoleList) Scan(value any) error {
	if value == nil {
		*r = RoleList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan RoleList: expected []byte or string, got %T", value)
	}
	if len(raw) == 0 {
		*r = RoleList{}
		return nil
	}
	return json.Unmarshal(raw, r)
}

// Value implements driver.Valuer for writing to database
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
