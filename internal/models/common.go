// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields. IDs are uuid strings so every store adapter
// keys documents the same way.
type BaseModel struct {
	ID        string    `json:"id" bson:"_id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Prepare assigns an id and timestamps to a record about to be inserted.
func (b *BaseModel) Prepare(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// CartItems is stored as a jsonb column in PostgreSQL and as an embedded
// array in MongoDB.
type CartItems []CartItem

func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *CartItems) Scan(value interface{}) error {
	if value == nil {
		*c = CartItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CartItems", value)
	}

	return json.Unmarshal(bytes, c)
}

// Enums
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
