package entity

import (
	"time"

	"github.com/google/uuid"
)

// BaseSimple is embedded by append-only records.
type BaseSimple struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
