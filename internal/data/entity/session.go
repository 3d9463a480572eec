package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a sign-in issued by the external identity provider.
type Session struct {
	BaseSimple
	CustomerID uuid.UUID  `db:"customer_id"`
	Token      uuid.UUID  `db:"token"`
	ExpiresAt  time.Time  `db:"expires_at"`
	RevokedAt  *time.Time `db:"revoked_at"`
}

func (s *Session) Valid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
