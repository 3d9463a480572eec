package utils

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// Crockford alphabet: no I, L, O or U, so references survive being read aloud.
var referenceEncoding = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

const BookingReferencePrefix = "BK-"

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

// ==================== BOOKING REFERENCE ====================

// GenerateBookingReference returns e.g. "BK-01JD3K5Q-8XYZ2ABC".
// It encodes the millisecond timestamp and 32 random bits of a UUIDv7,
// so references sort by creation time and do not collide in practice.
// The bookings table still enforces uniqueness.
func GenerateBookingReference() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	// bytes 0-5: unix ms, byte 6 carries the version nibble, 8 the variant
	var raw [10]byte
	copy(raw[:6], id[:6])
	copy(raw[6:], id[10:14])

	enc := referenceEncoding.EncodeToString(raw[:])
	return BookingReferencePrefix + enc[:8] + "-" + enc[8:]
}

// NormalizeBookingReference upper-cases a reference typed by a customer.
func NormalizeBookingReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
