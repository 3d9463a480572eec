package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBookingReference_FormatAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for range 10000 {
		ref := GenerateBookingReference()
		assert.Regexp(t, `^BK-[0-9A-HJKMNP-TV-Z]{8}-[0-9A-HJKMNP-TV-Z]{8}$`, ref)
		_, dup := seen[ref]
		assert.False(t, dup, ref)
		seen[ref] = struct{}{}
	}
}

func TestNormalizeBookingReference(t *testing.T) {
	ref := GenerateBookingReference()
	assert.Equal(t, ref, NormalizeBookingReference("  "+strings.ToLower(ref)+"\n"))
}
