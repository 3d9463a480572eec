package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLuhnValid(t *testing.T) {
	assert.True(t, LuhnValid("4242424242424242"))
	assert.True(t, LuhnValid("4242 4242 4242 4242"))
	assert.True(t, LuhnValid("5555-5555-5555-4444"))
	assert.False(t, LuhnValid("4242424242424241"))
	assert.False(t, LuhnValid("4242"))
	assert.False(t, LuhnValid("4242x42424242424"))
}

func TestCardExpiryValid(t *testing.T) {
	now := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)

	assert.True(t, CardExpiryValid("03/26", now))
	assert.True(t, CardExpiryValid("12/30", now))
	assert.False(t, CardExpiryValid("02/26", now))
	assert.False(t, CardExpiryValid("13/27", now))
	assert.False(t, CardExpiryValid("3/27", now))
	assert.False(t, CardExpiryValid("0327", now))
}

func TestValidateStruct_NestedFieldNames(t *testing.T) {
	type card struct {
		Number string `json:"card_number" validate:"required,luhn"`
	}
	type form struct {
		Email string `json:"email" validate:"required,email"`
		Card  card   `json:"card"`
	}

	errs := ValidateStruct(form{Email: "x", Card: card{Number: "1234567890123"}})

	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "card.card_number")
	assert.Empty(t, ValidateStruct(form{Email: "a@b.co", Card: card{Number: "4242424242424242"}}))
}

func TestFormatAmount_RoundsHalfUp(t *testing.T) {
	assert.Equal(t, "23.00", FormatAmount(decimal.RequireFromString("23")))
	assert.Equal(t, "0.32", FormatAmount(decimal.RequireFromString("0.315")))
	assert.Equal(t, "1.50", FormatAmount(decimal.RequireFromString("1.5")))
}
