// internal/iyzico/card_test.go
package iyzico

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func validCard() CardFields {
	return CardFields{
		HolderName:  "Ayse Yilmaz",
		Number:      "4111 1111 1111 1111",
		ExpireMonth: "12",
		ExpireYear:  "30",
		CVC:         "123",
	}
}

// ==========================
// Field Validation Tests
// ==========================

func TestCardFields_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*CardFields)
		wantValid  bool
		badField   string
	}{
		{
			name:      "valid card passes",
			mutate:    func(*CardFields) {},
			wantValid: true,
		},
		{
			name:      "spaces in number are stripped before length check",
			mutate:    func(c *CardFields) { c.Number = "4111 1111 1111 1111" },
			wantValid: true,
		},
		{
			name:      "13 digit number is accepted",
			mutate:    func(c *CardFields) { c.Number = "4111111111111" },
			wantValid: true,
		},
		{
			name:      "19 digit number is accepted",
			mutate:    func(c *CardFields) { c.Number = "4111111111111111111" },
			wantValid: true,
		},
		{
			name:      "12 digit number is rejected",
			mutate:    func(c *CardFields) { c.Number = "411111111111" },
			wantValid: false,
			badField:  "cardNumber",
		},
		{
			name:      "20 digit number is rejected",
			mutate:    func(c *CardFields) { c.Number = "41111111111111111111" },
			wantValid: false,
			badField:  "cardNumber",
		},
		{
			name:      "letters in number are rejected",
			mutate:    func(c *CardFields) { c.Number = "4111abcd11111111" },
			wantValid: false,
			badField:  "cardNumber",
		},
		{
			name:      "month zero is rejected",
			mutate:    func(c *CardFields) { c.ExpireMonth = "0" },
			wantValid: false,
			badField:  "expireMonth",
		},
		{
			name:      "month thirteen is rejected",
			mutate:    func(c *CardFields) { c.ExpireMonth = "13" },
			wantValid: false,
			badField:  "expireMonth",
		},
		{
			name:      "non-numeric month is rejected",
			mutate:    func(c *CardFields) { c.ExpireMonth = "ab" },
			wantValid: false,
			badField:  "expireMonth",
		},
		{
			name:      "past two-digit year is rejected",
			mutate:    func(c *CardFields) { c.ExpireYear = "20" },
			wantValid: false,
			badField:  "expireYear",
		},
		{
			name: "current year is accepted",
			mutate: func(c *CardFields) {
				c.ExpireYear = fmt.Sprintf("%02d", time.Now().Year()%100)
			},
			wantValid: true,
		},
		{
			name:      "four-digit future year is accepted",
			mutate:    func(c *CardFields) { c.ExpireYear = "2033" },
			wantValid: true,
		},
		{
			name:      "two digit cvc is rejected",
			mutate:    func(c *CardFields) { c.CVC = "12" },
			wantValid: false,
			badField:  "cvc",
		},
		{
			name:      "four digit cvc is rejected",
			mutate:    func(c *CardFields) { c.CVC = "1234" },
			wantValid: false,
			badField:  "cvc",
		},
		{
			name:      "short holder name is rejected",
			mutate:    func(c *CardFields) { c.HolderName = "Al" },
			wantValid: false,
			badField:  "cardHolderName",
		},
		{
			name:      "whitespace-only holder name is rejected",
			mutate:    func(c *CardFields) { c.HolderName = "    " },
			wantValid: false,
			badField:  "cardHolderName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := validCard()
			tt.mutate(&card)

			result := card.Validate()
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				assert.True(t, result.HasErrors(tt.badField),
					"expected an error on %s, got %v", tt.badField, result.Errors)
			}
		})
	}
}

func TestCardFields_Validate_ReportsAllFields(t *testing.T) {
	card := CardFields{
		HolderName:  "X",
		Number:      "1234",
		ExpireMonth: "13",
		ExpireYear:  "01",
		CVC:         "12345",
	}

	result := card.Validate()
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("cardNumber"))
	assert.True(t, result.HasErrors("expireMonth"))
	assert.True(t, result.HasErrors("expireYear"))
	assert.True(t, result.HasErrors("cvc"))
	assert.True(t, result.HasErrors("cardHolderName"))
}

// ==========================
// Formatting Tests
// ==========================

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"full pan groups of four", "4111111111111111", "4111 1111 1111 1111"},
		{"already formatted is unchanged", "4111 1111 1111 1111", "4111 1111 1111 1111"},
		{"partial input keeps remainder", "411111111", "4111 1111 1"},
		{"non-digit input left alone", "4111-1111", "4111-1111"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCardNumber(tt.input))
		})
	}
}

func TestFormatCardNumber_Idempotent(t *testing.T) {
	once := FormatCardNumber("4111111111111111")
	twice := FormatCardNumber(once)
	assert.Equal(t, once, twice)
}

func TestFormatCVC(t *testing.T) {
	assert.Equal(t, "123", FormatCVC("123"))
	assert.Equal(t, "123", FormatCVC("1234"))
	assert.Equal(t, "12", FormatCVC("1a2b"))
	assert.Equal(t, "", FormatCVC("abc"))
}

func TestNormalizeExpiry(t *testing.T) {
	month, year := NormalizeExpiry("3", "27")
	assert.Equal(t, "03", month)
	assert.Equal(t, "2027", year)

	month, year = NormalizeExpiry("11", "2027")
	assert.Equal(t, "11", month)
	assert.Equal(t, "2027", year)
}

func TestMaskedNumber(t *testing.T) {
	assert.Equal(t, "**** 1111", MaskedNumber("4111 1111 1111 1111"))
	assert.Equal(t, "****", MaskedNumber(""))
}
