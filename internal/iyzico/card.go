// internal/iyzico/card.go
package iyzico

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"smartreceipt-billing/internal/common/validation"
)

// CardFields holds the raw card form input. Raw values never leave this
// package except as a token pair.
type CardFields struct {
	HolderName  string `json:"cardHolderName"`
	Number      string `json:"cardNumber"`
	ExpireMonth string `json:"expireMonth"`
	ExpireYear  string `json:"expireYear"`
	CVC         string `json:"cvc"`
}

const (
	minCardDigits = 13
	maxCardDigits = 19
	cvcDigits     = 3
	minHolderName = 3
)

// Validate runs every field check synchronously. It performs no network I/O
// and reports all failing fields at once.
func (f CardFields) Validate() *validation.ValidationResult {
	var errs []validation.ValidationError

	number := validation.StripSpaces(f.Number)
	if e := validation.RequireDigitsLen("cardNumber", number, minCardDigits, maxCardDigits); e != nil {
		errs = append(errs, *e)
	}

	month, err := strconv.Atoi(strings.TrimSpace(f.ExpireMonth))
	if err != nil {
		errs = append(errs, validation.ValidationError{
			Field:   "expireMonth",
			Message: "month must be a number",
			Code:    "INVALID_TYPE",
		})
	} else if e := validation.RequireIntRange("expireMonth", month, 1, 12); e != nil {
		errs = append(errs, *e)
	}

	if e := validateExpireYear(f.ExpireYear, time.Now()); e != nil {
		errs = append(errs, *e)
	}

	if e := validation.RequireExactDigits("cvc", strings.TrimSpace(f.CVC), cvcDigits); e != nil {
		errs = append(errs, *e)
	}

	if e := validation.RequireMinLength("cardHolderName", f.HolderName, minHolderName); e != nil {
		errs = append(errs, *e)
	}

	return validation.NewResult(errs)
}

// validateExpireYear compares the two-digit year against the current
// two-digit year. Four-digit input is reduced before comparison.
func validateExpireYear(raw string, now time.Time) *validation.ValidationError {
	year := strings.TrimSpace(raw)
	if !validation.IsDigits(year) || (len(year) != 2 && len(year) != 4) {
		return &validation.ValidationError{
			Field:   "expireYear",
			Message: "year must be 2 or 4 digits",
			Code:    "INVALID_LENGTH",
		}
	}

	val, _ := strconv.Atoi(year)
	if len(year) == 4 {
		val = val % 100
	}
	if val < now.Year()%100 {
		return &validation.ValidationError{
			Field:   "expireYear",
			Message: "card has expired",
			Code:    "EXPIRED",
		}
	}
	return nil
}

// FormatCardNumber renders the number as space-separated groups of four
// digits. Formatting an already formatted number yields the same output.
func FormatCardNumber(number string) string {
	digits := validation.StripSpaces(number)
	if !validation.IsDigits(digits) || len(digits) > maxCardDigits {
		return number
	}

	var groups []string
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// FormatCVC strips non-digit input and truncates to the CVC length.
func FormatCVC(cvc string) string {
	var b strings.Builder
	for _, r := range cvc {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() == cvcDigits {
			break
		}
	}
	return b.String()
}

// NormalizeExpiry converts form month/year input to the wire shape the
// gateway expects: zero-padded month and a four-digit year.
func NormalizeExpiry(month, year string) (string, string) {
	m := strings.TrimSpace(month)
	if len(m) == 1 {
		m = "0" + m
	}

	y := strings.TrimSpace(year)
	if len(y) == 2 {
		y = "20" + y
	}
	return m, y
}

// MaskedNumber returns a log-safe rendering keeping only the last four digits.
func MaskedNumber(number string) string {
	digits := validation.StripSpaces(number)
	if len(digits) < 4 {
		return "****"
	}
	return fmt.Sprintf("**** %s", digits[len(digits)-4:])
}
