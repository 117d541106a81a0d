// internal/iyzico/tokenizer.go
package iyzico

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"smartreceipt-billing/internal/common/errors"
	"smartreceipt-billing/internal/common/logger"
)

// TokenPair is the only card-derived data allowed past this package.
type TokenPair struct {
	CardToken   string `json:"cardToken"`
	CardUserKey string `json:"cardUserKey"`
}

// Tokenizer converts raw card fields into a single-use token pair.
type Tokenizer struct {
	creator CardCreator
	locale  string
	log     logger.Logger
}

func NewTokenizer(creator CardCreator, locale string, log logger.Logger) *Tokenizer {
	if locale == "" {
		locale = "tr"
	}
	return &Tokenizer{
		creator: creator,
		locale:  locale,
		log:     log,
	}
}

// Tokenize validates the card fields locally, then asks the gateway for a
// token. Validation failures short-circuit before any network call.
func (t *Tokenizer) Tokenize(ctx context.Context, fields CardFields) (*TokenPair, error) {
	if result := fields.Validate(); !result.Valid {
		t.log.Debug("card validation failed", map[string]interface{}{
			"fields": len(result.Errors),
		})
		return nil, errors.NewValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if t.creator == nil {
		return nil, errors.NewTokenizerUnavailableError()
	}

	month, year := NormalizeExpiry(fields.ExpireMonth, fields.ExpireYear)
	req := TokenRequest{
		Locale:         t.locale,
		ConversationID: uuid.New().String(),
		RegisterCard:   registerCardOff,
		CardHolderName: strings.TrimSpace(fields.HolderName),
		CardNumber:     strings.ReplaceAll(fields.Number, " ", ""),
		ExpireMonth:    month,
		ExpireYear:     year,
		CVC:            strings.TrimSpace(fields.CVC),
	}

	resp, err := t.creator.CreateToken(ctx, req)
	if err != nil {
		t.log.WithError(err).Error("tokenization call failed", map[string]interface{}{
			"card": MaskedNumber(fields.Number),
		})
		return nil, errors.NewNetworkError(err)
	}

	if resp.Status != statusSuccess {
		t.log.Warn("tokenization rejected", map[string]interface{}{
			"errorCode": resp.ErrorCode,
			"card":      MaskedNumber(fields.Number),
		})
		return nil, errors.NewTokenizationError(resp.ErrorMessage, resp.ErrorCode)
	}

	return &TokenPair{
		CardToken:   resp.CardToken,
		CardUserKey: resp.CardUserKey,
	}, nil
}
