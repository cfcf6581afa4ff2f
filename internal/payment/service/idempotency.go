package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/smallbiznis/splitpay/internal/payment/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type idempotencyDecision int

const (
	decisionProceed idempotencyDecision = iota
	decisionReplay
	decisionConflict
)

// idempotencyCoordinator decides, per (key, payload) pair, whether a capture
// is fresh, a replay of a prior one, or a conflicting reuse of the key.
type idempotencyCoordinator struct {
	repo       domain.Repository
	requireKey bool
}

func newIdempotencyCoordinator(repo domain.Repository, requireKey bool) *idempotencyCoordinator {
	return &idempotencyCoordinator{repo: repo, requireKey: requireKey}
}

func (c *idempotencyCoordinator) Decide(ctx context.Context, db *gorm.DB, req domain.CaptureRequest) (idempotencyDecision, *domain.Payment, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		if c.requireKey {
			return decisionProceed, nil, domain.ErrIdempotencyKeyRequired
		}
		// Permissive mode: a fresh, non-deduplicated capture.
		return decisionProceed, nil, nil
	}

	prior, err := c.repo.FindByIdempotencyKey(ctx, db, key)
	if err != nil {
		return decisionProceed, nil, err
	}
	if prior == nil {
		return decisionProceed, nil, nil
	}
	if matchesStoredRequest(prior.RequestBody, req) {
		return decisionReplay, prior, nil
	}
	return decisionConflict, prior, nil
}

// canonicalRequest is the normalized form persisted with each payment and
// used for structural payload comparison: method case and amount scale are
// normalized so that semantically equal requests never conflict, while
// splits stay order-sensitive.
type canonicalRequest struct {
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"payment_method"`
	Installments  int              `json:"installments"`
	Splits        []canonicalSplit `json:"splits"`
}

type canonicalSplit struct {
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role"`
	Percent     int    `json:"percent"`
}

func canonicalize(req domain.CaptureRequest) canonicalRequest {
	splits := make([]canonicalSplit, len(req.Splits))
	for i, split := range req.Splits {
		splits[i] = canonicalSplit{
			RecipientID: split.RecipientID,
			Role:        split.Role,
			Percent:     split.Percent,
		}
	}
	return canonicalRequest{
		Amount:        req.Amount.StringFixed(2),
		Currency:      req.Currency,
		PaymentMethod: strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		Installments:  req.Installments,
		Splits:        splits,
	}
}

func canonicalBody(req domain.CaptureRequest) (datatypes.JSON, error) {
	body, err := json.Marshal(canonicalize(req))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(body), nil
}

func matchesStoredRequest(stored datatypes.JSON, req domain.CaptureRequest) bool {
	var prior canonicalRequest
	if err := json.Unmarshal(stored, &prior); err != nil {
		// Unreadable stored payload is treated as a conflict, never as a
		// silent replay.
		return false
	}
	return equalCanonical(prior, canonicalize(req))
}

func equalCanonical(a, b canonicalRequest) bool {
	if a.Amount != b.Amount ||
		a.Currency != b.Currency ||
		a.PaymentMethod != b.PaymentMethod ||
		a.Installments != b.Installments ||
		len(a.Splits) != len(b.Splits) {
		return false
	}
	for i := range a.Splits {
		if a.Splits[i] != b.Splits[i] {
			return false
		}
	}
	return true
}
