package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*Payment, error)
	FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*Payment, error)
	ListLedgerEntries(ctx context.Context, db *gorm.DB, paymentRef snowflake.ID) ([]LedgerEntry, error)
	FindOutboxEventByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*OutboxEvent, error)
	// CreateWithOutbox persists the payment, its ledger entries and the
	// pending outbox event as one transaction. No partial state is ever
	// visible. This is the sole producer of outbox rows.
	CreateWithOutbox(ctx context.Context, db *gorm.DB, payment *Payment, entries []LedgerEntry, event *OutboxEvent) error
}
