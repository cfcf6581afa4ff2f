// Package domain contains the persisted capture records and the service
// contracts around them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	// PaymentStatusCaptured is the only reachable payment state.
	PaymentStatusCaptured = "captured"

	// OutboxStatusPending marks an event waiting for the external relay.
	// This service never writes any other outbox status.
	OutboxStatusPending = "pending"

	// EventTypePaymentCaptured tags the outbox event emitted per capture.
	EventTypePaymentCaptured = "payment_captured"
)

// Payment is the append-only capture record. Never mutated after creation.
type Payment struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	PaymentID         string          `gorm:"type:text;not null;uniqueIndex"`
	Status            string          `gorm:"type:text;not null"`
	GrossAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PlatformFeeAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	NetAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod     string          `gorm:"type:text;not null"`
	Installments      int             `gorm:"not null;default:1"`
	IdempotencyKey    *string         `gorm:"type:text;uniqueIndex"`
	RequestBody       datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// LedgerEntry is one receivable line of a capture. The entries of a payment
// collectively reproduce its calculation result exactly.
type LedgerEntry struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	PaymentRef  snowflake.ID    `gorm:"not null;index"`
	RecipientID string          `gorm:"type:text;not null"`
	Role        string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LedgerEntry) TableName() string { return "ledger_entries" }

// OutboxEvent is written in the same transaction as its payment. The
// payload embeds the payment identifier; there is no foreign key because
// the event schema belongs to the messaging boundary.
type OutboxEvent struct {
	ID          snowflake.ID   `gorm:"primaryKey"`
	Type        string         `gorm:"type:text;not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	Status      string         `gorm:"type:text;not null;default:'pending';index"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	PublishedAt *time.Time
}

// TableName sets the database table name.
func (OutboxEvent) TableName() string { return "outbox_events" }
