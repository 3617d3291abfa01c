package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerEntryType enumerates the money movements the ledger records.
type LedgerEntryType string

const (
	LedgerEntryTypePurchase LedgerEntryType = "purchase"
	LedgerEntryTypeTopUp    LedgerEntryType = "topup"
	LedgerEntryTypeRefund   LedgerEntryType = "refund"
)

// IsValid reports whether the type is one of the known ledger entry types.
func (t LedgerEntryType) IsValid() bool {
	switch t {
	case LedgerEntryTypePurchase, LedgerEntryTypeTopUp, LedgerEntryTypeRefund:
		return true
	}
	return false
}

// LedgerEntry records an immutable money lifecycle event for a customer.
type LedgerEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID      `gorm:"column:order_id;type:uuid"`
	Type        LedgerEntryType `gorm:"column:type;not null"`
	AmountCents int             `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
