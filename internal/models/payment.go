package models

import (
	"time"
)

// PaymentMode represents the channel a payment came through
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeGateway      PaymentMode = "gateway"
)

// ValidPaymentMode reports whether m is a supported payment mode
func ValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentModeCash, PaymentModeBankTransfer, PaymentModeCheque, PaymentModeGateway:
		return true
	}
	return false
}

// Payment records money received against an invoice. Rows are append-only:
// there is no update or delete path, and the model deliberately carries no
// soft-delete column. Corrections are made with new entries.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint `gorm:"index" json:"invoice_id"`
	StudentID uint `gorm:"index" json:"student_id"`

	Amount      float64     `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentDate time.Time   `gorm:"index" json:"payment_date"`
	Mode        PaymentMode `gorm:"type:varchar(20)" json:"mode"`
	Reference   string      `gorm:"type:varchar(100)" json:"reference"`
	ReceivedBy  string      `gorm:"type:varchar(255)" json:"received_by"`
	Notes       string      `gorm:"type:text" json:"notes"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// TableName overrides the table name used by Payment to `fee_payments`
func (Payment) TableName() string {
	return "fee_payments"
}
