package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the derived payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice is the bill for one student for one billing period.
// At most one invoice exists per (student, period); the generator relies
// on the unique index rather than pre-checking. totals are fixed at
// creation, only AmountPaid/Status change afterwards, and invoices are
// never deleted.
type Invoice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID      string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	StudentID uint   `gorm:"index;uniqueIndex:uniq_invoice_student_period,priority:1" json:"student_id"`
	Period    Period `gorm:"uniqueIndex:uniq_invoice_student_period,priority:2" json:"period"`

	BaseAmount float64 `gorm:"type:decimal(15,2)" json:"base_amount"`
	Arrears    float64 `gorm:"type:decimal(15,2)" json:"arrears"`
	LateFine   float64 `gorm:"type:decimal(15,2)" json:"late_fine"`
	Discount   float64 `gorm:"type:decimal(15,2)" json:"discount"`
	TotalDue   float64 `gorm:"type:decimal(15,2)" json:"total_due"`
	AmountPaid float64 `gorm:"type:decimal(15,2)" json:"amount_paid"`

	DueDate time.Time     `gorm:"index" json:"due_date"`
	Status  InvoiceStatus `gorm:"type:varchar(20);index" json:"status"`

	// Bumped on every paid-amount update; payment recording does a
	// compare-and-swap against it to serialize concurrent payments.
	Version int `gorm:"default:0" json:"-"`

	// Relationships
	Student  Student       `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// TableName overrides the table name used by Invoice to `fee_invoices`
func (Invoice) TableName() string {
	return "fee_invoices"
}

// Balance returns the amount still owed on the invoice
func (i Invoice) Balance() float64 {
	return i.TotalDue - i.AmountPaid
}

// DeriveStatus computes the status from paid amount and due date.
// Both the payment path and the overdue sweep derive status through
// this single function so the two triggers converge.
func (i Invoice) DeriveStatus(now time.Time) InvoiceStatus {
	switch {
	case i.AmountPaid >= i.TotalDue:
		return InvoiceStatusPaid
	case i.DueDate.Before(now):
		return InvoiceStatusOverdue
	case i.AmountPaid > 0:
		return InvoiceStatusPartial
	default:
		return InvoiceStatusPending
	}
}

// InvoiceItem is one fee line on an invoice. Besides making the base
// amount auditable, items are how the generator knows a one-time fee
// has already been charged to a student.
type InvoiceItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	InvoiceID      uint    `gorm:"index" json:"invoice_id"`
	FeeStructureID uint    `gorm:"index" json:"fee_structure_id"`
	Label          string  `gorm:"type:varchar(255)" json:"label"`
	Amount         float64 `gorm:"type:decimal(15,2)" json:"amount"`
	Discount       float64 `gorm:"type:decimal(15,2)" json:"discount"`

	// Relationships
	Invoice      Invoice      `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
	FeeStructure FeeStructure `gorm:"foreignKey:FeeStructureID" json:"fee_structure,omitempty"`
}

// TableName overrides the table name used by InvoiceItem to `fee_invoice_items`
func (InvoiceItem) TableName() string {
	return "fee_invoice_items"
}
