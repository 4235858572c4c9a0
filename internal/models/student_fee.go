package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType represents how a student fee discount is expressed
type DiscountType string

const (
	DiscountTypeNone    DiscountType = "none"
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// StudentFee links a student to a fee structure, optionally overriding
// the catalog amount and applying a discount
type StudentFee struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	StudentID      uint `gorm:"index;uniqueIndex:uniq_student_fee,priority:1" json:"student_id"`
	FeeStructureID uint `gorm:"index;uniqueIndex:uniq_student_fee,priority:2" json:"fee_structure_id"`

	AssignedAmount float64      `gorm:"type:decimal(15,2)" json:"assigned_amount"`
	DiscountType   DiscountType `gorm:"type:varchar(20);default:'none'" json:"discount_type"`
	DiscountValue  float64      `gorm:"type:decimal(15,2)" json:"discount_value"`
	DiscountReason string       `gorm:"type:varchar(255)" json:"discount_reason"`

	// Relationships
	Student      Student      `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	FeeStructure FeeStructure `gorm:"foreignKey:FeeStructureID" json:"fee_structure,omitempty"`
}

// DiscountAmount returns the absolute discount applied to the assigned amount
func (sf StudentFee) DiscountAmount() float64 {
	switch sf.DiscountType {
	case DiscountTypePercent:
		return sf.AssignedAmount * sf.DiscountValue / 100
	case DiscountTypeFixed:
		return sf.DiscountValue
	}
	return 0
}

// FinalAmount returns assigned amount minus discount, floored at zero
func (sf StudentFee) FinalAmount() float64 {
	final := sf.AssignedAmount - sf.DiscountAmount()
	if final < 0 {
		return 0
	}
	return final
}
