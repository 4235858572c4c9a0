package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is the roster projection the billing core works against.
// Full student administration lives in the main dashboard; billing only
// needs the class (for fee applicability), selectors and guardian contacts.
type Student struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name          string `gorm:"type:varchar(255)" json:"name"`
	AdmissionNo   string `gorm:"type:varchar(50);uniqueIndex" json:"admission_no"`
	ClassName     string `gorm:"type:varchar(100);index" json:"class_name"`
	GuardianName  string `gorm:"type:varchar(255)" json:"guardian_name"`
	GuardianPhone string `gorm:"type:varchar(50)" json:"guardian_phone"`
	GuardianEmail string `gorm:"type:varchar(255)" json:"guardian_email"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	StudentFees []StudentFee `gorm:"foreignKey:StudentID" json:"student_fees,omitempty"`
	Invoices    []Invoice    `gorm:"foreignKey:StudentID" json:"invoices,omitempty"`
	Payments    []Payment    `gorm:"foreignKey:StudentID" json:"payments,omitempty"`
}
