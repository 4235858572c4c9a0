package models

import (
	"time"

	"gorm.io/gorm"
)

// FeeFrequency represents how often a fee structure is billed
type FeeFrequency string

const (
	FeeFrequencyOneTime   FeeFrequency = "onetime"
	FeeFrequencyMonthly   FeeFrequency = "monthly"
	FeeFrequencyQuarterly FeeFrequency = "quarterly"
	FeeFrequencyYearly    FeeFrequency = "yearly"
)

// ValidFrequency reports whether f is one of the supported billing frequencies
func ValidFrequency(f FeeFrequency) bool {
	switch f {
	case FeeFrequencyOneTime, FeeFrequencyMonthly, FeeFrequencyQuarterly, FeeFrequencyYearly:
		return true
	}
	return false
}

// FeeStructure is a named fee head from the fee catalog
type FeeStructure struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name      string       `gorm:"type:varchar(255)" json:"name"`
	Amount    float64      `gorm:"type:decimal(15,2)" json:"amount"`
	Frequency FeeFrequency `gorm:"type:varchar(20);default:'monthly'" json:"frequency"`
	Category  string       `gorm:"type:varchar(100)" json:"category"`

	// Class names this fee applies to. Empty means every class.
	ApplicableClasses []string `gorm:"serializer:json" json:"applicable_classes"`

	// Relationships
	StudentFees []StudentFee `gorm:"foreignKey:FeeStructureID" json:"student_fees,omitempty"`
}

// AppliesToClass reports whether this fee covers the given class
func (f FeeStructure) AppliesToClass(class string) bool {
	if len(f.ApplicableClasses) == 0 {
		return true
	}
	for _, c := range f.ApplicableClasses {
		if c == class {
			return true
		}
	}
	return false
}

// BillsIn reports whether a recurring fee falls due in period p.
// Quarterly and yearly fees are anchored to the first month of the
// academic year. One-time fees never match here; the generator bills
// them once based on invoice history instead.
func (f FeeStructure) BillsIn(p Period, yearStart time.Month) bool {
	switch f.Frequency {
	case FeeFrequencyMonthly:
		return true
	case FeeFrequencyQuarterly:
		return (int(p.Month)-int(yearStart)+12)%3 == 0
	case FeeFrequencyYearly:
		return p.Month == yearStart
	}
	return false
}
