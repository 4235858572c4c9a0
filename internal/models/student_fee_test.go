package models

import "testing"

func TestStudentFeeFinalAmount(t *testing.T) {
	tests := []struct {
		name     string
		fee      StudentFee
		discount float64
		final    float64
	}{
		{
			name:     "no discount",
			fee:      StudentFee{AssignedAmount: 5000, DiscountType: DiscountTypeNone},
			discount: 0,
			final:    5000,
		},
		{
			name:     "percent discount",
			fee:      StudentFee{AssignedAmount: 5000, DiscountType: DiscountTypePercent, DiscountValue: 20},
			discount: 1000,
			final:    4000,
		},
		{
			name:     "fixed discount",
			fee:      StudentFee{AssignedAmount: 5000, DiscountType: DiscountTypeFixed, DiscountValue: 750},
			discount: 750,
			final:    4250,
		},
		{
			name:     "full percent discount",
			fee:      StudentFee{AssignedAmount: 5000, DiscountType: DiscountTypePercent, DiscountValue: 100},
			discount: 5000,
			final:    0,
		},
		{
			name:     "fixed discount larger than amount floors at zero",
			fee:      StudentFee{AssignedAmount: 500, DiscountType: DiscountTypeFixed, DiscountValue: 800},
			discount: 800,
			final:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fee.DiscountAmount(); got != tt.discount {
				t.Errorf("DiscountAmount() = %v; want %v", got, tt.discount)
			}
			if got := tt.fee.FinalAmount(); got != tt.final {
				t.Errorf("FinalAmount() = %v; want %v", got, tt.final)
			}
		})
	}
}
