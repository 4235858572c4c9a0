package models

import (
	"testing"
	"time"
)

func TestInvoiceDeriveStatus(t *testing.T) {
	now := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		invoice  Invoice
		expected InvoiceStatus
	}{
		{
			name: "unpaid before due date",
			invoice: Invoice{
				TotalDue: 5000,
				DueDate:  time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusPending,
		},
		{
			name: "partially paid before due date",
			invoice: Invoice{
				TotalDue:   5000,
				AmountPaid: 2000,
				DueDate:    time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusPartial,
		},
		{
			name: "fully paid",
			invoice: Invoice{
				TotalDue:   5000,
				AmountPaid: 5000,
				DueDate:    time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusPaid,
		},
		{
			name: "unpaid past due date",
			invoice: Invoice{
				TotalDue: 5000,
				DueDate:  time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusOverdue,
		},
		{
			name: "partially paid past due date stays overdue",
			invoice: Invoice{
				TotalDue:   5000,
				AmountPaid: 2000,
				DueDate:    time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusOverdue,
		},
		{
			name: "paid past due date is still paid",
			invoice: Invoice{
				TotalDue:   5000,
				AmountPaid: 5000,
				DueDate:    time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusPaid,
		},
		{
			name: "zero total is paid",
			invoice: Invoice{
				TotalDue: 0,
				DueDate:  time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			},
			expected: InvoiceStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.invoice.DeriveStatus(now)
			if got != tt.expected {
				t.Errorf("DeriveStatus() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestInvoiceBalance(t *testing.T) {
	inv := Invoice{TotalDue: 5400, AmountPaid: 2000}
	if got := inv.Balance(); got != 3400 {
		t.Errorf("Balance() = %v; want 3400", got)
	}
}
