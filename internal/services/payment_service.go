package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// paymentRetries bounds the optimistic-lock retry loop when concurrent
// payments hit the same invoice
const paymentRetries = 3

// PaymentService records payments against invoices and keeps the
// invoice's paid amount and status consistent with its payment rows
type PaymentService struct {
	db             *gorm.DB
	cache          *RedisCache
	midtransClient *MidtransService
}

func NewPaymentService(db *gorm.DB, cache *RedisCache, midtransClient *MidtransService) *PaymentService {
	return &PaymentService{db: db, cache: cache, midtransClient: midtransClient}
}

// RecordPaymentInput carries one payment to be applied to an invoice
type RecordPaymentInput struct {
	InvoiceID  uint
	Amount     float64
	Date       time.Time
	Mode       models.PaymentMode
	Reference  string
	ReceivedBy string
	Notes      string
}

// RecordPayment appends an immutable payment row and applies it to the
// invoice. The insert and the invoice update commit as one transaction:
// a failure partway through leaves neither visible. Concurrent payments
// against the same invoice are serialized by a compare-and-swap on the
// invoice version, retried a bounded number of times.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !models.ValidPaymentMode(in.Mode) {
		return nil, ErrInvalidMode
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	var payment *models.Payment
	var err error
	for attempt := 0; attempt < paymentRetries; attempt++ {
		payment, err = s.tryRecordPayment(ctx, in)
		if !errors.Is(err, ErrInvoiceConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.DeletePrefix(ctx, reportCachePrefix); err != nil {
		log.Printf("Failed to invalidate report cache: %v", err)
	}
	return payment, nil
}

func (s *PaymentService) tryRecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	var payment models.Payment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, in.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}

		if in.Amount > invoice.Balance() {
			return fmt.Errorf("%w: balance is %.2f, got %.2f", ErrOverpayment, invoice.Balance(), in.Amount)
		}

		payment = models.Payment{
			InvoiceID:   invoice.ID,
			StudentID:   invoice.StudentID,
			Amount:      in.Amount,
			PaymentDate: in.Date,
			Mode:        in.Mode,
			Reference:   in.Reference,
			ReceivedBy:  in.ReceivedBy,
			Notes:       in.Notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		updated := invoice
		updated.AmountPaid = invoice.AmountPaid + in.Amount
		newStatus := updated.DeriveStatus(time.Now())

		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version).
			Updates(map[string]interface{}{
				"amount_paid": updated.AmountPaid,
				"status":      newStatus,
				"version":     invoice.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update invoice: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Someone else updated the invoice between our read and
			// write. Roll the payment back and let the caller retry.
			return ErrInvoiceConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForInvoice returns all payments recorded against an invoice
func (s *PaymentService) ListForInvoice(ctx context.Context, invoiceID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date asc").Order("id asc").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// SweepOverdue flips pending and partial invoices past their due date to
// overdue. It re-checks the paid amount inside the UPDATE and bumps the
// version, so it converges with the payment path's status derivation and
// never clobbers a concurrent payment.
func (s *PaymentService) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status IN ? AND due_date < ? AND amount_paid < total_due",
			[]models.InvoiceStatus{models.InvoiceStatusPending, models.InvoiceStatusPartial}, now).
		Updates(map[string]interface{}{
			"status":  models.InvoiceStatusOverdue,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("overdue sweep failed: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		if err := s.cache.DeletePrefix(ctx, reportCachePrefix); err != nil {
			log.Printf("Failed to invalidate report cache: %v", err)
		}
	}
	return res.RowsAffected, nil
}

// InitiateGatewayResult holds the outcome of starting or resuming a checkout
type InitiateGatewayResult struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	IsExisting  bool   `json:"is_existing"`
}

// CheckActiveSession returns the invoice's active gateway session, if any
func (s *PaymentService) CheckActiveSession(ctx context.Context, invoiceID uint) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := s.db.WithContext(ctx).
		Where("invoice_id = ? AND is_active = ?", invoiceID, true).
		Order("created_at desc").First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// InitiateGatewayPayment starts a midtrans checkout for the invoice's
// outstanding balance, reusing a still-pending session unless forceNew
// is set
func (s *PaymentService) InitiateGatewayPayment(ctx context.Context, invoice *models.Invoice, forceNew bool, callbackURL string) (*InitiateGatewayResult, error) {
	balance := invoice.Balance()
	if balance <= 0 {
		return nil, ErrSessionSettled
	}
	// Midtrans gross amounts are integral; a fractional balance would
	// silently drop the paise below, so refuse it up front.
	if balance != math.Trunc(balance) {
		return nil, fmt.Errorf("%w: outstanding balance is %.2f", ErrFractionalBalance, balance)
	}

	existing, err := s.CheckActiveSession(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		statusResp, err := s.midtransClient.CheckTransaction(existing.OrderID)
		if err == nil {
			switch statusResp.TransactionStatus {
			case "settlement", "capture":
				return nil, ErrSessionSettled
			case "deny", "expire", "cancel", "failure":
				s.deactivateSession(ctx, existing)
			default: // still pending
				if forceNew {
					s.midtransClient.CancelTransaction(existing.OrderID)
					s.deactivateSession(ctx, existing)
				} else {
					var resp snap.Response
					if err := json.Unmarshal(existing.ResponseMetadata, &resp); err == nil {
						return &InitiateGatewayResult{Token: resp.Token, RedirectURL: resp.RedirectURL, IsExisting: true}, nil
					}
					s.deactivateSession(ctx, existing)
				}
			}
		} else {
			// Status check failed, assume session is broken locally
			s.deactivateSession(ctx, existing)
		}
	}

	orderID := fmt.Sprintf("fee-invoice-%d-%d", invoice.ID, time.Now().Unix())
	amount := int64(balance)

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: invoice.Student.GuardianName,
			Email: invoice.Student.GuardianEmail,
			Phone: invoice.Student.GuardianPhone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    fmt.Sprintf("invoice-%d", invoice.ID),
				Name:  fmt.Sprintf("School fees %s - %s", invoice.Period.String(), invoice.Student.Name),
				Price: amount,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: callbackURL,
		},
	}

	resp, err := s.midtransClient.CreateTransaction(orderID, amount, req)
	if err != nil {
		return nil, err
	}

	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(resp)

	session := models.PaymentSession{
		InvoiceID:        invoice.ID,
		StudentID:        invoice.StudentID,
		PaymentGateway:   models.PaymentGatewayMidtrans,
		OrderID:          orderID,
		IsActive:         true,
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to save payment session: %w", err)
	}

	return &InitiateGatewayResult{Token: resp.Token, RedirectURL: resp.RedirectURL, IsExisting: false}, nil
}

func (s *PaymentService) deactivateSession(ctx context.Context, session *models.PaymentSession) {
	session.IsActive = false
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		log.Printf("Failed to deactivate payment session %d: %v", session.ID, err)
	}
}

// HandleGatewayNotification processes a midtrans webhook. Every payload
// is logged to gateway_events; a verified settlement records a ledger
// payment with mode "gateway". Redelivered settlements are no-ops.
func (s *PaymentService) HandleGatewayNotification(ctx context.Context, payload []byte) error {
	var notif struct {
		OrderID           string `json:"order_id"`
		TransactionStatus string `json:"transaction_status"`
	}
	if err := json.Unmarshal(payload, &notif); err != nil {
		return fmt.Errorf("invalid notification payload: %w", err)
	}

	event := models.GatewayEvent{
		PaymentGateway: models.PaymentGatewayMidtrans,
		OrderID:        notif.OrderID,
		Status:         notif.TransactionStatus,
		Metadata:       payload,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		log.Printf("Failed to log gateway event: %v", err)
	}

	var session models.PaymentSession
	err := s.db.WithContext(ctx).Where("order_id = ?", notif.OrderID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unknown order id %q", notif.OrderID)
		}
		return err
	}

	// Never trust the payload status; verify against the gateway
	statusResp, err := s.midtransClient.CheckTransaction(notif.OrderID)
	if err != nil {
		return fmt.Errorf("failed to verify transaction %s: %w", notif.OrderID, err)
	}

	switch statusResp.TransactionStatus {
	case "settlement", "capture":
		if !session.IsActive {
			return nil // already processed
		}
		amount, err := strconv.ParseFloat(statusResp.GrossAmount, 64)
		if err != nil {
			return fmt.Errorf("invalid gross amount %q: %w", statusResp.GrossAmount, err)
		}
		_, err = s.RecordPayment(ctx, RecordPaymentInput{
			InvoiceID: session.InvoiceID,
			Amount:    amount,
			Date:      time.Now(),
			Mode:      models.PaymentModeGateway,
			Reference: notif.OrderID,
			Notes:     "midtrans settlement",
		})
		if err != nil && !errors.Is(err, ErrOverpayment) {
			return err
		}
		s.deactivateSession(ctx, &session)
		return nil
	case "deny", "expire", "cancel", "failure":
		if session.IsActive {
			s.deactivateSession(ctx, &session)
		}
		return nil
	default:
		return nil // pending; nothing to do yet
	}
}
