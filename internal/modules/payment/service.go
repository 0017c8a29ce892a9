package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundi/internal/domain"
	"fundi/internal/mpesa"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Service is the payment ledger: the only writer of Payment and Booking
// status fields. Everything else reads.
type Service struct {
	payments      paymentRepo
	bookings      bookingReader
	bookingWriter bookingStatusWriter
	gateway       chargeGateway
	callbackURL   string
	loggerf       func(format string, args ...interface{})
}

func NewService(payments paymentRepo, bookings bookingReader, bookingWriter bookingStatusWriter, gateway chargeGateway, callbackURL string, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		payments:      payments,
		bookings:      bookings,
		bookingWriter: bookingWriter,
		gateway:       gateway,
		callbackURL:   callbackURL,
		loggerf:       loggerf,
	}
}

// CreatePayment checks out a booking. The amount is always computed
// server-side from the booking's rate snapshot; callers cannot supply it.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if req.UserID > 0 && b.CustomerID != req.UserID {
		return nil, ErrNotAllowed
	}

	existing, err := s.payments.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicatePayment
	}

	switch domain.PaymentMethod(req.Method) {
	case domain.MethodCash:
		return s.createCashPayment(ctx, b)
	case domain.MethodMobileMoney:
		return s.createMobileMoneyPayment(ctx, b, req.Phone)
	default:
		return nil, ErrInvalidMethod
	}
}

func (s *Service) createCashPayment(ctx context.Context, b *domain.Booking) (*CreatePaymentResult, error) {
	now := time.Now().UTC()
	p := &domain.Payment{
		BookingID:   b.ID,
		Amount:      b.TotalCost(),
		Status:      domain.PaymentCompleted,
		Method:      domain.MethodCash,
		CompletedAt: &now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}

	if b.Status != domain.BookingCompleted {
		// Surfaced, not swallowed: the caller is still on the line and a
		// booking stuck short of completed needs their attention.
		if err := s.bookingWriter.UpdateStatus(ctx, b.ID, domain.BookingCompleted); err != nil {
			s.loggerf("level=error msg=failed to cascade booking after cash payment booking_id=%d err=%v", b.ID, err)
			return nil, err
		}
	}
	return &CreatePaymentResult{Payment: p}, nil
}

func (s *Service) createMobileMoneyPayment(ctx context.Context, b *domain.Booking, phone string) (*CreatePaymentResult, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, ErrMissingPhone
	}
	callbackURL, err := s.resolveCallbackURL()
	if err != nil {
		return nil, err
	}

	normalized := mpesa.NormalizePhone(phone)
	amount := b.TotalCost()
	reference := fmt.Sprintf("BOOKING_%d", b.ID)
	description := chargeDescription(b)

	accepted, err := s.gateway.InitiateCharge(ctx, normalized, amount, reference, description, callbackURL)
	if err != nil {
		s.loggerf("level=error msg=stk push initiation failed booking_id=%d err=%v", b.ID, err)
		return nil, err
	}

	// The checkout request id stands in as the transaction id until the
	// callback delivers the provider receipt number.
	p := &domain.Payment{
		BookingID:         b.ID,
		Amount:            amount,
		Status:            domain.PaymentPending,
		Method:            domain.MethodMobileMoney,
		TransactionID:     accepted.CheckoutRequestID,
		MerchantRequestID: accepted.MerchantRequestID,
		CheckoutRequestID: accepted.CheckoutRequestID,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePayment
		}
		return nil, err
	}

	s.loggerf("level=info msg=stk push accepted booking_id=%d merchant_request_id=%s checkout_request_id=%s",
		b.ID, accepted.MerchantRequestID, accepted.CheckoutRequestID)
	return &CreatePaymentResult{Payment: p, CustomerMessage: accepted.CustomerMessage}, nil
}

// CallbackOutcome is what the reconciler extracted from a provider callback.
type CallbackOutcome struct {
	Success       bool
	ReceiptNumber string
	Description   string
	RawBody       string
}

// ApplyCallbackOutcome drives a payment to its terminal state. Applying a
// success outcome to an already-completed payment is a no-op that still
// succeeds: the provider delivers at least once.
func (s *Service) ApplyCallbackOutcome(ctx context.Context, p *domain.Payment, outcome CallbackOutcome) error {
	if !outcome.Success {
		return s.payments.MarkFailed(ctx, p.ID, outcome.Description, outcome.RawBody)
	}

	transactionID := outcome.ReceiptNumber
	if transactionID == "" {
		transactionID = p.CheckoutRequestID
	}
	changed, err := s.payments.MarkCompletedIdempotent(ctx, p.ID, transactionID, outcome.RawBody, time.Now().UTC())
	if err != nil {
		return err
	}
	if !changed {
		s.loggerf("level=info msg=duplicate success callback ignored payment_id=%d checkout_request_id=%s", p.ID, p.CheckoutRequestID)
	}
	// Cascade runs on duplicates too: if an earlier delivery completed the
	// payment but died before the booking write, the retry repairs it.
	return s.completeBooking(ctx, p.BookingID)
}

// AdminSetStatus is the operator override. Any status is settable; moving
// into completed mirrors the automated path so manual reconciliation reaches
// the same terminal guarantees.
func (s *Service) AdminSetStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	completedAt := p.CompletedAt
	switch status {
	case domain.PaymentCompleted:
		if completedAt == nil {
			now := time.Now().UTC()
			completedAt = &now
		}
	case domain.PaymentPending, domain.PaymentFailed:
		// completed_at is non-nil only for completed payments. Refunded is the
		// one exception: the charge did settle before the money went back.
		completedAt = nil
	}
	if err := s.payments.SetStatus(ctx, p.ID, status, completedAt); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=admin payment status override payment_id=%d from=%s to=%s", p.ID, p.Status, status)

	if status == domain.PaymentCompleted {
		if err := s.completeBooking(ctx, p.BookingID); err != nil {
			return nil, err
		}
	}
	return s.payments.GetByID(ctx, paymentID)
}

// QueryStatus asks the gateway what became of a pending charge. Best effort:
// the callback remains the authoritative completion path and nothing here
// mutates ledger state.
func (s *Service) QueryStatus(ctx context.Context, paymentID int64) (*mpesa.ChargeStatus, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if p.Method != domain.MethodMobileMoney || p.CheckoutRequestID == "" {
		return nil, ErrNotQueryable
	}
	return s.gateway.QueryChargeStatus(ctx, p.CheckoutRequestID)
}

// completeBooking cascades a booking into completed. Monotonic: an already
// completed booking is left alone, and the ledger never moves a booking in
// any other direction.
func (s *Service) completeBooking(ctx context.Context, bookingID int64) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status == domain.BookingCompleted {
		return nil
	}
	return s.bookingWriter.UpdateStatus(ctx, bookingID, domain.BookingCompleted)
}

// resolveCallbackURL enforces the policy that a charge is never initiated
// without a reachable callback: the callback is the only path to completion.
func (s *Service) resolveCallbackURL() (string, error) {
	cb := strings.TrimSpace(s.callbackURL)
	if cb == "" || strings.Contains(cb, "localhost") || strings.Contains(cb, "127.0.0.1") {
		return "", ErrCallbackUnreachable
	}
	// The provider requires HTTPS.
	if strings.HasPrefix(cb, "http://") {
		cb = "https://" + strings.TrimPrefix(cb, "http://")
	}
	return cb, nil
}

func chargeDescription(b *domain.Booking) string {
	if b.Service != nil && b.Service.Name != "" {
		return fmt.Sprintf("Payment for %s - Booking #%d", b.Service.Name, b.ID)
	}
	return fmt.Sprintf("Payment for Booking #%d", b.ID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite in local/dev runs reports constraint failures by message only.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
