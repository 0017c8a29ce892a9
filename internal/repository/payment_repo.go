package repository

import (
	"context"
	"errors"
	"time"

	"fundi/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByBookingID returns (nil, nil) when the booking has no payment; absence
// is an answer here, not an error.
func (r *PaymentRepository) FindByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByCheckoutRequestID(ctx context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("checkout_request_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByMerchantRequestID(ctx context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).Where("merchant_request_id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompletedIdempotent moves a payment into completed exactly once. The
// row is locked for the check-then-update so concurrent duplicate callback
// deliveries cannot both pass the status check. Returns false without
// touching the row when the payment is already completed.
func (r *PaymentRepository) MarkCompletedIdempotent(ctx context.Context, id int64, transactionID, rawBody string, completedAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite has no FOR UPDATE and serializes writers on its own.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var p domain.Payment
		if err := q.First(&p, id).Error; err != nil {
			return err
		}
		if p.Status == domain.PaymentCompleted {
			changed = false
			return nil
		}
		res := tx.Model(&domain.Payment{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":            domain.PaymentCompleted,
			"transaction_id":    transactionID,
			"callback_raw_body": rawBody,
			"completed_at":      completedAt,
			"failure_reason":    "",
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("payment row not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

// MarkFailed records a failed charge. Only pending payments move to failed;
// a late or duplicated failure callback cannot undo a terminal state.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64, reason, rawBody string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ? AND status = ?", id, domain.PaymentPending).
		Updates(map[string]interface{}{
			"status":            domain.PaymentFailed,
			"failure_reason":    reason,
			"callback_raw_body": rawBody,
		}).Error
}

// SetStatus is the administrative override path; it writes whatever status
// and completed_at the ledger decided on.
func (r *PaymentRepository) SetStatus(ctx context.Context, id int64, status domain.PaymentStatus, completedAt *time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PaymentRepository) CountByStatus(ctx context.Context) (map[domain.PaymentStatus]int64, error) {
	type row struct {
		Status domain.PaymentStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.PaymentStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
