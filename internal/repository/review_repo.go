package repository

import (
	"context"
	"errors"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

// FindByBookingID returns (nil, nil) when the booking has no review.
func (r *ReviewRepository) FindByBookingID(ctx context.Context, bookingID int64) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Count(&n).Error
	return n, err
}
