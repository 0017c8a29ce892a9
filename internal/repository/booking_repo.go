package repository

import (
	"context"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Fundi").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Fundi").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByFundi(ctx context.Context, fundiID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("fundi_id = ?", fundiID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int64, error) {
	type row struct {
		Status domain.BookingStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.BookingStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
