package repository

import (
	"context"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

type FundiRepository struct {
	db *gorm.DB
}

func NewFundiRepository(db *gorm.DB) *FundiRepository {
	return &FundiRepository{db: db}
}

func (r *FundiRepository) Create(ctx context.Context, f *domain.Fundi) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FundiRepository) GetByID(ctx context.Context, id int64) (*domain.Fundi, error) {
	var f domain.Fundi
	if err := r.db.WithContext(ctx).Preload("User").First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FundiRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Fundi, error) {
	var f domain.Fundi
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FundiRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Fundi{}).Count(&n).Error
	return n, err
}
