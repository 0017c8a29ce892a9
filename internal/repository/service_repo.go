package repository

import (
	"context"

	"fundi/internal/domain"

	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
