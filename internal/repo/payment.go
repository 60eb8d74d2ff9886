package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishal-1207/zapify/internal/models"
)

func (r *GormRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.DB.WithContext(ctx).First(&p, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) SavePayment(ctx context.Context, p *models.Payment) error {
	return r.DB.WithContext(ctx).Save(p).Error
}
