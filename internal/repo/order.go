package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishal-1207/zapify/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetUserOrder(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrderItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.DB.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) SaveOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

// SyncOrderStatus re-derives the roll-up from the order's items and persists
// it. Call inside the same transaction that changed the items.
func (r *GormRepo) SyncOrderStatus(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error) {
	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return "", err
	}
	status := models.RollUpStatus(items)
	if err := r.SetOrderStatus(ctx, orderID, status); err != nil {
		return "", err
	}
	return status, nil
}
