package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart upserts keyed by (user, offer): a duplicate add increments the
// existing quantity instead of creating a second row. The price snapshot of
// the first add is kept.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND offer_id = ?", item.UserID, item.OfferID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND offer_id = ?", item.UserID, item.OfferID).
				First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, offerID uuid.UUID, qty uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND offer_id = ?", userID, offerID).
		First(&item).Error; err != nil {
		return nil, err
	}
	item.Quantity = qty
	if err := r.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, offerID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND offer_id = ?", userID, offerID).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
