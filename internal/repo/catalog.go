package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetOffer(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var o models.Offer
	if err := r.DB.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ActiveOffersForProduct(ctx context.Context, productID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	if err := r.DB.WithContext(ctx).
		Where("product_id = ? AND active", productID).
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *GormRepo) SaveOffer(ctx context.Context, offer *models.Offer) error {
	return r.DB.WithContext(ctx).Save(offer).Error
}

// ReserveStock performs the conditional decrement that keeps concurrent
// checkouts from overselling: the row is only touched while enough stock
// remains, so two competing orders serialize at the database.
func (r *GormRepo) ReserveStock(ctx context.Context, offerID uuid.UUID, qty uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ? AND stock_quantity >= ?", offerID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseStock gives a reservation back, used when a payment fails or an item
// is cancelled before shipping.
func (r *GormRepo) ReleaseStock(ctx context.Context, offerID uuid.UUID, qty uint) error {
	return r.DB.WithContext(ctx).Model(&models.Offer{}).
		Where("id = ?", offerID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}
