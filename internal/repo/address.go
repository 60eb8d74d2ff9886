package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishal-1207/zapify/internal/models"
)

// GetAddress resolves an address only when it belongs to the given owner.
func (r *GormRepo) GetAddress(ctx context.Context, id, ownerID uuid.UUID) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).
		First(&a, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
