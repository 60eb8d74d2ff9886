package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/pricing"
	"github.com/vishal-1207/zapify/internal/repo"
)

// OfferService covers the thin catalog surface the pipeline itself needs:
// seller offer upserts (so deal invariants are enforced at write time) and
// the display-side price resolution.
type OfferService struct {
	Repo *repo.GormRepo

	Now func() time.Time
}

func (s *OfferService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *OfferService) UpsertOffer(ctx context.Context, sellerID uuid.UUID, offer *models.Offer) (*models.Offer, error) {
	if offer.ProductID == uuid.Nil {
		return nil, fmt.Errorf("product_id required: %w", ErrValidation)
	}
	if !offer.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if offer.StockQuantity < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", ErrValidation)
	}
	if err := offer.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrValidation)
	}

	if offer.ID != uuid.Nil {
		existing, err := s.Repo.GetOffer(ctx, offer.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("offer %s: %w", offer.ID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if existing.SellerID != sellerID {
			return nil, fmt.Errorf("offer %s: %w", offer.ID, ErrNotFound)
		}
	}
	offer.SellerID = sellerID

	if err := s.Repo.SaveOffer(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// ResolveProductPrice is the display consumer of the single pricing source of
// truth: the same resolver checkout re-validates against.
func (s *OfferService) ResolveProductPrice(ctx context.Context, productID uuid.UUID) (*pricing.Resolution, error) {
	product, err := s.Repo.GetProduct(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	offers, err := s.Repo.ActiveOffersForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	res := pricing.ResolveBestOffer(product, offers, s.now())
	return &res, nil
}
