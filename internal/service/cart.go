package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/guestcart"
	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/pricing"
	"github.com/vishal-1207/zapify/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Guest  GuestStore
	Events Events
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

// AddToCart validates the offer is live and in stock, snapshots its effective
// price for display continuity, and upserts keyed by (user, offer).
func (s *CartService) AddToCart(ctx context.Context, userID, offerID uuid.UUID, qty uint) (*models.CartItem, error) {
	if qty < 1 {
		qty = 1
	}

	offer, err := s.Repo.GetOffer(ctx, offerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("offer %s: %w", offerID, ErrOfferUnavailable)
	}
	if err != nil {
		return nil, err
	}
	if !offer.Active {
		return nil, fmt.Errorf("offer %s is no longer listed: %w", offerID, ErrOfferUnavailable)
	}
	if offer.StockQuantity <= 0 {
		return nil, fmt.Errorf("offer %s is out of stock: %w", offerID, ErrOfferUnavailable)
	}

	price, _ := pricing.EffectivePrice(offer, time.Now().UTC())
	item := models.CartItem{
		UserID:         userID,
		OfferID:        offerID,
		Quantity:       qty,
		UnitPriceAtAdd: price,
	}
	if err := s.Repo.AddToCart(ctx, &item); err != nil {
		return nil, err
	}

	emit(ctx, s.Events, "cart_events", userID.String(), map[string]any{
		"type":     "cart_item_added",
		"user_id":  userID,
		"offer_id": offerID,
		"quantity": item.Quantity,
	})
	return &item, nil
}

// UpdateCartItem sets an absolute quantity; zero removes the line.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, offerID uuid.UUID, qty uint) (*models.CartItem, error) {
	if qty == 0 {
		if err := s.RemoveFromCart(ctx, userID, offerID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.Repo.SetCartQuantity(ctx, userID, offerID, qty)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cart item for offer %s: %w", offerID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	emit(ctx, s.Events, "cart_events", userID.String(), map[string]any{
		"type":     "cart_item_updated",
		"user_id":  userID,
		"offer_id": offerID,
		"quantity": qty,
	})
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, offerID uuid.UUID) error {
	if err := s.Repo.RemoveFromCart(ctx, userID, offerID); err != nil {
		return err
	}
	emit(ctx, s.Events, "cart_events", userID.String(), map[string]any{
		"type":     "cart_item_removed",
		"user_id":  userID,
		"offer_id": offerID,
	})
	return nil
}

// Guest cart operations mirror the authenticated ones but are plain local
// mutations: no offer validation, matching what a device-held cart can know.

func (s *CartService) GuestCart(ctx context.Context, guestID string) (*guestcart.Cart, error) {
	return s.Guest.Get(ctx, guestID)
}

func (s *CartService) GuestAdd(ctx context.Context, guestID string, offerID uuid.UUID, qty uint) (*guestcart.Cart, error) {
	cart, err := s.Guest.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}

	// best-effort price snapshot; an unknown offer still lands in the cart
	// and gets rejected at merge or checkout
	price := decimal.Zero
	if offer, err := s.Repo.GetOffer(ctx, offerID); err == nil {
		price, _ = pricing.EffectivePrice(offer, time.Now().UTC())
	}

	cart.Upsert(offerID, qty, price)
	if err := s.Guest.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) GuestUpdate(ctx context.Context, guestID string, offerID uuid.UUID, qty uint) (*guestcart.Cart, error) {
	cart, err := s.Guest.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if !cart.SetQuantity(offerID, qty) {
		return nil, fmt.Errorf("guest cart item for offer %s: %w", offerID, ErrNotFound)
	}
	if err := s.Guest.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) GuestRemove(ctx context.Context, guestID string, offerID uuid.UUID) (*guestcart.Cart, error) {
	return s.GuestUpdate(ctx, guestID, offerID, 0)
}
