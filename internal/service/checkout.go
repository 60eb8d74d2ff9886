package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/pricing"
	"github.com/vishal-1207/zapify/internal/repo"
)

type CheckoutService struct {
	Repo      *repo.GormRepo
	Addresses AddressBook
	Events    Events

	// Now is swappable so tests can pin the deal clock.
	Now func() time.Time
}

func (s *CheckoutService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// PlaceOrder turns the shopper's full cart into a priced, stock-reserved
// order in one all-or-nothing transaction. Prices are re-resolved from the
// live offers, never taken from the cart snapshot. Any failure names the
// offending offer and rolls back every decrement already applied.
// Payment is a separate, subsequent call.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID, addressID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cartItems, err := tx.GetCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		addr, err := s.Addresses.GetAddress(ctx, addressID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("address %s: %w", addressID, ErrAddressNotFound)
		}
		if err != nil {
			return err
		}

		now := s.now()
		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cartItems))

		for _, ci := range cartItems {
			offer, err := tx.GetOffer(ctx, ci.OfferID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("offer %s: %w", ci.OfferID, ErrOfferUnavailable)
			}
			if err != nil {
				return err
			}
			if !offer.Active {
				return fmt.Errorf("offer %s is no longer listed: %w", ci.OfferID, ErrOfferUnavailable)
			}

			price, _ := pricing.EffectivePrice(offer, now)

			ok, err := tx.ReserveStock(ctx, offer.ID, ci.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("offer %s has fewer than %d in stock: %w",
					offer.ID, ci.Quantity, ErrInsufficientStock)
			}

			total = total.Add(price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
			orderItems = append(orderItems, models.OrderItem{
				OfferID:         offer.ID,
				SellerID:        offer.SellerID,
				Quantity:        ci.Quantity,
				PriceAtPurchase: price,
				Status:          models.ItemPending,
			})
		}

		o := &models.Order{
			UserID:      userID,
			Shipping:    addr.Snapshot(),
			TotalAmount: total,
			Status:      models.OrderPending,
			Items:       orderItems,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}

		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	emit(ctx, s.Events, "order_events", userID.String(), map[string]any{
		"type":     "order_created",
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.TotalAmount,
	})
	return order, nil
}

func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetUserOrder(ctx, orderID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return order, err
}

func (s *CheckoutService) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListOrders(ctx, userID, limit, offset)
}
