package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/repo"
)

// FulfillmentService owns order and line-item status transitions triggered by
// sellers (ship, deliver), shoppers (cancel, return) and return approvals.
// Every mutation re-derives the order's roll-up inside the same transaction.
type FulfillmentService struct {
	Repo         *repo.GormRepo
	Events       Events
	ReturnWindow time.Duration

	Now func() time.Time
}

func (s *FulfillmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// CancelOrder cancels every item of a not-yet-shipped order and releases the
// reserved stock. An order with any item already shipped cannot be cancelled
// as a whole.
func (s *FulfillmentService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*models.Order, error) {
	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetUserOrder(ctx, orderID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		for _, it := range o.Items {
			if !models.CanTransition(it.Status, models.ItemCancelled) {
				return fmt.Errorf("item %s is %s: %w", it.ID, it.Status, ErrInvalidTransition)
			}
		}

		for i := range o.Items {
			o.Items[i].Status = models.ItemCancelled
			if err := tx.SaveOrderItem(ctx, &o.Items[i]); err != nil {
				return err
			}
			if err := tx.ReleaseStock(ctx, o.Items[i].OfferID, o.Items[i].Quantity); err != nil {
				return err
			}
		}

		o.Status = models.OrderCancelled
		if err := tx.SetOrderStatus(ctx, o.ID, o.Status); err != nil {
			return err
		}

		// A paid order cancelled before shipment owes the shopper their
		// money back.
		payment, err := tx.GetPaymentForOrder(ctx, o.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && payment.Status == models.PaymentSucceeded {
			payment.Status = models.PaymentRefunded
			if err := tx.SavePayment(ctx, payment); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	emit(ctx, s.Events, "order_events", orderID.String(), map[string]any{
		"type":     "order_cancelled",
		"order_id": orderID,
		"user_id":  userID,
		"reason":   reason,
	})
	return order, nil
}

// RequestReturn moves every delivered item of the order to return_requested,
// provided delivery happened inside the return window.
func (s *FulfillmentService) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*models.Order, error) {
	var order *models.Order
	now := s.now()

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetUserOrder(ctx, orderID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		requested := 0
		for i := range o.Items {
			if o.Items[i].Status != models.ItemDelivered {
				continue
			}
			if o.Items[i].DeliveredAt == nil || now.Sub(*o.Items[i].DeliveredAt) > s.ReturnWindow {
				return fmt.Errorf("item %s: %w", o.Items[i].ID, ErrReturnWindowClosed)
			}
			o.Items[i].Status = models.ItemReturnRequested
			if err := tx.SaveOrderItem(ctx, &o.Items[i]); err != nil {
				return err
			}
			requested++
		}
		if requested == 0 {
			return fmt.Errorf("order %s has no delivered items: %w", orderID, ErrInvalidTransition)
		}

		if _, err := tx.SyncOrderStatus(ctx, o.ID); err != nil {
			return err
		}
		order, err = tx.GetUserOrder(ctx, orderID, userID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	emit(ctx, s.Events, "order_events", orderID.String(), map[string]any{
		"type":     "return_requested",
		"order_id": orderID,
		"user_id":  userID,
		"reason":   reason,
	})
	return order, nil
}

// ApproveReturn settles a requested return: items become refunded and the
// captured payment is compensated exactly once. Returned goods are presumed
// non-resalable, so stock is not restored.
func (s *FulfillmentService) ApproveReturn(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		refunded := 0
		for i := range o.Items {
			if o.Items[i].Status != models.ItemReturnRequested {
				continue
			}
			o.Items[i].Status = models.ItemRefunded
			if err := tx.SaveOrderItem(ctx, &o.Items[i]); err != nil {
				return err
			}
			refunded++
		}
		if refunded == 0 {
			return fmt.Errorf("order %s has no return requests: %w", orderID, ErrInvalidTransition)
		}

		payment, err := tx.GetPaymentForOrder(ctx, orderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && payment.Status == models.PaymentSucceeded {
			payment.Status = models.PaymentRefunded
			if err := tx.SavePayment(ctx, payment); err != nil {
				return err
			}
		}

		if _, err := tx.SyncOrderStatus(ctx, o.ID); err != nil {
			return err
		}
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	emit(ctx, s.Events, "order_events", orderID.String(), map[string]any{
		"type":     "return_approved",
		"order_id": orderID,
	})
	return order, nil
}

// UpdateItemStatus is the seller-facing transition: forward moves along the
// fulfillment chain only (processing -> shipped -> delivered), restricted to
// the seller who owns the line.
func (s *FulfillmentService) UpdateItemStatus(ctx context.Context, sellerID, itemID uuid.UUID, status models.OrderItemStatus) (*models.OrderItem, error) {
	if status != models.ItemShipped && status != models.ItemDelivered {
		return nil, fmt.Errorf("sellers may only move items to shipped or delivered: %w", ErrInvalidTransition)
	}

	var item *models.OrderItem

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		it, err := tx.GetOrderItem(ctx, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order item %s: %w", itemID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if it.SellerID != sellerID {
			return fmt.Errorf("order item %s: %w", itemID, ErrNotFound)
		}
		if !models.CanTransition(it.Status, status) {
			return fmt.Errorf("item %s cannot go %s -> %s: %w", it.ID, it.Status, status, ErrInvalidTransition)
		}

		it.Status = status
		if status == models.ItemDelivered {
			t := s.now()
			it.DeliveredAt = &t
		}
		if err := tx.SaveOrderItem(ctx, it); err != nil {
			return err
		}
		if _, err := tx.SyncOrderStatus(ctx, it.OrderID); err != nil {
			return err
		}
		item = it
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	emit(ctx, s.Events, "order_events", item.OrderID.String(), map[string]any{
		"type":     "order_item_" + string(status),
		"order_id": item.OrderID,
		"item_id":  item.ID,
	})
	return item, nil
}
