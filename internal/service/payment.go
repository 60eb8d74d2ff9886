package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/gateway"
	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/repo"
)

// Webhook outcomes as delivered by the gateway.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

type PaymentService struct {
	Repo     *repo.GormRepo
	Gateway  gateway.Gateway
	Events   Events
	Currency string
}

// CreateIntent opens a payment attempt for an order. Exactly one payment row
// exists per order: a duplicate request while an intent is still pending gets
// the existing intent back instead of an error, a settled payment is a
// conflict, and only a failed attempt may be re-opened.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID uuid.UUID) (*models.Payment, error) {
	order, err := s.Repo.GetUserOrder(ctx, orderID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled || order.Status == models.OrderRefunded {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, ErrInvalidTransition)
	}

	existing, lookupErr := s.Repo.GetPaymentForOrder(ctx, orderID)
	if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return nil, lookupErr
	}
	if lookupErr == nil {
		switch existing.Status {
		case models.PaymentPending:
			return existing, nil
		case models.PaymentFailed:
			// only a failed attempt may be re-opened
		default:
			return nil, fmt.Errorf("order %s: %w", orderID, ErrPaymentIntentConflict)
		}
	}

	var payment *models.Payment
	if lookupErr == nil {
		// The failed attempt gave the reservation back, so retrying the
		// payment must win it again before the order can settle. Reserving
		// inside the transaction means a gateway error rolls the decrements
		// back too.
		txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
			for _, it := range order.Items {
				if it.Status != models.ItemPending {
					continue
				}
				ok, err := tx.ReserveStock(ctx, it.OfferID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("offer %s: need %d: %w",
						it.OfferID, it.Quantity, ErrInsufficientStock)
				}
			}

			intent, err := s.Gateway.CreateIntent(ctx, order.TotalAmount, s.Currency, map[string]string{
				"order_id": orderID.String(),
			})
			if err != nil {
				return err
			}

			// re-open the failed attempt in place, keeping the 1:1 link
			existing.Status = models.PaymentPending
			existing.Amount = order.TotalAmount
			existing.Currency = s.Currency
			existing.GatewayPaymentID = intent.ID
			existing.ClientSecret = intent.ClientSecret
			existing.GatewayTransactionID = nil
			existing.GatewayResponse = ""
			return tx.SavePayment(ctx, existing)
		})
		if txErr != nil {
			return nil, txErr
		}
		payment = existing
	} else {
		intent, err := s.Gateway.CreateIntent(ctx, order.TotalAmount, s.Currency, map[string]string{
			"order_id": orderID.String(),
		})
		if err != nil {
			return nil, err
		}

		payment = &models.Payment{
			OrderID:          orderID,
			Amount:           order.TotalAmount,
			Currency:         s.Currency,
			Status:           models.PaymentPending,
			GatewayPaymentID: intent.ID,
			ClientSecret:     intent.ClientSecret,
		}
		if err := s.Repo.CreatePayment(ctx, payment); err != nil {
			return nil, err
		}
	}

	emit(ctx, s.Events, "payment_events", orderID.String(), map[string]any{
		"type":       "payment_intent_created",
		"order_id":   orderID,
		"payment_id": payment.ID,
		"amount":     payment.Amount,
	})
	return payment, nil
}

// GatewayResult is an asynchronous outcome as delivered by the gateway
// callback. GatewayPaymentID must name the intent it settles.
type GatewayResult struct {
	GatewayPaymentID string
	Outcome          string
	TransactionID    string
	Payload          string
}

// HandleResult applies an asynchronous gateway outcome. A result naming a
// gateway payment id other than the stored intent's is rejected, so a caller
// cannot settle or fail an order without knowing the intent it was issued.
// The handler is idempotent: a replayed webhook for an already-settled payment
// is a no-op, so items never transition twice and stock is never released
// twice.
func (s *PaymentService) HandleResult(ctx context.Context, orderID uuid.UUID, res GatewayResult) error {
	var applied bool

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		payment, err := tx.GetPaymentForOrder(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("payment for order %s: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		if res.GatewayPaymentID != payment.GatewayPaymentID {
			return fmt.Errorf("gateway payment id does not match the intent for order %s: %w",
				orderID, ErrValidation)
		}

		switch res.Outcome {
		case OutcomeSucceeded:
			if payment.Status == models.PaymentSucceeded || payment.Status == models.PaymentRefunded {
				return nil // replay
			}
			if payment.Status != models.PaymentPending {
				return fmt.Errorf("payment %s is %s: %w", payment.ID, payment.Status, ErrInvalidTransition)
			}

			payment.Status = models.PaymentSucceeded
			if res.TransactionID != "" {
				txID := res.TransactionID
				payment.GatewayTransactionID = &txID
			}
			payment.GatewayResponse = res.Payload
			if err := tx.SavePayment(ctx, payment); err != nil {
				return err
			}

			order, err := tx.GetOrder(ctx, orderID)
			if err != nil {
				return err
			}
			for i := range order.Items {
				if order.Items[i].Status != models.ItemPending {
					continue
				}
				order.Items[i].Status = models.ItemProcessing
				if err := tx.SaveOrderItem(ctx, &order.Items[i]); err != nil {
					return err
				}
			}
			if _, err := tx.SyncOrderStatus(ctx, orderID); err != nil {
				return err
			}

		case OutcomeFailed:
			if payment.Status == models.PaymentFailed {
				return nil // replay
			}
			if payment.Status != models.PaymentPending {
				return fmt.Errorf("payment %s is %s: %w", payment.ID, payment.Status, ErrInvalidTransition)
			}

			payment.Status = models.PaymentFailed
			payment.GatewayResponse = res.Payload
			if err := tx.SavePayment(ctx, payment); err != nil {
				return err
			}

			// the reservation was never paid for; give it back
			order, err := tx.GetOrder(ctx, orderID)
			if err != nil {
				return err
			}
			for _, it := range order.Items {
				if it.Status != models.ItemPending {
					continue
				}
				if err := tx.ReleaseStock(ctx, it.OfferID, it.Quantity); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("unknown payment outcome %q: %w", res.Outcome, ErrValidation)
		}

		applied = true
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if applied {
		emit(ctx, s.Events, "payment_events", orderID.String(), map[string]any{
			"type":     "payment_" + res.Outcome,
			"order_id": orderID,
		})
	}
	return nil
}
