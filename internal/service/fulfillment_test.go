package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishal-1207/zapify/internal/models"
)

// paidOrder runs checkout and a successful payment so items sit in processing.
func paidOrder(t *testing.T, e *env, userID uuid.UUID, offer *models.Offer, qty uint) *models.Order {
	t.Helper()
	ctx := context.Background()

	order := e.placeOrder(t, userID, offer, qty)
	payment, err := e.payment.CreateIntent(ctx, userID, order.ID)
	require.NoError(t, err)
	require.NoError(t, e.payment.HandleResult(ctx, order.ID, succeededFor(payment, "tx_"+order.ID.String(), `{}`)))

	got, err := e.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	return got
}

func TestCancelOrder_ReleasesStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 2)
	require.Equal(t, 3, e.stockOf(t, offer.ID))

	cancelled, err := e.fulfillment.CancelOrder(ctx, userID, order.ID, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	for _, it := range cancelled.Items {
		assert.Equal(t, models.ItemCancelled, it.Status)
	}
	assert.Equal(t, 5, e.stockOf(t, offer.ID))
}

func TestCancelOrder_PaidOrderRefundsPayment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 2)

	_, err := e.fulfillment.CancelOrder(ctx, userID, order.ID, "changed my mind")
	require.NoError(t, err)

	payment, err := e.repo.GetPaymentForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, payment.Status)
}

func TestCancelOrder_UnpaidOrderLeavesPaymentAlone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := e.placeOrder(t, userID, offer, 1)
	_, err := e.payment.CreateIntent(ctx, userID, order.ID)
	require.NoError(t, err)

	_, err = e.fulfillment.CancelOrder(ctx, userID, order.ID, "never paid")
	require.NoError(t, err)

	payment, err := e.repo.GetPaymentForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestCancelOrder_RejectedOnceShipped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)

	_, err := e.fulfillment.UpdateItemStatus(ctx, offer.SellerID, order.Items[0].ID, models.ItemShipped)
	require.NoError(t, err)

	_, err = e.fulfillment.CancelOrder(ctx, userID, order.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelOrder_ForeignOrderIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)

	_, err := e.fulfillment.CancelOrder(ctx, uuid.New(), order.ID, "not mine")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItemStatus_ForwardChainAndRollUp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)
	itemID := order.Items[0].ID

	item, err := e.fulfillment.UpdateItemStatus(ctx, offer.SellerID, itemID, models.ItemShipped)
	require.NoError(t, err)
	assert.Equal(t, models.ItemShipped, item.Status)

	got, err := e.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)

	item, err = e.fulfillment.UpdateItemStatus(ctx, offer.SellerID, itemID, models.ItemDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.ItemDelivered, item.Status)
	require.NotNil(t, item.DeliveredAt)

	got, err = e.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.Status)
}

func TestUpdateItemStatus_TwoSellerOrderRollsUpConservatively(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	fast := e.seedOffer(t, "10.00", 5)
	slow := e.seedOffer(t, "20.00", 5)

	_, err := e.cart.AddToCart(ctx, userID, fast.ID, 1)
	require.NoError(t, err)
	_, err = e.cart.AddToCart(ctx, userID, slow.ID, 1)
	require.NoError(t, err)
	addr := e.seedAddress(t, userID)
	order, err := e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.NoError(t, err)
	payment, err := e.payment.CreateIntent(ctx, userID, order.ID)
	require.NoError(t, err)
	require.NoError(t, e.payment.HandleResult(ctx, order.ID, succeededFor(payment, "tx_multi", `{}`)))

	got, err := e.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	var fastItem, slowItem models.OrderItem
	for _, it := range got.Items {
		if it.OfferID == fast.ID {
			fastItem = it
		} else {
			slowItem = it
		}
	}

	// one seller ships and delivers, the other one only ships
	_, err = e.fulfillment.UpdateItemStatus(ctx, fast.SellerID, fastItem.ID, models.ItemShipped)
	require.NoError(t, err)
	_, err = e.fulfillment.UpdateItemStatus(ctx, fast.SellerID, fastItem.ID, models.ItemDelivered)
	require.NoError(t, err)
	_, err = e.fulfillment.UpdateItemStatus(ctx, slow.SellerID, slowItem.ID, models.ItemShipped)
	require.NoError(t, err)

	got, err = e.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)
}

func TestUpdateItemStatus_WrongSellerAndBadTargets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)
	itemID := order.Items[0].ID

	_, err := e.fulfillment.UpdateItemStatus(ctx, uuid.New(), itemID, models.ItemShipped)
	assert.ErrorIs(t, err, ErrNotFound)

	// sellers cannot cancel or rewind
	_, err = e.fulfillment.UpdateItemStatus(ctx, offer.SellerID, itemID, models.ItemCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = e.fulfillment.UpdateItemStatus(ctx, offer.SellerID, itemID, models.ItemDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition) // processing cannot skip shipped
}

func deliverOrder(t *testing.T, e *env, sellerID uuid.UUID, order *models.Order) {
	t.Helper()
	ctx := context.Background()
	for _, it := range order.Items {
		_, err := e.fulfillment.UpdateItemStatus(ctx, sellerID, it.ID, models.ItemShipped)
		require.NoError(t, err)
		_, err = e.fulfillment.UpdateItemStatus(ctx, sellerID, it.ID, models.ItemDelivered)
		require.NoError(t, err)
	}
}

func TestReturnFlow_RequestThenApprove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 2)
	deliverOrder(t, e, offer.SellerID, order)
	stockBefore := e.stockOf(t, offer.ID)

	returned, err := e.fulfillment.RequestReturn(ctx, userID, order.ID, "wrong size")
	require.NoError(t, err)
	assert.Equal(t, models.OrderReturnRequested, returned.Status)
	assert.Equal(t, models.ItemReturnRequested, returned.Items[0].Status)

	refunded, err := e.fulfillment.ApproveReturn(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderRefunded, refunded.Status)
	assert.Equal(t, models.ItemRefunded, refunded.Items[0].Status)

	payment, err := e.repo.GetPaymentForOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, payment.Status)

	// returned goods are not restocked
	assert.Equal(t, stockBefore, e.stockOf(t, offer.ID))
}

func TestRequestReturn_OutsideWindow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)
	deliverOrder(t, e, offer.SellerID, order)

	// delivery happened long before "now"
	stale := testNow.Add(-60 * 24 * time.Hour)
	require.NoError(t, e.repo.DB.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).Update("delivered_at", stale).Error)

	_, err := e.fulfillment.RequestReturn(ctx, userID, order.ID, "too old")
	assert.ErrorIs(t, err, ErrReturnWindowClosed)
}

func TestRequestReturn_NothingDelivered(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)

	_, err := e.fulfillment.RequestReturn(ctx, userID, order.ID, "nothing arrived yet")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveReturn_WithoutRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	order := paidOrder(t, e, userID, offer, 1)

	_, err := e.fulfillment.ApproveReturn(ctx, order.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
