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

func TestPlaceOrder_HappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	_, err := e.cart.AddToCart(ctx, userID, offer.ID, 2)
	require.NoError(t, err)
	addr := e.seedAddress(t, userID)

	order, err := e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(dec("40.00")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, models.ItemPending, order.Items[0].Status)
	assert.Equal(t, offer.SellerID, order.Items[0].SellerID)
	assert.True(t, order.Items[0].PriceAtPurchase.Equal(dec("20.00")))
	assert.Equal(t, "1 Main St", order.Shipping.Line1)

	// stock reserved, cart cleared
	assert.Equal(t, 3, e.stockOf(t, offer.ID))
	items, err := e.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	e := newEnv(t)
	userID := uuid.New()
	addr := e.seedAddress(t, userID)

	_, err := e.checkout.PlaceOrder(context.Background(), userID, addr.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_AddressNotFoundOrForeign(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	_, err := e.cart.AddToCart(ctx, userID, offer.ID, 1)
	require.NoError(t, err)

	_, err = e.checkout.PlaceOrder(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, ErrAddressNotFound)

	// someone else's address is just as missing
	foreign := e.seedAddress(t, uuid.New())
	_, err = e.checkout.PlaceOrder(ctx, userID, foreign.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestPlaceOrder_ChargesCurrentPriceNotSnapshot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	_, err := e.cart.AddToCart(ctx, userID, offer.ID, 1)
	require.NoError(t, err)

	// seller raises the price after the add
	require.NoError(t, e.repo.DB.Model(&models.Offer{}).
		Where("id = ?", offer.ID).Update("price", dec("30.00")).Error)

	addr := e.seedAddress(t, userID)
	order, err := e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("30.00")))
}

func TestPlaceOrder_DealPriceAppliedAtCommit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	deal := dec("15.00")
	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	require.NoError(t, e.repo.DB.Model(&models.Offer{}).Where("id = ?", offer.ID).
		Updates(map[string]any{"deal_price": deal, "deal_start_at": start, "deal_end_at": end}).Error)

	_, err := e.cart.AddToCart(ctx, userID, offer.ID, 2)
	require.NoError(t, err)
	addr := e.seedAddress(t, userID)

	order, err := e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(dec("30.00")))
}

func TestPlaceOrder_OfferDeactivatedFailsWholeCheckout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	offer := e.seedOffer(t, "20.00", 5)
	_, err := e.cart.AddToCart(ctx, userID, offer.ID, 1)
	require.NoError(t, err)
	require.NoError(t, e.repo.DB.Model(&models.Offer{}).
		Where("id = ?", offer.ID).Update("active", false).Error)

	addr := e.seedAddress(t, userID)
	_, err = e.checkout.PlaceOrder(ctx, userID, addr.ID)
	assert.ErrorIs(t, err, ErrOfferUnavailable)
	assert.Contains(t, err.Error(), offer.ID.String())
}

func TestPlaceOrder_NoPartialOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	plenty := e.seedOffer(t, "10.00", 10)
	scarce := e.seedOffer(t, "20.00", 1)

	_, err := e.cart.AddToCart(ctx, userID, plenty.ID, 2)
	require.NoError(t, err)
	_, err = e.cart.AddToCart(ctx, userID, scarce.ID, 1)
	require.NoError(t, err)
	// drain the scarce offer behind the shopper's back
	require.NoError(t, e.repo.DB.Model(&models.Offer{}).
		Where("id = ?", scarce.ID).Update("stock_quantity", 0).Error)

	addr := e.seedAddress(t, userID)
	_, err = e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), scarce.ID.String())

	// the first item's decrement was rolled back, nothing persisted
	assert.Equal(t, 10, e.stockOf(t, plenty.ID))
	var orders []models.Order
	require.NoError(t, e.repo.DB.Find(&orders).Error)
	assert.Empty(t, orders)
	var orderItems []models.OrderItem
	require.NoError(t, e.repo.DB.Find(&orderItems).Error)
	assert.Empty(t, orderItems)

	// cart is untouched so the shopper can fix it and resubmit
	items, err := e.cart.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPlaceOrder_LastUnitRace(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	offer := e.seedOffer(t, "20.00", 1)

	first, second := uuid.New(), uuid.New()
	_, err := e.cart.AddToCart(ctx, first, offer.ID, 1)
	require.NoError(t, err)
	_, err = e.cart.AddToCart(ctx, second, offer.ID, 1)
	require.NoError(t, err)
	addrFirst := e.seedAddress(t, first)
	addrSecond := e.seedAddress(t, second)

	_, err = e.checkout.PlaceOrder(ctx, first, addrFirst.ID)
	require.NoError(t, err)

	_, err = e.checkout.PlaceOrder(ctx, second, addrSecond.ID)
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 0, e.stockOf(t, offer.ID))
}

func TestListOrders_ClampsPaging(t *testing.T) {
	e := newEnv(t)
	userID := uuid.New()

	offer := e.seedOffer(t, "10.00", 10)
	e.placeOrder(t, userID, offer, 1)

	orders, err := e.checkout.ListOrders(context.Background(), userID, -5, -1)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
