package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vishal-1207/zapify/internal/gateway"
	"github.com/vishal-1207/zapify/internal/guestcart"
	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/repo"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	// A plain ":memory:" DSN gives every pooled connection its own empty
	// database with this driver; a uniquely named shared-cache DSN keeps one
	// database per test across connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return repo.New(db)
}

type fakeGuestStore struct {
	carts map[string]*guestcart.Cart
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{carts: make(map[string]*guestcart.Cart)}
}

func (f *fakeGuestStore) Get(ctx context.Context, guestID string) (*guestcart.Cart, error) {
	if c, ok := f.carts[guestID]; ok {
		return c, nil
	}
	return &guestcart.Cart{GuestID: guestID}, nil
}

func (f *fakeGuestStore) Save(ctx context.Context, cart *guestcart.Cart) error {
	f.carts[cart.GuestID] = cart
	return nil
}

func (f *fakeGuestStore) Delete(ctx context.Context, guestID string) error {
	delete(f.carts, guestID)
	return nil
}

type fakeGateway struct {
	calls int
	fail  bool
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*gateway.Intent, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("gateway unavailable")
	}
	return &gateway.Intent{
		ID:           fmt.Sprintf("pi_test_%d", f.calls),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", f.calls),
	}, nil
}

type env struct {
	repo        *repo.GormRepo
	guest       *fakeGuestStore
	gw          *fakeGateway
	cart        *CartService
	checkout    *CheckoutService
	payment     *PaymentService
	fulfillment *FulfillmentService
}

func newEnv(t *testing.T) *env {
	r := newTestRepo(t)
	guest := newFakeGuestStore()
	gw := &fakeGateway{}
	clock := func() time.Time { return testNow }

	return &env{
		repo:     r,
		guest:    guest,
		gw:       gw,
		cart:     &CartService{Repo: r, Guest: guest},
		checkout: &CheckoutService{Repo: r, Addresses: r, Now: clock},
		payment:  &PaymentService{Repo: r, Gateway: gw, Currency: "usd"},
		fulfillment: &FulfillmentService{
			Repo:         r,
			ReturnWindow: 30 * 24 * time.Hour,
			Now:          clock,
		},
	}
}

func (e *env) seedOffer(t *testing.T, price string, stock int) *models.Offer {
	t.Helper()

	product := models.Product{Name: "widget", BasePrice: dec(price)}
	require.NoError(t, e.repo.DB.Create(&product).Error)

	offer := models.Offer{
		ProductID:     product.ID,
		SellerID:      uuid.New(),
		Price:         dec(price),
		StockQuantity: stock,
		Active:        true,
	}
	require.NoError(t, e.repo.DB.Create(&offer).Error)
	return &offer
}

func (e *env) seedAddress(t *testing.T, userID uuid.UUID) *models.Address {
	t.Helper()

	addr := models.Address{
		UserID:     userID,
		FullName:   "Test Shopper",
		Line1:      "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
	require.NoError(t, e.repo.DB.Create(&addr).Error)
	return &addr
}

func (e *env) stockOf(t *testing.T, offerID uuid.UUID) int {
	t.Helper()
	offer, err := e.repo.GetOffer(context.Background(), offerID)
	require.NoError(t, err)
	return offer.StockQuantity
}

// placeOrder seeds a full happy path up to an order and returns it.
func (e *env) placeOrder(t *testing.T, userID uuid.UUID, offer *models.Offer, qty uint) *models.Order {
	t.Helper()
	ctx := context.Background()

	_, err := e.cart.AddToCart(ctx, userID, offer.ID, qty)
	require.NoError(t, err)
	addr := e.seedAddress(t, userID)

	order, err := e.checkout.PlaceOrder(ctx, userID, addr.ID)
	require.NoError(t, err)
	return order
}
