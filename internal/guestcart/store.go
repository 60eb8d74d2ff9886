package guestcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// A guest cart lives in Redis under the device-supplied guest id until the
// shopper logs in and it is merged away, or until the TTL lapses.

type Item struct {
	OfferID        uuid.UUID       `json:"offer_id"`
	Quantity       uint            `json:"quantity"`
	UnitPriceAtAdd decimal.Decimal `json:"unit_price_at_add"`
	AddedAt        time.Time       `json:"added_at"`
}

type Cart struct {
	GuestID   string    `json:"guest_id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

const defaultTTL = 30 * 24 * time.Hour

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: defaultTTL}
}

func key(guestID string) string {
	return fmt.Sprintf("guest_cart:%s", guestID)
}

// Get returns the stored cart, or an empty one when nothing is stored yet.
func (s *Store) Get(ctx context.Context, guestID string) (*Cart, error) {
	raw, err := s.rdb.Get(ctx, key(guestID)).Result()
	if errors.Is(err, redis.Nil) {
		return &Cart{GuestID: guestID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("guest cart get: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("guest cart decode: %w", err)
	}
	return &cart, nil
}

func (s *Store) Save(ctx context.Context, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("guest cart encode: %w", err)
	}
	if err := s.rdb.Set(ctx, key(cart.GuestID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("guest cart save: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, guestID string) error {
	if err := s.rdb.Del(ctx, key(guestID)).Err(); err != nil {
		return fmt.Errorf("guest cart delete: %w", err)
	}
	return nil
}

// Upsert adds quantity to an existing line or appends a new one, mirroring the
// authenticated cart's (owner, offer) idempotent upsert.
func (c *Cart) Upsert(offerID uuid.UUID, qty uint, unitPrice decimal.Decimal) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].OfferID == offerID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, Item{
		OfferID:        offerID,
		Quantity:       qty,
		UnitPriceAtAdd: unitPrice,
		AddedAt:        time.Now().UTC(),
	})
}

// SetQuantity updates a line in place; zero removes it. Returns false when the
// offer is not in the cart.
func (c *Cart) SetQuantity(offerID uuid.UUID, qty uint) bool {
	for i := range c.Items {
		if c.Items[i].OfferID == offerID {
			if qty == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = qty
			}
			return true
		}
	}
	return false
}

func (c *Cart) Remove(offerID uuid.UUID) bool {
	return c.SetQuantity(offerID, 0)
}
