package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vishal-1207/zapify/internal/guestcart"
	"github.com/vishal-1207/zapify/internal/logging"
	"github.com/vishal-1207/zapify/internal/models"
)

// Events is the fire-and-forget side of the pipeline. A nil Events is valid
// and publishes nothing; publish failures are logged and never surface to the
// operation that triggered them.
type Events interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// GuestStore holds pre-login carts keyed by a device-supplied guest id.
type GuestStore interface {
	Get(ctx context.Context, guestID string) (*guestcart.Cart, error)
	Save(ctx context.Context, cart *guestcart.Cart) error
	Delete(ctx context.Context, guestID string) error
}

// AddressBook resolves a shipping address owned by the given shopper.
type AddressBook interface {
	GetAddress(ctx context.Context, id, ownerID uuid.UUID) (*models.Address, error)
}

func emit(ctx context.Context, ev Events, topic, key string, event map[string]any) {
	if ev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ev.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "topic", topic, "error", err)
	}
}
