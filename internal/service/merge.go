package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vishal-1207/zapify/internal/logging"
)

// MergeGuestCart replays a pre-login cart into the shopper's server cart,
// once, at authentication time. Each guest line becomes an authenticated add;
// a line that fails (offer gone, out of stock) is dropped and logged without
// aborting the rest. Guest storage is cleared only after the replay round-trip
// finishes, so a retried login replays at most one extra pass and the upsert
// keying keeps that from growing the cart unboundedly.
func (s *CartService) MergeGuestCart(ctx context.Context, guestID string, userID uuid.UUID) error {
	cart, err := s.Guest.Get(ctx, guestID)
	if err != nil {
		return err
	}

	l := logging.FromContext(ctx)
	merged, dropped := 0, 0
	for _, it := range cart.Items {
		if _, err := s.AddToCart(ctx, userID, it.OfferID, it.Quantity); err != nil {
			dropped++
			l.Warn("guest cart item dropped during merge",
				"guest_id", guestID, "offer_id", it.OfferID, "error", err)
			continue
		}
		merged++
	}

	// cleared unconditionally, even after partial failure, to avoid re-merge loops
	if err := s.Guest.Delete(ctx, guestID); err != nil {
		return err
	}

	l.Info("guest cart merged", "guest_id", guestID, "user_id", userID,
		"merged", merged, "dropped", dropped)
	emit(ctx, s.Events, "cart_events", userID.String(), map[string]any{
		"type":     "guest_cart_merged",
		"user_id":  userID,
		"guest_id": guestID,
		"merged":   merged,
		"dropped":  dropped,
	})
	return nil
}
