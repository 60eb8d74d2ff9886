package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vishal-1207/zapify/internal/models"
)

// Resolution is the outcome of picking the best offer for a product.
// When Offer is nil the product has no listings and EffectivePrice falls back
// to the catalog base price for display only.
type Resolution struct {
	Offer          *models.Offer
	EffectivePrice decimal.Decimal
	DealActive     bool
	Purchasable    bool
}

// EffectivePrice returns the price a shopper pays for this offer right now:
// the deal price inside an active deal window, the regular price otherwise.
func EffectivePrice(o *models.Offer, now time.Time) (decimal.Decimal, bool) {
	if o.DealActiveAt(now) {
		return *o.DealPrice, true
	}
	return o.Price, false
}

// ResolveBestOffer picks the effective offer for a product. Deal-active offers
// win over regular ones; within a group the cheapest in-stock offer wins, and
// if nothing has stock the cheapest offer is still returned for display.
// Ties on price break to the lowest seller id so resolution is deterministic.
//
// Every price the system shows or charges comes through here: product display,
// the add-to-cart snapshot and the checkout re-validation all share it.
func ResolveBestOffer(product *models.Product, offers []models.Offer, now time.Time) Resolution {
	if len(offers) == 0 {
		return Resolution{EffectivePrice: product.BasePrice}
	}

	candidates := dealActive(offers, now)
	deal := len(candidates) > 0
	if !deal {
		candidates = append([]models.Offer(nil), offers...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, _ := EffectivePrice(&candidates[i], now)
		pj, _ := EffectivePrice(&candidates[j], now)
		if c := pi.Cmp(pj); c != 0 {
			return c < 0
		}
		return candidates[i].SellerID.String() < candidates[j].SellerID.String()
	})

	selected := &candidates[0]
	for i := range candidates {
		if candidates[i].StockQuantity > 0 {
			selected = &candidates[i]
			break
		}
	}

	price, _ := EffectivePrice(selected, now)
	return Resolution{
		Offer:          selected,
		EffectivePrice: price,
		DealActive:     deal,
		Purchasable:    selected.StockQuantity > 0,
	}
}

func dealActive(offers []models.Offer, now time.Time) []models.Offer {
	var out []models.Offer
	for _, o := range offers {
		if o.DealActiveAt(now) {
			out = append(out, o)
		}
	}
	return out
}
