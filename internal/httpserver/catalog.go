package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishal-1207/zapify/internal/service"
	"github.com/vishal-1207/zapify/internal/transport"
)

type CatalogHTTP struct {
	Offers *service.OfferService
}

// ProductPrice returns the buy-box price for a product: the winning offer and
// the price it would sell at right now.
func (h *CatalogHTTP) ProductPrice(c echo.Context) error {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	res, err := h.Offers.ResolveProductPrice(c.Request().Context(), productID)
	if err != nil {
		return respondError(c, err)
	}

	resp := transport.ProductPriceResponse{
		ProductID:      productID,
		EffectivePrice: res.EffectivePrice,
		DealActive:     res.DealActive,
		Purchasable:    res.Purchasable,
	}
	if res.Offer != nil {
		resp.OfferID = &res.Offer.ID
		resp.SellerID = &res.Offer.SellerID
	}
	return c.JSON(http.StatusOK, resp)
}
