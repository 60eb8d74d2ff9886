package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishal-1207/zapify/internal/models"
	"github.com/vishal-1207/zapify/internal/service"
	"github.com/vishal-1207/zapify/internal/transport"
)

type SellerHTTP struct {
	Offers      *service.OfferService
	Fulfillment *service.FulfillmentService
}

func sellerID(c echo.Context) (uuid.UUID, error) {
	uid, err := userID(c)
	if err != nil {
		return uuid.Nil, err
	}
	if role, _ := c.Get("role").(string); role != "seller" && role != "admin" {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "seller role required")
	}
	return uid, nil
}

func (h *SellerHTTP) UpsertOffer(c echo.Context) error {
	sid, err := sellerID(c)
	if err != nil {
		return err
	}

	var req transport.UpsertOfferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	offer := models.Offer{
		ID:            req.ID,
		ProductID:     req.ProductID,
		SellerID:      sid,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Condition:     req.Condition,
		DealPrice:     req.DealPrice,
		DealStartAt:   req.DealStartAt,
		DealEndAt:     req.DealEndAt,
		Active:        true,
	}
	if req.Active != nil {
		offer.Active = *req.Active
	}

	saved, err := h.Offers.UpsertOffer(c.Request().Context(), sid, &offer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *SellerHTTP) UpdateItemStatus(c echo.Context) error {
	sid, err := sellerID(c)
	if err != nil {
		return err
	}

	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req transport.UpdateItemStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Fulfillment.UpdateItemStatus(c.Request().Context(), sid, itemID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *SellerHTTP) ApproveReturn(c echo.Context) error {
	if _, err := sellerID(c); err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Fulfillment.ApproveReturn(c.Request().Context(), orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
