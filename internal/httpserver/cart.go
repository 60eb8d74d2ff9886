package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishal-1207/zapify/internal/service"
	"github.com/vishal-1207/zapify/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	items, err := h.Svc.GetCart(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToCart(c.Request().Context(), uid, req.OfferID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateCartItem(c.Request().Context(), uid, offerID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}

	if err := h.Svc.RemoveFromCart(c.Request().Context(), uid, offerID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) MergeCart(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.MergeCartRequest
	if err := c.Bind(&req); err != nil || req.GuestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guest_id required")
	}

	if err := h.Svc.MergeGuestCart(c.Request().Context(), req.GuestID, uid); err != nil {
		return respondError(c, err)
	}

	items, err := h.Svc.GetCart(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) GetGuestCart(c echo.Context) error {
	gid, err := guestID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cart, err := h.Svc.GuestCart(c.Request().Context(), gid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) GuestAdd(c echo.Context) error {
	gid, err := guestID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.GuestAdd(c.Request().Context(), gid, req.OfferID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) GuestUpdate(c echo.Context) error {
	gid, err := guestID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.GuestUpdate(c.Request().Context(), gid, offerID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) GuestRemove(c echo.Context) error {
	gid, err := guestID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	offerID, err := uuid.Parse(c.Param("offerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offer id")
	}

	cart, err := h.Svc.GuestRemove(c.Request().Context(), gid, offerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}
