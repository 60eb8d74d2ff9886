package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishal-1207/zapify/internal/service"
)

// respondError translates service sentinels into HTTP responses. Checkout
// failures keep their full message so the shopper sees which offer is the
// problem instead of a generic failure.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, errBody(err))
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrAddressNotFound):
		return c.JSON(http.StatusNotFound, errBody(err))
	case errors.Is(err, service.ErrOfferUnavailable),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrPaymentIntentConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReturnWindowClosed):
		return c.JSON(http.StatusConflict, errBody(err))
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
