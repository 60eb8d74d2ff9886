package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vishal-1207/zapify/internal/logging"
	"github.com/vishal-1207/zapify/internal/service"
	"github.com/vishal-1207/zapify/internal/transport"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) CreateIntent(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	p, err := h.Svc.CreateIntent(c.Request().Context(), uid, orderID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, transport.PaymentIntentResponse{
		PaymentID:    p.ID,
		OrderID:      p.OrderID,
		Amount:       p.Amount,
		Currency:     p.Currency,
		ClientSecret: p.ClientSecret,
	})
}

// Webhook receives gateway callbacks. It sits outside the user token scheme;
// a result must name the gateway payment id of the stored intent or the
// service rejects it, and replays of a settled outcome are no-ops, so handing
// the gateway a 200 twice for the same outcome is safe.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	var req transport.PaymentWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.OrderID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id required")
	}
	if req.GatewayPaymentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "gateway_payment_id required")
	}

	ctx := c.Request().Context()
	res := service.GatewayResult{
		GatewayPaymentID: req.GatewayPaymentID,
		Outcome:          req.Outcome,
		TransactionID:    req.GatewayTransactionID,
		Payload:          req.Payload,
	}
	if err := h.Svc.HandleResult(ctx, req.OrderID, res); err != nil {
		logging.FromContext(ctx).Error("webhook processing failed",
			"order_id", req.OrderID, "outcome", req.Outcome, "error", err)
		return respondError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
