package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vishal-1207/zapify/internal/models"
)

type AddToCartRequest struct {
	OfferID  uuid.UUID `json:"offer_id"`
	Quantity uint      `json:"quantity"`
}

type UpdateCartItemRequest struct {
	OfferID  uuid.UUID `json:"offer_id"`
	Quantity uint      `json:"quantity"`
}

type MergeCartRequest struct {
	GuestID string `json:"guest_id"`
}

type PlaceOrderRequest struct {
	AddressID uuid.UUID `json:"address_id"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type ReturnRequest struct {
	Reason string `json:"reason"`
}

type PaymentIntentResponse struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ClientSecret string          `json:"client_secret"`
}

type PaymentWebhookRequest struct {
	OrderID              uuid.UUID `json:"order_id"`
	GatewayPaymentID     string    `json:"gateway_payment_id"`
	Outcome              string    `json:"outcome"`
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	Payload              string    `json:"payload"`
}

type UpdateItemStatusRequest struct {
	Status models.OrderItemStatus `json:"status"`
}

type UpsertOfferRequest struct {
	ID            uuid.UUID             `json:"id"`
	ProductID     uuid.UUID             `json:"product_id"`
	Price         decimal.Decimal       `json:"price"`
	StockQuantity int                   `json:"stock_quantity"`
	Condition     models.OfferCondition `json:"condition"`
	DealPrice     *decimal.Decimal      `json:"deal_price,omitempty"`
	DealStartAt   *time.Time            `json:"deal_start_at,omitempty"`
	DealEndAt     *time.Time            `json:"deal_end_at,omitempty"`
	Active        *bool                 `json:"active,omitempty"`
}

type ProductPriceResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	OfferID        *uuid.UUID      `json:"offer_id,omitempty"`
	SellerID       *uuid.UUID      `json:"seller_id,omitempty"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	DealActive     bool            `json:"deal_active"`
	Purchasable    bool            `json:"purchasable"`
}
