package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        uuid.UUID       `gorm:"primaryKey"                json:"id"`
	Name      string          `gorm:"not null"                  json:"name"`
	BasePrice decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"base_price"`
	Category  string          `gorm:"index"                     json:"category"`
	Brand     string          `gorm:"index"                     json:"brand"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type OfferCondition string

const (
	ConditionNew         OfferCondition = "new"
	ConditionUsedLikeNew OfferCondition = "used_like_new"
	ConditionUsedGood    OfferCondition = "used_good"
	ConditionRefurbished OfferCondition = "refurbished"
)

var ErrDealInvalid = errors.New("deal requires deal_price, deal_start_at and deal_end_at, with deal_price below regular price")

type Offer struct {
	ID            uuid.UUID        `gorm:"primaryKey"                  json:"id"`
	ProductID     uuid.UUID        `gorm:"index;not null"              json:"product_id"`
	SellerID      uuid.UUID        `gorm:"index;not null"              json:"seller_id"`
	Price         decimal.Decimal  `gorm:"not null;type:decimal(10,2)" json:"price"`
	StockQuantity int              `gorm:"not null;check:stock_quantity>=0" json:"stock_quantity"`
	Condition     OfferCondition   `gorm:"not null;default:new"        json:"condition"`
	DealPrice     *decimal.Decimal `gorm:"type:decimal(10,2)"          json:"deal_price,omitempty"`
	DealStartAt   *time.Time       `json:"deal_start_at,omitempty"`
	DealEndAt     *time.Time       `json:"deal_end_at,omitempty"`
	Active        bool             `gorm:"not null;default:true"       json:"active"`
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Validate enforces the deal invariant at write time: either no deal field is
// set, or all three are set and the deal undercuts the regular price.
func (o *Offer) Validate() error {
	hasAny := o.DealPrice != nil || o.DealStartAt != nil || o.DealEndAt != nil
	hasAll := o.DealPrice != nil && o.DealStartAt != nil && o.DealEndAt != nil
	if !hasAny {
		return nil
	}
	if !hasAll {
		return ErrDealInvalid
	}
	if !o.DealPrice.LessThan(o.Price) {
		return ErrDealInvalid
	}
	if o.DealEndAt.Before(*o.DealStartAt) {
		return ErrDealInvalid
	}
	return nil
}

// DealActiveAt reports whether the offer carries a deal whose window covers t.
// Window bounds are inclusive on both ends.
func (o *Offer) DealActiveAt(t time.Time) bool {
	if o.DealPrice == nil || o.DealStartAt == nil || o.DealEndAt == nil {
		return false
	}
	return !t.Before(*o.DealStartAt) && !t.After(*o.DealEndAt)
}

type CartItem struct {
	ID             uuid.UUID       `gorm:"primaryKey"                             json:"id"`
	UserID         uuid.UUID       `gorm:"uniqueIndex:idx_user_offer;not null"    json:"user_id"`
	OfferID        uuid.UUID       `gorm:"uniqueIndex:idx_user_offer;not null"    json:"offer_id"`
	Quantity       uint            `gorm:"default:1;check:quantity>0"             json:"quantity"`
	UnitPriceAtAdd decimal.Decimal `gorm:"not null;type:decimal(10,2)"            json:"unit_price_at_add"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Address struct {
	ID         uuid.UUID `gorm:"primaryKey"     json:"id"`
	UserID     uuid.UUID `gorm:"index;not null" json:"user_id"`
	FullName   string    `gorm:"not null"       json:"full_name"`
	Line1      string    `gorm:"not null"       json:"line1"`
	Line2      string    `json:"line2"`
	City       string    `gorm:"not null"       json:"city"`
	State      string    `json:"state"`
	PostalCode string    `gorm:"not null"       json:"postal_code"`
	Country    string    `gorm:"not null"       json:"country"`
	Phone      string    `json:"phone"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ShippingAddress is the denormalized copy embedded into an order. Later edits
// to the shopper's address book never alter order history.
type ShippingAddress struct {
	FullName   string `gorm:"not null" json:"full_name"`
	Line1      string `gorm:"not null" json:"line1"`
	Line2      string `json:"line2"`
	City       string `gorm:"not null" json:"city"`
	State      string `json:"state"`
	PostalCode string `gorm:"not null" json:"postal_code"`
	Country    string `gorm:"not null" json:"country"`
	Phone      string `json:"phone"`
}

func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

type Order struct {
	ID          uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	UserID      uuid.UUID       `gorm:"index;not null"              json:"user_id"`
	Shipping    ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	TotalAmount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	Status      OrderStatus     `gorm:"not null"                    json:"status"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"          json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID              uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	OrderID         uuid.UUID       `gorm:"index;not null"              json:"order_id"`
	OfferID         uuid.UUID       `gorm:"not null"                    json:"offer_id"`
	SellerID        uuid.UUID       `gorm:"index;not null"              json:"seller_id"`
	Quantity        uint            `gorm:"default:1;check:quantity>0"  json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price_at_time_of_purchase"`
	Status          OrderItemStatus `gorm:"not null"                    json:"status"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Payment struct {
	ID                   uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	OrderID              uuid.UUID       `gorm:"uniqueIndex;not null"        json:"order_id"`
	Amount               decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Currency             string          `gorm:"not null"                    json:"currency"`
	Status               PaymentStatus   `gorm:"not null"                    json:"status"`
	GatewayPaymentID     string          `gorm:"index"                       json:"gateway_payment_id"`
	GatewayTransactionID *string         `gorm:"uniqueIndex"                 json:"gateway_transaction_id,omitempty"`
	GatewayResponse      string          `gorm:"type:text"                   json:"-"`
	ClientSecret         string          `json:"-"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
