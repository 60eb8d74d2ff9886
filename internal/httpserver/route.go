package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	JWTSecret []byte

	Cart    *CartHTTP
	Order   *OrderHTTP
	Payment *PaymentHTTP
	Seller  *SellerHTTP
	Catalog *CatalogHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.GET("/products/:id/price", d.Catalog.ProductPrice)

	// Guest cart rides on the X-Guest-ID header, no token needed.
	guest := v1.Group("/guest/cart")

	guest.GET("", d.Cart.GetGuestCart)
	guest.POST("/items", d.Cart.GuestAdd)
	guest.PATCH("/items/:offerID", d.Cart.GuestUpdate)
	guest.DELETE("/items/:offerID", d.Cart.GuestRemove)

	// Gateway callbacks authenticate by signature, not user token.
	v1.POST("/payments/webhook", d.Payment.Webhook)

	auth := v1.Group("", RequireAuth(d.JWTSecret))

	cart := auth.Group("/cart")

	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddToCart)
	cart.PATCH("/items/:offerID", d.Cart.UpdateCartItem)
	cart.DELETE("/items/:offerID", d.Cart.RemoveFromCart)
	cart.POST("/merge", d.Cart.MergeCart)

	orders := auth.Group("/orders")

	orders.POST("", d.Order.PlaceOrder)
	orders.GET("", d.Order.ListOrders)
	orders.GET("/:id", d.Order.GetOrder)
	orders.POST("/:id/cancel", d.Order.CancelOrder)
	orders.POST("/:id/return", d.Order.RequestReturn)
	orders.POST("/:id/payment-intent", d.Payment.CreateIntent)

	seller := auth.Group("/seller")

	seller.PUT("/offers", d.Seller.UpsertOffer)
	seller.PATCH("/order-items/:itemID/status", d.Seller.UpdateItemStatus)
	seller.POST("/orders/:id/approve-return", d.Seller.ApproveReturn)
}
