package models

// Statuses are string backed so new variants ship without schema surgery.

type OrderStatus string

const (
	OrderPending         OrderStatus = "pending"
	OrderProcessing      OrderStatus = "processing"
	OrderShipped         OrderStatus = "shipped"
	OrderDelivered       OrderStatus = "delivered"
	OrderCancelled       OrderStatus = "cancelled"
	OrderReturnRequested OrderStatus = "return_requested"
	OrderRefunded        OrderStatus = "refunded"
)

type OrderItemStatus string

const (
	ItemPending         OrderItemStatus = "pending"
	ItemProcessing      OrderItemStatus = "processing"
	ItemShipped         OrderItemStatus = "shipped"
	ItemDelivered       OrderItemStatus = "delivered"
	ItemCancelled       OrderItemStatus = "cancelled"
	ItemReturnRequested OrderItemStatus = "return_requested"
	ItemRefunded        OrderItemStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var itemTransitions = map[OrderItemStatus][]OrderItemStatus{
	ItemPending:         {ItemProcessing, ItemCancelled},
	ItemProcessing:      {ItemShipped, ItemCancelled},
	ItemShipped:         {ItemDelivered},
	ItemDelivered:       {ItemReturnRequested},
	ItemReturnRequested: {ItemRefunded},
	// cancelled and refunded are terminal
}

// CanTransition reports whether an order item may move from one status to
// another. Terminal states admit nothing, except delivered -> return_requested.
func CanTransition(from, to OrderItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// progressRank orders the forward fulfillment chain. Return states sit at the
// delivered level: the item has completed shipment either way.
func progressRank(s OrderItemStatus) int {
	switch s {
	case ItemPending:
		return 0
	case ItemProcessing:
		return 1
	case ItemShipped:
		return 2
	case ItemDelivered, ItemReturnRequested, ItemRefunded:
		return 3
	default:
		return 0
	}
}

// RollUpStatus derives the order status from its items. The order is only as
// done as its least-progressed item; cancelled items drop out of the
// progression unless everything is cancelled.
func RollUpStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderPending
	}

	active := make([]OrderItem, 0, len(items))
	for _, it := range items {
		if it.Status != ItemCancelled {
			active = append(active, it)
		}
	}
	if len(active) == 0 {
		return OrderCancelled
	}

	minRank := progressRank(active[0].Status)
	anyReturn, anyRefunded, allDelivered := false, false, true
	for _, it := range active {
		if r := progressRank(it.Status); r < minRank {
			minRank = r
		}
		switch it.Status {
		case ItemReturnRequested:
			anyReturn = true
			allDelivered = false
		case ItemRefunded:
			anyRefunded = true
			allDelivered = false
		case ItemDelivered:
		default:
			allDelivered = false
		}
	}

	if allDelivered {
		return OrderDelivered
	}
	if minRank >= 1 {
		if anyReturn {
			return OrderReturnRequested
		}
		if anyRefunded {
			return OrderRefunded
		}
	}

	switch minRank {
	case 0:
		return OrderPending
	case 1:
		return OrderProcessing
	case 2:
		return OrderShipped
	default:
		return OrderDelivered
	}
}
