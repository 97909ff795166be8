package events

import "time"

type OrderItemEvent struct {
	ProductID string `json:"productId"`
	Name      string `json:"nombre"`
	UnitPrice string `json:"precioUnit"`
	Quantity  int64  `json:"cantidad"`
}

type OrderCreatedEvent struct {
	EventID   string           `json:"event_id"`
	OrderID   string           `json:"order_id"`
	UserID    string           `json:"user_id"`
	Total     string           `json:"total"`
	Items     []OrderItemEvent `json:"items"`
	Timestamp time.Time        `json:"timestamp"`
}

type OrderCanceledEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
