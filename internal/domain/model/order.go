package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// 注文は作成後、状態の変更（pending→canceled）と表示用日時の追記しか許さない
type Order struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID        string          `gorm:"type:varchar(36);not null;index" json:"userId"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"estado"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	ShippingTier  string          `gorm:"type:varchar(20);not null" json:"envioTipo"`
	ShippingCost  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"envioCosto"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Address       string          `gorm:"type:text" json:"direccionEnvio"`
	PaymentMethod string          `gorm:"type:text" json:"metodoPagoSimulado"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"creadoEn"`
	CreatedAtText string          `gorm:"type:varchar(64)" json:"fechaLegible,omitempty"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"-"`
}
