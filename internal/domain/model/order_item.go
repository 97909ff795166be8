package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 価格は注文時点のDB値をスナップショット（クライアント値は信用しない）
type OrderItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID           string          `gorm:"type:varchar(36);not null;index" json:"-"`
	ProductID         string          `gorm:"type:varchar(36);not null;index" json:"productId"`
	NameSnapshot      string          `gorm:"type:varchar(255);not null" json:"nombre"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"precioUnit"`
	Quantity          int64           `gorm:"not null" json:"cantidad"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"-"`
}
