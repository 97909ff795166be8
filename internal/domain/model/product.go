package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫は必ずトランザクション経由で増減する（負にならない）
type Product struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"nombre"`
	NameLower   string          `gorm:"type:varchar(255);not null;index" json:"-"`
	Description string          `gorm:"type:text" json:"descripcion"`
	Category    string          `gorm:"type:varchar(100);index" json:"categoria"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"precio"`
	Stock       int64           `gorm:"not null" json:"stock"`
	IsActive    bool            `gorm:"not null;default:false" json:"activo"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"creadoEn"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"-"`
}
