package model

import "time"

type RefreshToken struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string     `json:"userId" gorm:"type:varchar(36);not null;index"`
	TokenHash string     `json:"-" gorm:"not null;uniqueIndex"`
	UserAgent string     `json:"userAgent" gorm:"not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null;index"`
	UsedAt    *time.Time `json:"usedAt" gorm:"index"`
	RevokedAt *time.Time `json:"revokedAt" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;autoCreateTime"`
}
