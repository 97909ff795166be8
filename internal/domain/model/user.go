package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"uid"`
	Name         string     `gorm:"type:varchar(255)" json:"nombre"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'user'" json:"rol"`
	IsActive     bool       `gorm:"not null;default:true" json:"-"`
	LastLoginAt  *time.Time `json:"-"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"-"`
}
