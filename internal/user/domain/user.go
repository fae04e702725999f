package domain

import (
	"strings"

	"gorm.io/gorm"
)

// Role 用户角色
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// User 用户
type User struct {
	gorm.Model
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Name         string `gorm:"column:name;type:varchar(100);not null"`
	Phone        string `gorm:"column:phone;type:varchar(32)"`
	Address      string `gorm:"column:address;type:varchar(512)"`
	Role         Role   `gorm:"column:role;type:varchar(16);not null"`
	Active       bool   `gorm:"column:active;not null"`
}

func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NormalizeEmail 统一邮箱大小写与空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
