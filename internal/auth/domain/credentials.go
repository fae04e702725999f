package domain

import (
	"time"

	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
)

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare 哈希匹配返回 true
	Compare(hash, password string) bool
}

// TokenManager 签发与校验访问令牌
type TokenManager interface {
	Issue(user *userdomain.User) (token string, expiresAt time.Time, err error)
	Parse(token string) (*Identity, error)
}
