// Package security 提供密码哈希与 JWT 令牌实现
package security

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost 允许的最低成本因子
const MinBcryptCost = 12

// BcryptHasher 基于 bcrypt 的密码哈希
type BcryptHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewBcryptHasher 创建哈希器，cost 低于 MinBcryptCost 时取 MinBcryptCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash 计算密码哈希
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare 校验密码
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDummy 对一个固定哈希执行比较，用于用户不存在时保持耗时一致
func (h *BcryptHasher) CompareDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
