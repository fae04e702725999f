// Package contextx 在 context 中传递数据库事务
package contextx

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx 把事务句柄放入 context
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx 取出 context 中的事务，不存在时返回 nil
func GetTx(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return nil
	}
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// DB 返回 context 中的事务；没有事务时返回 fallback 绑定 ctx 后的句柄
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx := GetTx(ctx); tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
