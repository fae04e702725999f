// Package dbtest 为测试提供基于内存 SQLite 的数据库实例
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/wyfcoding/storefront/pkg/db"
)

// New 创建独立的内存库并建表；单连接保证事务之间串行
func New(t testing.TB, models ...any) *db.DB {
	t.Helper()

	database, err := db.Init(db.Config{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := database.AutoMigrate(context.Background(), models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}
