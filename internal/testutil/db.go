// Package testutil 测试专用的公共构造器
package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"neontask/internal/core/auth"
	"neontask/internal/core/database"
)

// NewDB 每个测试一份独立的内存 SQLite；单连接保证同一个库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func NewJWTer() *auth.JWTer {
	return &auth.JWTer{Secret: []byte("test-secret"), Issuer: "neontask-test", TTL: time.Hour}
}
