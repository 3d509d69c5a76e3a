// File: internal/repository/tx/tx.go
package tx

import (
	"context"

	"gorm.io/gorm"
)

// Manager runs a function with every repository write inside one database
// transaction. The transactional handle travels on the context; repositories
// resolve it through DBFromContext.
type Manager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ctxKey struct{}

// GormManager is the gorm-backed Manager.
type GormManager struct {
	db *gorm.DB
}

func NewGormManager(db *gorm.DB) *GormManager {
	return &GormManager{db: db}
}

// Do runs fn inside a transaction. Any error from fn rolls back every write
// made through the context-carried handle.
func (m *GormManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxKey{}, txDB))
	})
}

// DBFromContext returns the transaction handle carried by ctx, or fallback
// when the call is not transactional.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if txDB, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok {
		return txDB
	}
	return fallback
}
