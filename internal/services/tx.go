package services

import (
	"context"

	"gorm.io/gorm"
)

// withTransaction выполняет fn в транзакции. Любая ошибка из fn
// откатывает транзакцию и возвращается вызывающему без изменений.
func withTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
