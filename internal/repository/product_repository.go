package repository

import (
	"clickgo/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (model.Product, error)
	// query はname_lowerへの部分一致。空なら全件
	ListActive(ctx context.Context, query string, page int, limit int) ([]model.Product, int64, error)
	Create(ctx context.Context, p model.Product) error
}
