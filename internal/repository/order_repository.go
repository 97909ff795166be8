package repository

import (
	"context"

	"clickgo/internal/domain/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) error
	// pendingのときだけ状態を進める。falseなら他の遷移が先に勝っている
	UpdateStatusIfPending(ctx context.Context, orderID string, status model.OrderStatus) (bool, error)

	//表示用日時の追記（commit後のベストエフォート更新で使う）
	SetCreatedAtText(ctx context.Context, orderID string, text string) error
}
