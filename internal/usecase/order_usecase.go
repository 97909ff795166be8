package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clickgo/internal/domain/model"
	"clickgo/internal/events"
	repo "clickgo/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文イベントを通知する約束。失敗してもログだけで握りつぶす前提。
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event events.OrderCreatedEvent) error
	PublishOrderCanceled(ctx context.Context, event events.OrderCanceledEvent) error
}

// OrderUsecase は注文の作成・キャンセルを1トランザクションで行うエンジン。
// 在庫の読み→検証は全アイテム分を先に済ませてから書き込みを積む。
type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	idGen     IDGenerator
	clock     Clock
	publisher EventPublisher // nilなら配信しない
	logger    *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	idGen IDGenerator,
	clock Clock,
	publisher EventPublisher,
	logger *zap.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		orders:    orders,
		idGen:     idGen,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

type CreateOrderItemInput struct {
	ProductID string
	Name      string
	Price     decimal.Decimal // クライアント申告値。価格には使わない
	Quantity  int64
}

type CreateOrderInput struct {
	Items           []CreateOrderItemInput
	ShippingTier    string
	ShippingAddress string
	PaymentMethod   string
}

type CreateOrderOutput struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

const (
	ShippingTierStandard = "standard"
	ShippingTierExpress  = "express"
)

// 配送コストは2段階の固定テーブル
func shippingCostFor(tier string) decimal.Decimal {
	if tier == ShippingTierExpress {
		return decimal.NewFromInt(10)
	}
	return decimal.NewFromInt(5)
}

func (u *OrderUsecase) CreateOrder(ctx context.Context, callerID string, in CreateOrderInput) (CreateOrderOutput, error) {
	if callerID == "" {
		return CreateOrderOutput{}, NewError(CodeUnauthenticated, "not authenticated")
	}
	if len(in.Items) == 0 {
		return CreateOrderOutput{}, NewError(CodeInvalidArgument, "empty cart")
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return CreateOrderOutput{}, NewError(CodeInvalidArgument, "missing productId")
		}
		if it.Quantity <= 0 {
			return CreateOrderOutput{}, NewError(CodeInvalidArgument, fmt.Sprintf("invalid quantity for %s", it.ProductID))
		}
	}

	tier := in.ShippingTier
	if tier == "" {
		tier = ShippingTierStandard
	}

	orderID := u.idGen.NewID()
	now := u.clock.Now()

	var out CreateOrderOutput
	var createdItems []model.OrderItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		type stockDecrement struct {
			productID string
			name      string
			qty       int64
		}

		subtotal := decimal.Zero
		decrements := make([]stockDecrement, 0, len(in.Items))
		orderItems := make([]model.OrderItem, 0, len(in.Items))

		// まず全アイテムを読み直して検証する。書き込みはこのループでは積まない。
		for _, it := range in.Items {
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewError(CodeNotFound, fmt.Sprintf("product %s not found", it.ProductID))
			}
			if err != nil {
				return NewError(CodeInternal, "db error")
			}

			name := p.Name
			if name == "" {
				name = it.ProductID
			}

			if p.Stock < it.Quantity {
				return NewError(CodeFailedPrecondition, "insufficient stock for "+name)
			}

			// 価格は今読んだDB値で確定（クライアントのprecioは使わない）
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(it.Quantity)))

			orderItems = append(orderItems, model.OrderItem{
				OrderID:           orderID,
				ProductID:         p.ID,
				NameSnapshot:      p.Name,
				UnitPriceSnapshot: p.Price,
				Quantity:          it.Quantity,
				CreatedAt:         now,
			})

			decrements = append(decrements, stockDecrement{productID: p.ID, name: name, qty: it.Quantity})
		}

		// 全検証が通ってから在庫を減らす。条件付きUPDATEが並行注文の最後の砦。
		for _, d := range decrements {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, d.productID, d.qty)
			if err != nil {
				return NewError(CodeInternal, "db error")
			}
			if !ok {
				return NewError(CodeFailedPrecondition, "insufficient stock for "+d.name)
			}
		}

		shippingCost := shippingCostFor(tier)
		total := subtotal.Add(shippingCost)

		order := model.Order{
			ID:            orderID,
			UserID:        callerID,
			Status:        model.OrderStatusPending,
			Subtotal:      subtotal,
			ShippingTier:  tier,
			ShippingCost:  shippingCost,
			Total:         total,
			Address:       in.ShippingAddress,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := r.Orders().Create(ctx, order); err != nil {
			return NewError(CodeInternal, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewError(CodeInternal, "db error")
		}

		createdItems = orderItems
		out = CreateOrderOutput{Success: true, OrderID: orderID}
		return nil
	})
	if err != nil {
		return CreateOrderOutput{}, err
	}

	// ここから先はベストエフォート。失敗してもsuccessは変えない。
	u.backfillCreatedAtText(ctx, orderID, now)
	u.publishCreated(ctx, orderID, callerID, createdItems, now)

	return out, nil
}

type CancelOrderOutput struct {
	Success bool `json:"success"`
}

func (u *OrderUsecase) CancelOrder(ctx context.Context, callerID string, orderID string) (CancelOrderOutput, error) {
	if callerID == "" {
		return CancelOrderOutput{}, NewError(CodeUnauthenticated, "not authenticated")
	}
	if orderID == "" {
		return CancelOrderOutput{}, NewError(CodeInvalidArgument, "missing orderId")
	}

	var ownerID string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(CodeNotFound, "order not found")
		}
		if err != nil {
			return NewError(CodeInternal, "db error")
		}

		// 所有者でないならadminロールが必要（ロールはプロフィールから読む）
		if o.UserID != callerID {
			role, err := resolveRole(ctx, r.Users(), callerID)
			if err != nil {
				return NewError(CodeInternal, "db error")
			}
			if role != model.RoleAdmin {
				return NewError(CodePermissionDenied, "not allowed")
			}
		}

		// 二重キャンセルで在庫を二度戻さない
		if o.Status != model.OrderStatusPending {
			return NewError(CodeFailedPrecondition, "order is not pending")
		}

		// 読みだけでは同時キャンセル同士を防げないので、在庫を戻す前に
		// 条件付きUPDATEで状態を確定させる。負けた側はここで止まる。
		flipped, err := r.Orders().UpdateStatusIfPending(ctx, orderID, model.OrderStatusCanceled)
		if err != nil {
			return NewError(CodeInternal, "db error")
		}
		if !flipped {
			return NewError(CodeFailedPrecondition, "order is not pending")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewError(CodeInternal, "db error")
		}

		for _, it := range items {
			_, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				// 消えた商品はスキップ。残りの在庫戻しは止めない
				continue
			}
			if err != nil {
				return NewError(CodeInternal, "db error")
			}
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return NewError(CodeInternal, "db error")
			}
		}

		ownerID = o.UserID
		return nil
	})
	if err != nil {
		return CancelOrderOutput{}, err
	}

	u.publishCanceled(ctx, orderID, ownerID)

	return CancelOrderOutput{Success: true}, nil
}

type OrderItemOutput struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"nombre"`
	UnitPrice decimal.Decimal `json:"precioUnit"`
	Quantity  int64           `json:"cantidad"`
}

type OrderOutput struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Status        string            `json:"estado"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	ShippingTier  string            `json:"envioTipo"`
	ShippingCost  decimal.Decimal   `json:"envioCosto"`
	Total         decimal.Decimal   `json:"total"`
	CreatedAt     time.Time         `json:"creadoEn"`
	CreatedAtText string            `json:"fechaLegible,omitempty"`
	Items         []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, callerID string) ([]OrderOutput, error) {
	if callerID == "" {
		return []OrderOutput{}, NewError(CodeUnauthenticated, "not authenticated")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, callerID, 1, 50)
		if err != nil {
			return NewError(CodeInternal, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewError(CodeInternal, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 表示用日時をIDで直接書く。commit済みなので失敗はログだけ。
func (u *OrderUsecase) backfillCreatedAtText(ctx context.Context, orderID string, createdAt time.Time) {
	text := createdAt.Format("02/01/2006 15:04")
	if err := u.orders.SetCreatedAtText(ctx, orderID, text); err != nil {
		u.logger.Warn("failed to backfill order display timestamp",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func (u *OrderUsecase) publishCreated(ctx context.Context, orderID string, userID string, items []model.OrderItem, now time.Time) {
	if u.publisher == nil {
		return
	}

	evItems := make([]events.OrderItemEvent, 0, len(items))
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPriceSnapshot.Mul(decimal.NewFromInt(it.Quantity)))
		evItems = append(evItems, events.OrderItemEvent{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			UnitPrice: it.UnitPriceSnapshot.String(),
			Quantity:  it.Quantity,
		})
	}

	ev := events.OrderCreatedEvent{
		EventID:   u.idGen.NewID(),
		OrderID:   orderID,
		UserID:    userID,
		Total:     total.String(),
		Items:     evItems,
		Timestamp: now,
	}
	if err := u.publisher.PublishOrderCreated(ctx, ev); err != nil {
		u.logger.Warn("failed to publish order created event",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func (u *OrderUsecase) publishCanceled(ctx context.Context, orderID string, ownerID string) {
	if u.publisher == nil {
		return
	}

	ev := events.OrderCanceledEvent{
		EventID:   u.idGen.NewID(),
		OrderID:   orderID,
		UserID:    ownerID,
		Reason:    "user_canceled",
		Timestamp: u.clock.Now(),
	}
	if err := u.publisher.PublishOrderCanceled(ctx, ev); err != nil {
		u.logger.Warn("failed to publish order canceled event",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.NameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Subtotal:      o.Subtotal,
		ShippingTier:  o.ShippingTier,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
		CreatedAtText: o.CreatedAtText,
		Items:         outItems,
	}
}
