package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	"marketplace/internal/metrics"
	repo "marketplace/internal/repository"

	"go.uber.org/zap"
)

// OrderTransitionUsecase は注文ステータスの変更。
// 全ての変更は 所有チェック → ステータス確認 → compare-and-set の順。
type OrderTransitionUsecase struct {
	tx      repo.TransactionManager
	clock   Clock
	metrics metrics.Recorder
	log     *zap.Logger
}

func NewOrderTransitionUsecase(tx repo.TransactionManager, clock Clock, rec metrics.Recorder, log *zap.Logger) *OrderTransitionUsecase {
	return &OrderTransitionUsecase{tx: tx, clock: clock, metrics: rec, log: log}
}

type OrderStatusOutput struct {
	OrderID   int64  `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Status    string `json:"status"`
	Label     string `json:"status_label"`
	Unchanged bool   `json:"unchanged,omitempty"`
}

func toStatusOutput(o model.Order) OrderStatusOutput {
	return OrderStatusOutput{OrderID: o.ID, OrderNo: o.OrderNo, Status: o.Status.String(), Label: o.Status.Label()}
}

// 名前付き遷移の定義
type transition struct {
	name      string
	from      model.OrderStatus
	to        model.OrderStatus
	authorize func(ctx context.Context, gate *authz.Gate, c authz.Caller, o model.Order) error
}

var (
	payTransition = transition{
		name: "pay",
		from: model.OrderStatusPendingPayment,
		to:   model.OrderStatusPaid,
		authorize: func(_ context.Context, _ *authz.Gate, c authz.Caller, o model.Order) error {
			return authz.RequireBuyerOwner(c, o)
		},
	}
	shipTransition = transition{
		name: "ship",
		from: model.OrderStatusPaid,
		to:   model.OrderStatusShipped,
		authorize: func(ctx context.Context, gate *authz.Gate, c authz.Caller, o model.Order) error {
			return gate.RequireShopOwner(ctx, c, o)
		},
	}
	confirmTransition = transition{
		name: "confirm",
		from: model.OrderStatusShipped,
		to:   model.OrderStatusCompleted,
		authorize: func(_ context.Context, _ *authz.Gate, c authz.Caller, o model.Order) error {
			return authz.RequireBuyerOwner(c, o)
		},
	}
	//購入者本人か管理者
	cancelTransition = transition{
		name: "cancel",
		from: model.OrderStatusPendingPayment,
		to:   model.OrderStatusCancelled,
		authorize: func(_ context.Context, _ *authz.Gate, c authz.Caller, o model.Order) error {
			if c.Is(model.RoleAdmin) {
				return nil
			}
			return authz.RequireBuyerOwner(c, o)
		},
	}
)

// 購入者が支払う（PendingPayment → Paid）
func (u *OrderTransitionUsecase) Pay(ctx context.Context, caller authz.Caller, orderID int64) (OrderStatusOutput, error) {
	return u.run(ctx, caller, payTransition, byID(orderID))
}

// 注文番号で支払う
func (u *OrderTransitionUsecase) PayByOrderNo(ctx context.Context, caller authz.Caller, orderNo string) (OrderStatusOutput, error) {
	if orderNo == "" {
		return OrderStatusOutput{}, apperr.Validation("order_no is required")
	}
	return u.run(ctx, caller, payTransition, func(ctx context.Context, r repo.OrderRepository) (model.Order, error) {
		return r.FindByOrderNo(ctx, orderNo)
	})
}

// マーチャントが発送する（Paid → Shipped）
func (u *OrderTransitionUsecase) Ship(ctx context.Context, caller authz.Caller, orderID int64) (OrderStatusOutput, error) {
	return u.run(ctx, caller, shipTransition, byID(orderID))
}

// 購入者が受け取りを確認する（Shipped → Completed）
func (u *OrderTransitionUsecase) Confirm(ctx context.Context, caller authz.Caller, orderID int64) (OrderStatusOutput, error) {
	return u.run(ctx, caller, confirmTransition, byID(orderID))
}

// 支払い前の取消（PendingPayment → Cancelled）
func (u *OrderTransitionUsecase) Cancel(ctx context.Context, caller authz.Caller, orderID int64) (OrderStatusOutput, error) {
	return u.run(ctx, caller, cancelTransition, byID(orderID))
}

type orderFinder func(ctx context.Context, r repo.OrderRepository) (model.Order, error)

func byID(orderID int64) orderFinder {
	return func(ctx context.Context, r repo.OrderRepository) (model.Order, error) {
		if orderID <= 0 {
			return model.Order{}, apperr.Validation("invalid id")
		}
		return r.FindByID(ctx, orderID)
	}
}

func (u *OrderTransitionUsecase) run(ctx context.Context, caller authz.Caller, t transition, find orderFinder) (OrderStatusOutput, error) {
	if caller.IsAnonymous() {
		u.metrics.Transition(t.name, string(apperr.CodeForbidden))
		return OrderStatusOutput{}, apperr.Forbidden("login required")
	}

	var out OrderStatusOutput
	var order model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := find(ctx, r.Orders())
		if err != nil {
			return lookupErr(err, "order")
		}
		order = o

		if err := t.authorize(ctx, authz.NewGate(r.Shops()), caller, o); err != nil {
			return err
		}

		if o.Status != t.from || !model.CanTransition(o.Status, t.to) {
			return apperr.InvalidTransition(fmt.Sprintf("cannot %s an order in status %s", t.name, o.Status))
		}

		stamps := model.StampsFor(t.to, u.clock.Now())
		ok, err := r.Orders().CompareAndSetStatus(ctx, o.ID, t.from, t.to, stamps)
		if err != nil {
			return errDB
		}
		if !ok {
			return apperr.InvalidTransition("order status changed concurrently")
		}

		//管理者による取消は記録する
		if caller.Is(model.RoleAdmin) {
			if err := writeStatusAudit(ctx, r.AuditLogs(), caller, o, t.to, u.clock); err != nil {
				return err
			}
		}

		o.Status = t.to
		out = toStatusOutput(o)
		return nil
	})

	u.metrics.Transition(t.name, resultOf(err))
	if err != nil {
		err = asAppErr(err)
		if he, _ := apperr.As(err); he.Code == apperr.CodeInternal {
			u.log.Error("order transition failed",
				zap.String("transition", t.name),
				zap.Int64("order_id", order.ID),
				zap.Int64("caller_id", caller.UserID),
				zap.Error(err),
			)
		}
		return OrderStatusOutput{}, err
	}

	u.log.Info("order transitioned",
		zap.String("transition", t.name),
		zap.Int64("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
		zap.Int64("buyer_id", order.UserID),
		zap.Int64("shop_id", order.ShopID),
		zap.String("status", out.Status),
	)
	return out, nil
}

// AdminOverride は管理者がステータスを直接設定する。
// 遷移表は通らないが、見たステータスからのcompare-and-setにはする。
// タイムスタンプは支払い/発送と同じ規則で付ける。
func (u *OrderTransitionUsecase) AdminOverride(ctx context.Context, caller authz.Caller, orderID int64, status model.OrderStatus) (OrderStatusOutput, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return OrderStatusOutput{}, err
	}
	if orderID <= 0 {
		return OrderStatusOutput{}, apperr.Validation("invalid id")
	}
	if !status.Valid() {
		return OrderStatusOutput{}, apperr.Validation("invalid status")
	}

	var out OrderStatusOutput
	var before model.OrderStatus

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return lookupErr(err, "order")
		}
		before = o.Status

		// すでに同じなら何もしない
		if o.Status == status {
			out = toStatusOutput(o)
			out.Unchanged = true
			return nil
		}

		ok, err := r.Orders().CompareAndSetStatus(ctx, o.ID, o.Status, status, model.StampsFor(status, u.clock.Now()))
		if err != nil {
			return errDB
		}
		if !ok {
			return apperr.InvalidTransition("order status changed concurrently")
		}

		if err := writeStatusAudit(ctx, r.AuditLogs(), caller, o, status, u.clock); err != nil {
			return err
		}

		o.Status = status
		out = toStatusOutput(o)
		return nil
	})

	u.metrics.Transition("admin_override", resultOf(err))
	if err != nil {
		return OrderStatusOutput{}, asAppErr(err)
	}

	u.log.Info("order status overridden",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", caller.UserID),
		zap.String("from", before.String()),
		zap.String("to", status.String()),
	)
	return out, nil
}

func writeStatusAudit(ctx context.Context, logs repo.AuditLogRepository, caller authz.Caller, o model.Order, to model.OrderStatus, clock Clock) error {
	beforeJSON, _ := json.Marshal(map[string]string{"status": o.Status.String()})
	afterJSON, _ := json.Marshal(map[string]string{"status": to.String()})

	if err := logs.Create(ctx, model.AuditLog{
		ActorUserID:  caller.UserID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   o.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    clock.Now(),
	}); err != nil {
		return errDB
	}
	return nil
}
