package usecase

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"go.uber.org/zap"
)

const (
	maxBuyerLimit = 50
	maxAdminLimit = 100
)

type OrderQueryUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	log   *zap.Logger
}

func NewOrderQueryUsecase(tx repo.TransactionManager, clock Clock, log *zap.Logger) *OrderQueryUsecase {
	return &OrderQueryUsecase{tx: tx, clock: clock, log: log}
}

type OrderListInput struct {
	Status model.OrderStatus // 0は全て
	Page   int
	Limit  int
}

type AdminOrderListInput struct {
	Status  model.OrderStatus
	OrderNo string
	ShopID  *int64
	UserID  *int64
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
}

// 購入者自身の注文一覧
func (u *OrderQueryUsecase) ListMyOrders(ctx context.Context, caller authz.Caller, in OrderListInput) (OrderListOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return OrderListOutput{}, err
	}
	page, limit, err := pageOf(in.Page, in.Limit, maxBuyerLimit)
	if err != nil {
		return OrderListOutput{}, err
	}

	userID := caller.UserID
	return u.list(ctx, repo.OrderListFilter{Page: page, Limit: limit, Status: in.Status, UserID: &userID})
}

// マーチャントの店舗の注文一覧（店舗が無ければ空）
func (u *OrderQueryUsecase) ListShopOrders(ctx context.Context, caller authz.Caller, in OrderListInput) (OrderListOutput, error) {
	if err := authz.RequireRole(caller, model.RoleMerchant); err != nil {
		return OrderListOutput{}, err
	}
	page, limit, err := pageOf(in.Page, in.Limit, maxBuyerLimit)
	if err != nil {
		return OrderListOutput{}, err
	}

	var out OrderListOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		shop, ok, err := authz.NewGate(r.Shops()).MerchantShop(ctx, caller)
		if err != nil {
			return err
		}
		if !ok {
			out = OrderListOutput{Items: []OrderOutput{}, Page: page, Limit: limit}
			return nil
		}
		out, err = listWith(ctx, r, repo.OrderListFilter{Page: page, Limit: limit, Status: in.Status, ShopID: &shop.ID})
		return err
	})
	if err != nil {
		return OrderListOutput{}, asAppErr(err)
	}
	return out, nil
}

// 管理者の注文一覧
func (u *OrderQueryUsecase) ListAllOrders(ctx context.Context, caller authz.Caller, in AdminOrderListInput) (OrderListOutput, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return OrderListOutput{}, err
	}
	page, limit, err := pageOf(in.Page, in.Limit, maxAdminLimit)
	if err != nil {
		return OrderListOutput{}, err
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return OrderListOutput{}, apperr.Validation("from must be before to")
	}

	return u.list(ctx, repo.OrderListFilter{
		Page:    page,
		Limit:   limit,
		Status:  in.Status,
		OrderNo: in.OrderNo,
		UserID:  in.UserID,
		ShopID:  in.ShopID,
		From:    in.From,
		To:      in.To,
	})
}

func (u *OrderQueryUsecase) list(ctx context.Context, f repo.OrderListFilter) (OrderListOutput, error) {
	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		out, err = listWith(ctx, r, f)
		return err
	})
	if err != nil {
		return OrderListOutput{}, asAppErr(err)
	}
	return out, nil
}

func listWith(ctx context.Context, r repo.TxRepos, f repo.OrderListFilter) (OrderListOutput, error) {
	orders, total, err := r.Orders().List(ctx, f)
	if err != nil {
		return OrderListOutput{}, errDB
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemsByOrder, err := r.OrderItems().ListByOrderIDs(ctx, ids)
	if err != nil {
		return OrderListOutput{}, errDB
	}

	items := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderOutput(o, itemsByOrder[o.ID]))
	}
	return OrderListOutput{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// 注文詳細。購入者は自分の、マーチャントは自店舗の、管理者は全て。
func (u *OrderQueryUsecase) GetOrder(ctx context.Context, caller authz.Caller, orderID int64) (OrderOutput, error) {
	if caller.IsAnonymous() {
		return OrderOutput{}, apperr.Forbidden("login required")
	}
	if orderID <= 0 {
		return OrderOutput{}, apperr.Validation("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return lookupErr(err, "order")
		}
		if err := authz.NewGate(r.Shops()).CanReadOrder(ctx, caller, o); err != nil {
			return err
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return errDB
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, asAppErr(err)
	}
	return out, nil
}

// 管理者による削除。明細も消して監査ログを残す。
func (u *OrderQueryUsecase) DeleteOrder(ctx context.Context, caller authz.Caller, orderID int64) error {
	if err := authz.RequireAdmin(caller); err != nil {
		return err
	}
	if orderID <= 0 {
		return apperr.Validation("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return lookupErr(err, "order")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
			return errDB
		}
		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			return lookupErr(err, "order")
		}

		beforeJSON, _ := json.Marshal(map[string]any{
			"order_no":     o.OrderNo,
			"status":       o.Status.String(),
			"total_amount": o.TotalAmount.StringFixed(2),
		})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  caller.UserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   string(beforeJSON),
			AfterJSON:    "{}",
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return errDB
		}
		return nil
	})
	if err != nil {
		return asAppErr(err)
	}

	u.log.Info("order deleted", zap.Int64("order_id", orderID), zap.Int64("admin_id", caller.UserID))
	return nil
}
