package usecase

import (
	"context"
	"time"

	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// StatsUsecase は注文テーブルから都度集計する（キャッシュしない）
type StatsUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewStatsUsecase(tx repo.TransactionManager, clock Clock) *StatsUsecase {
	return &StatsUsecase{tx: tx, clock: clock}
}

type StatusCount struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

type OrderStats struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"by_status"`
	// 完了した注文の合計金額
	Revenue string `json:"revenue"`
}

type ShopCounts struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type ProductCounts struct {
	OnSale  int64 `json:"on_sale"`
	OffSale int64 `json:"off_sale"`
}

type AdminStatsOutput struct {
	Orders   OrderStats    `json:"orders"`
	Shops    ShopCounts    `json:"shops"`
	Products ProductCounts `json:"products"`
}

type MerchantStatsOutput struct {
	HasShop     bool          `json:"has_shop"`
	ShopID      int64         `json:"shop_id,omitempty"`
	Orders      OrderStats    `json:"orders"`
	TodayOrders int64         `json:"today_orders"`
	Products    ProductCounts `json:"products"`
}

// 全ステータスを0で埋めてから集計結果を入れる
func buildOrderStats(rows []repo.OrderStatusRollup) OrderStats {
	counts := make(map[model.OrderStatus]int64, len(rows))
	revenue := decimal.Zero
	var total int64
	for _, rw := range rows {
		counts[rw.Status] += rw.Count
		total += rw.Count
		if rw.Status == model.OrderStatusCompleted {
			revenue = revenue.Add(rw.Amount)
		}
	}

	by := make([]StatusCount, 0, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		by = append(by, StatusCount{Status: s.String(), Code: int(s), Label: s.Label(), Count: counts[s]})
	}
	return OrderStats{Total: total, ByStatus: by, Revenue: revenue.StringFixed(2)}
}

func (u *StatsUsecase) AdminStats(ctx context.Context, caller authz.Caller) (AdminStatsOutput, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return AdminStatsOutput{}, err
	}

	var out AdminStatsOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rows, err := r.Orders().RollupByStatus(ctx, repo.OrderStatsScope{})
		if err != nil {
			return errDB
		}
		out.Orders = buildOrderStats(rows)

		shops, err := r.Shops().CountByStatus(ctx)
		if err != nil {
			return errDB
		}
		out.Shops = ShopCounts{
			Pending:  shops[model.ShopStatusPending],
			Approved: shops[model.ShopStatusApproved],
			Rejected: shops[model.ShopStatusRejected],
		}

		onSale, offSale, err := r.Products().CountByShop(ctx, nil)
		if err != nil {
			return errDB
		}
		out.Products = ProductCounts{OnSale: onSale, OffSale: offSale}
		return nil
	})
	if err != nil {
		return AdminStatsOutput{}, asAppErr(err)
	}
	return out, nil
}

// 店舗が無いマーチャントは全て0
func (u *StatsUsecase) MerchantStats(ctx context.Context, caller authz.Caller) (MerchantStatsOutput, error) {
	if err := authz.RequireRole(caller, model.RoleMerchant); err != nil {
		return MerchantStatsOutput{}, err
	}

	out := MerchantStatsOutput{Orders: buildOrderStats(nil)}
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		shop, ok, err := authz.NewGate(r.Shops()).MerchantShop(ctx, caller)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		out.HasShop = true
		out.ShopID = shop.ID

		rows, err := r.Orders().RollupByStatus(ctx, repo.OrderStatsScope{ShopID: &shop.ID})
		if err != nil {
			return errDB
		}
		out.Orders = buildOrderStats(rows)

		//今日（UTC）の注文数
		start := u.clock.Now().UTC().Truncate(24 * time.Hour)
		end := start.Add(24 * time.Hour)
		today, err := r.Orders().RollupByStatus(ctx, repo.OrderStatsScope{ShopID: &shop.ID, From: &start, To: &end})
		if err != nil {
			return errDB
		}
		for _, rw := range today {
			out.TodayOrders += rw.Count
		}

		onSale, offSale, err := r.Products().CountByShop(ctx, &shop.ID)
		if err != nil {
			return errDB
		}
		out.Products = ProductCounts{OnSale: onSale, OffSale: offSale}
		return nil
	})
	if err != nil {
		return MerchantStatsOutput{}, asAppErr(err)
	}
	return out, nil
}

// 購入者のステータス別件数
func (u *StatsUsecase) BuyerStats(ctx context.Context, caller authz.Caller) (OrderStats, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return OrderStats{}, err
	}

	var out OrderStats
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		userID := caller.UserID
		rows, err := r.Orders().RollupByStatus(ctx, repo.OrderStatsScope{UserID: &userID})
		if err != nil {
			return errDB
		}
		out = buildOrderStats(rows)
		return nil
	})
	if err != nil {
		return OrderStats{}, asAppErr(err)
	}
	return out, nil
}
