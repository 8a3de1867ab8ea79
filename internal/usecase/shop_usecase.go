package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"go.uber.org/zap"
)

type ShopUsecase struct {
	tx    repo.TransactionManager
	shops repo.ShopRepository
	clock Clock
	log   *zap.Logger
}

func NewShopUsecase(tx repo.TransactionManager, shops repo.ShopRepository, clock Clock, log *zap.Logger) *ShopUsecase {
	return &ShopUsecase{tx: tx, shops: shops, clock: clock, log: log}
}

type ShopOutput struct {
	ID         int64     `json:"id"`
	MerchantID int64     `json:"merchant_id"`
	Name       string    `json:"name"`
	Logo       string    `json:"logo"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toShopOutput(s model.Shop) ShopOutput {
	return ShopOutput{
		ID:         s.ID,
		MerchantID: s.MerchantID,
		Name:       s.Name,
		Logo:       s.Logo,
		Status:     s.Status.String(),
		CreatedAt:  s.CreatedAt,
	}
}

// マーチャントの出店申請（1人1店舗、審査待ちで作る）
func (u *ShopUsecase) Apply(ctx context.Context, caller authz.Caller, name, logo string) (ShopOutput, error) {
	if err := authz.RequireRole(caller, model.RoleMerchant); err != nil {
		return ShopOutput{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 255 {
		return ShopOutput{}, apperr.Validation("invalid name")
	}

	created, err := u.shops.Create(ctx, model.Shop{
		MerchantID: caller.UserID,
		Name:       name,
		Logo:       strings.TrimSpace(logo),
		Status:     model.ShopStatusPending,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return ShopOutput{}, apperr.Conflict("merchant already has a shop")
	}
	if err != nil {
		return ShopOutput{}, errDB
	}

	u.log.Info("shop applied", zap.Int64("shop_id", created.ID), zap.Int64("merchant_id", caller.UserID))
	return toShopOutput(created), nil
}

func (u *ShopUsecase) MyShop(ctx context.Context, caller authz.Caller) (ShopOutput, error) {
	shop, ok, err := authz.NewGate(u.shops).MerchantShop(ctx, caller)
	if err != nil {
		return ShopOutput{}, asAppErr(err)
	}
	if !ok {
		return ShopOutput{}, apperr.NotFound("shop not found")
	}
	return toShopOutput(shop), nil
}

func (u *ShopUsecase) ListPending(ctx context.Context, caller authz.Caller) ([]ShopOutput, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return nil, err
	}
	shops, err := u.shops.ListByStatus(ctx, model.ShopStatusPending)
	if err != nil {
		return nil, errDB
	}
	out := make([]ShopOutput, 0, len(shops))
	for _, s := range shops {
		out = append(out, toShopOutput(s))
	}
	return out, nil
}

// 審査（承認/却下）
func (u *ShopUsecase) Review(ctx context.Context, caller authz.Caller, shopID int64, approve bool) (ShopOutput, error) {
	if err := authz.RequireAdmin(caller); err != nil {
		return ShopOutput{}, err
	}
	if shopID <= 0 {
		return ShopOutput{}, apperr.Validation("invalid id")
	}

	next := model.ShopStatusRejected
	if approve {
		next = model.ShopStatusApproved
	}

	var out ShopOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shops().FindByID(ctx, shopID)
		if err != nil {
			return lookupErr(err, "shop")
		}
		if err := r.Shops().UpdateStatus(ctx, shopID, next); err != nil {
			return lookupErr(err, "shop")
		}
		if err := u.audit(ctx, r, caller, model.AuditActionReviewShop, s, map[string]string{"status": next.String()}); err != nil {
			return err
		}
		s.Status = next
		out = toShopOutput(s)
		return nil
	})
	if err != nil {
		return ShopOutput{}, asAppErr(err)
	}

	u.log.Info("shop reviewed", zap.Int64("shop_id", shopID), zap.String("status", next.String()))
	return out, nil
}

// 論理削除（以降のチェックアウトは SHOP_UNAVAILABLE）
func (u *ShopUsecase) Delete(ctx context.Context, caller authz.Caller, shopID int64) error {
	if err := authz.RequireAdmin(caller); err != nil {
		return err
	}
	if shopID <= 0 {
		return apperr.Validation("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Shops().FindByID(ctx, shopID)
		if err != nil {
			return lookupErr(err, "shop")
		}
		if err := r.Shops().Delete(ctx, shopID); err != nil {
			return lookupErr(err, "shop")
		}
		return u.audit(ctx, r, caller, model.AuditActionDeleteShop, s, map[string]string{})
	})
	if err != nil {
		return asAppErr(err)
	}

	u.log.Info("shop deleted", zap.Int64("shop_id", shopID), zap.Int64("admin_id", caller.UserID))
	return nil
}

func (u *ShopUsecase) audit(ctx context.Context, r repo.TxRepos, caller authz.Caller, action model.AuditAction, before model.Shop, after map[string]string) error {
	beforeJSON, _ := json.Marshal(map[string]string{"name": before.Name, "status": before.Status.String()})
	afterJSON, _ := json.Marshal(after)
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  caller.UserID,
		Action:       action,
		ResourceType: model.AuditResourceShop,
		ResourceID:   before.ID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return errDB
	}
	return nil
}
