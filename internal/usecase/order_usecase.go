package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	"marketplace/internal/metrics"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxAddressLen     = 500
	maxIdemKeyLen     = 255
	orderNoMaxAttempt = 5
)

// OrderUsecase はカートから注文を作る（チェックアウト）。
type OrderUsecase struct {
	tx       repo.TransactionManager
	orderNos OrderNoGenerator
	clock    Clock
	metrics  metrics.Recorder
	log      *zap.Logger
}

func NewOrderUsecase(tx repo.TransactionManager, orderNos OrderNoGenerator, clock Clock, rec metrics.Recorder, log *zap.Logger) *OrderUsecase {
	return &OrderUsecase{tx: tx, orderNos: orderNos, clock: clock, metrics: rec, log: log}
}

type SubmitOrderInput struct {
	// 空なら全てのカート明細
	ProductIDs []int64
	// AddressとAddressIDはどちらか
	Address        string
	AddressID      int64
	IdempotencyKey string
}

type SubmitOrderOutput struct {
	OrderID     int64  `json:"order_id"`
	OrderNo     string `json:"order_no"`
	TotalAmount string `json:"total_amount"`
	// 同じキーで作成済みだった
	Replayed bool `json:"replayed"`
}

// 確定時に読み直した商品と数量
type checkoutLine struct {
	cartItemID int64
	product    model.Product
	quantity   int64
}

func (u *OrderUsecase) SubmitOrder(ctx context.Context, caller authz.Caller, in SubmitOrderInput) (SubmitOrderOutput, error) {
	out, err := u.submit(ctx, caller, in)
	u.metrics.Checkout(resultOf(err))
	if err != nil {
		if he, ok := apperr.As(err); !ok || he.Code == apperr.CodeInternal {
			u.log.Error("checkout failed", zap.Int64("buyer_id", caller.UserID), zap.Error(err))
		}
		return SubmitOrderOutput{}, err
	}

	u.log.Info("order submitted",
		zap.Int64("buyer_id", caller.UserID),
		zap.Int64("order_id", out.OrderID),
		zap.String("order_no", out.OrderNo),
		zap.Bool("replayed", out.Replayed),
	)
	return out, nil
}

func (u *OrderUsecase) submit(ctx context.Context, caller authz.Caller, in SubmitOrderInput) (SubmitOrderOutput, error) {
	if err := authz.RequireRole(caller, model.RoleBuyer); err != nil {
		return SubmitOrderOutput{}, err
	}
	buyerID := caller.UserID

	address := strings.TrimSpace(in.Address)
	if in.AddressID <= 0 {
		if address == "" {
			return SubmitOrderOutput{}, apperr.Validation("address or address_id is required")
		}
		if len(address) > maxAddressLen {
			return SubmitOrderOutput{}, apperr.Validation("address too long")
		}
	}

	var idemKey *string
	if k := strings.TrimSpace(in.IdempotencyKey); k != "" {
		if len(k) > maxIdemKeyLen {
			return SubmitOrderOutput{}, apperr.Validation("idempotency key too long")
		}
		idemKey = &k
	}

	productIDs := uniqueIDs(in.ProductIDs)

	var out SubmitOrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ注文番号を返す
		if idemKey != nil {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, buyerID, *idemKey)
			if err != nil {
				return errDB
			}
			if found {
				out = SubmitOrderOutput{
					OrderID:     existing.ID,
					OrderNo:     existing.OrderNo,
					TotalAmount: existing.TotalAmount.StringFixed(2),
					Replayed:    true,
				}
				return nil
			}
		}

		//保存済み住所は本人のものだけ
		if in.AddressID > 0 {
			addr, err := r.Addresses().FindByID(ctx, in.AddressID)
			if err != nil {
				return lookupErr(err, "address")
			}
			if addr.UserID != buyerID {
				return apperr.Forbidden("address belongs to another user")
			}
			address = addr.Format()
		}

		//同じ購入者の同時チェックアウトはここで直列化される
		cartItems, err := r.CartItems().ListByUserForUpdate(ctx, buyerID, productIDs)
		if err != nil {
			return errDB
		}
		if len(cartItems) == 0 {
			return apperr.ErrEmptyCart
		}

		lines, shopID, err := resolveLines(ctx, r.Products(), cartItems)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.product.Price.Mul(decimal.NewFromInt(l.quantity)))
		}

		//店舗が消えていないか再確認
		if _, err := r.Shops().FindByID(ctx, shopID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.ShopUnavailable(fmt.Sprintf("shop %d is not available", shopID))
			}
			return errDB
		}

		orderNo, err := u.newUniqueOrderNo(ctx, r.Orders())
		if err != nil {
			return err
		}

		now := u.clock.Now()
		order, err := r.Orders().Create(ctx, model.Order{
			OrderNo:        orderNo,
			UserID:         buyerID,
			ShopID:         shopID,
			TotalAmount:    total,
			Status:         model.OrderStatusPendingPayment,
			Address:        address,
			IdempotencyKey: idemKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if errors.Is(err, repo.ErrDuplicate) {
			//同じキーの注文が同時に作られた
			return apperr.Conflict("order was submitted concurrently")
		}
		if err != nil {
			return errDB
		}

		//価格・名前・画像はこの時点の値をコピー
		items := make([]model.OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, model.OrderItem{
				ProductID:    l.product.ID,
				ProductName:  l.product.Name,
				ProductImage: l.product.Image,
				Price:        l.product.Price,
				Quantity:     l.quantity,
				CreatedAt:    now,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, order.ID, items); err != nil {
			return errDB
		}

		//読んだ明細が全部消えなければ他の処理と競合している
		ids := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.cartItemID)
		}
		deleted, err := r.CartItems().DeleteByIDs(ctx, ids)
		if err != nil {
			return errDB
		}
		if deleted != int64(len(ids)) {
			return apperr.Conflict("cart changed during checkout")
		}

		out = SubmitOrderOutput{
			OrderID:     order.ID,
			OrderNo:     order.OrderNo,
			TotalAmount: total.StringFixed(2),
		}
		return nil
	})
	if err != nil {
		return SubmitOrderOutput{}, asAppErr(err)
	}
	return out, nil
}

// 商品を読み直して、販売中か・同じ店舗かを確認する
func resolveLines(ctx context.Context, products repo.ProductRepository, cartItems []model.CartItem) ([]checkoutLine, int64, error) {
	lines := make([]checkoutLine, 0, len(cartItems))
	var shopID int64

	for i, ci := range cartItems {
		p, err := products.FindByID(ctx, ci.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, apperr.ProductUnavailable(fmt.Sprintf("product %d is not available", ci.ProductID))
		}
		if err != nil {
			return nil, 0, errDB
		}
		if !p.IsOnSale {
			return nil, 0, apperr.ProductUnavailable(fmt.Sprintf("product %d is not on sale", ci.ProductID))
		}

		//最初の商品の店舗で決まる
		if i == 0 {
			shopID = p.ShopID
		} else if p.ShopID != shopID {
			return nil, 0, apperr.CrossShopOrder(fmt.Sprintf("product %d belongs to another shop", ci.ProductID))
		}

		lines = append(lines, checkoutLine{cartItemID: ci.ID, product: p, quantity: ci.Quantity})
	}
	return lines, shopID, nil
}

func (u *OrderUsecase) newUniqueOrderNo(ctx context.Context, orders repo.OrderRepository) (string, error) {
	for i := 0; i < orderNoMaxAttempt; i++ {
		no := u.orderNos.NewOrderNo()
		exists, err := orders.ExistsOrderNo(ctx, no)
		if err != nil {
			return "", errDB
		}
		if !exists {
			return no, nil
		}
	}
	return "", apperr.Conflict("could not allocate order number")
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
