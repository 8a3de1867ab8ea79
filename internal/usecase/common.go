package usecase

import (
	"errors"
	"net/http"
	"time"

	"marketplace/internal/apperr"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type OrderNoGenerator interface {
	NewOrderNo() string
}

var errDB = apperr.New(http.StatusInternalServerError, apperr.CodeInternal, "db error")

// Tx内で返したHTTPErrorはそのまま、それ以外はdb error
func asAppErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return errDB
}

// NotFoundだけ404、他はdb error
func lookupErr(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return asAppErr(err)
}

// メトリクスのラベル用
func resultOf(err error) string {
	if err == nil {
		return "ok"
	}
	if he, ok := apperr.As(err); ok {
		return string(he.Code)
	}
	return string(apperr.CodeInternal)
}

// ページング（0は既定値、範囲外はVALIDATION）
func pageOf(page, limit, maxLimit int) (int, int, error) {
	if page < 0 {
		return 0, 0, apperr.Validation("invalid page")
	}
	if limit < 0 || limit > maxLimit {
		return 0, 0, apperr.Validation("invalid limit")
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}
	return page, limit, nil
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	OrderNo     string            `json:"order_no"`
	UserID      int64             `json:"user_id"`
	ShopID      int64             `json:"shop_id"`
	Status      string            `json:"status"`
	StatusCode  int               `json:"status_code"`
	StatusLabel string            `json:"status_label"`
	TotalAmount string            `json:"total_amount"`
	Address     string            `json:"address"`
	PaidAt      *time.Time        `json:"paid_at"`
	ShippedAt   *time.Time        `json:"shipped_at"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Image:     it.ProductImage,
			Price:     it.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}

	return OrderOutput{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		ShopID:      o.ShopID,
		Status:      o.Status.String(),
		StatusCode:  int(o.Status),
		StatusLabel: o.Status.Label(),
		TotalAmount: o.TotalAmount.StringFixed(2),
		Address:     o.Address,
		PaidAt:      o.PaidAt,
		ShippedAt:   o.ShippedAt,
		CreatedAt:   o.CreatedAt,
		Items:       outItems,
	}
}
