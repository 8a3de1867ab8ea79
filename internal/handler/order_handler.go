package handler

import (
	"context"
	"net/http"

	"marketplace/internal/authz"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

// 購入者の注文API
type OrderHandler struct {
	orders      *usecase.OrderUsecase
	transitions *usecase.OrderTransitionUsecase
	queries     *usecase.OrderQueryUsecase
	stats       *usecase.StatsUsecase
}

func NewOrderHandler(orders *usecase.OrderUsecase, transitions *usecase.OrderTransitionUsecase, queries *usecase.OrderQueryUsecase, stats *usecase.StatsUsecase) *OrderHandler {
	return &OrderHandler{orders: orders, transitions: transitions, queries: queries, stats: stats}
}

type OrderCreateRequest struct {
	// 空ならカート全体
	ProductIDs []int64 `json:"product_ids" validate:"omitempty,dive,gt=0"`
	Address    string  `json:"address" validate:"max=500"`
	AddressID  int64   `json:"address_id" validate:"gte=0"`
}

type OrderPayRequest struct {
	OrderNo string `json:"order_no" validate:"required,max=32"`
}

type OrderListQuery struct {
	Status string `query:"status"`
	Page   int    `query:"page" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,lte=50"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", h.create)
	g.GET("/orders", h.list)
	g.GET("/orders/count", h.count)
	g.POST("/orders/pay", h.payByOrderNo)
	g.GET("/orders/:id", h.detail)
	g.POST("/orders/:id/pay", h.pay)
	g.POST("/orders/:id/confirm", h.confirm)
	g.POST("/orders/:id/cancel", h.cancel)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get(HeaderIdempotencyKey)

	out, err := h.orders.SubmitOrder(c.Request().Context(), callerOf(c), usecase.SubmitOrderInput{
		ProductIDs:     req.ProductIDs,
		Address:        req.Address,
		AddressID:      req.AddressID,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	if out.Replayed {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	var q OrderListQuery
	if err := bind(c, &q); err != nil {
		return writeError(c, err)
	}
	status, err := parseStatus(q.Status)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.queries.ListMyOrders(c.Request().Context(), callerOf(c), usecase.OrderListInput{
		Status: status,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ステータス別の件数
func (h *OrderHandler) count(c echo.Context) error {
	out, err := h.stats.BuyerStats(c.Request().Context(), callerOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.queries.GetOrder(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) pay(c echo.Context) error {
	return h.transition(c, h.transitions.Pay)
}

func (h *OrderHandler) confirm(c echo.Context) error {
	return h.transition(c, h.transitions.Confirm)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	return h.transition(c, h.transitions.Cancel)
}

func (h *OrderHandler) payByOrderNo(c echo.Context) error {
	var req OrderPayRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.transitions.PayByOrderNo(c.Request().Context(), callerOf(c), req.OrderNo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type transitionFunc func(ctx context.Context, caller authz.Caller, orderID int64) (usecase.OrderStatusOutput, error)

// /:id の遷移は全部同じ形
func (h *OrderHandler) transition(c echo.Context, fn transitionFunc) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := fn(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
