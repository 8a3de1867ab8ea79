package handler

import (
	"net/http"

	"marketplace/internal/apperr"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin の注文管理と全体集計
type AdminOrderHandler struct {
	queries     *usecase.OrderQueryUsecase
	transitions *usecase.OrderTransitionUsecase
	stats       *usecase.StatsUsecase
}

func NewAdminOrderHandler(queries *usecase.OrderQueryUsecase, transitions *usecase.OrderTransitionUsecase, stats *usecase.StatsUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{queries: queries, transitions: transitions, stats: stats}
}

type AdminOrderListQuery struct {
	Status  string `query:"status"`
	OrderNo string `query:"order_no" validate:"max=32"`
	ShopID  int64  `query:"shop_id" validate:"gte=0"`
	UserID  int64  `query:"user_id" validate:"gte=0"`
	From    string `query:"from"`
	To      string `query:"to"`
	Page    int    `query:"page" validate:"gte=0"`
	Limit   int    `query:"limit" validate:"gte=0,lte=100"`
}

// statusは "SHIPPED" でも 3 でも可
type OrderStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func (h *AdminOrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
	g.PUT("/orders/:id/status", h.updateStatus)
	g.POST("/orders/:id/cancel", h.cancel)
	g.DELETE("/orders/:id", h.delete)
	g.GET("/stats", h.statsSummary)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	var q AdminOrderListQuery
	if err := bind(c, &q); err != nil {
		return writeError(c, err)
	}

	status, err := parseStatus(q.Status)
	if err != nil {
		return writeError(c, err)
	}
	from, err := parseTime("from", q.From)
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseTime("to", q.To)
	if err != nil {
		return writeError(c, err)
	}

	in := usecase.AdminOrderListInput{
		Status:  status,
		OrderNo: q.OrderNo,
		From:    from,
		To:      to,
		Page:    q.Page,
		Limit:   q.Limit,
	}
	if q.ShopID > 0 {
		in.ShopID = &q.ShopID
	}
	if q.UserID > 0 {
		in.UserID = &q.UserID
	}

	out, err := h.queries.ListAllOrders(c.Request().Context(), callerOf(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
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

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req OrderStatusUpdateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return writeError(c, err)
	}
	if status == 0 {
		return writeError(c, apperr.Validation("invalid status"))
	}

	out, err := h.transitions.AdminOverride(c.Request().Context(), callerOf(c), orderID, status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) cancel(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.transitions.Cancel(c.Request().Context(), callerOf(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) delete(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.queries.DeleteOrder(c.Request().Context(), callerOf(c), orderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminOrderHandler) statsSummary(c echo.Context) error {
	out, err := h.stats.AdminStats(c.Request().Context(), callerOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
