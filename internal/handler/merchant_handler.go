package handler

import (
	"net/http"

	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /merchant 配下（店舗・自店舗の注文・集計）
type MerchantHandler struct {
	shops       *usecase.ShopUsecase
	queries     *usecase.OrderQueryUsecase
	transitions *usecase.OrderTransitionUsecase
	stats       *usecase.StatsUsecase
}

func NewMerchantHandler(shops *usecase.ShopUsecase, queries *usecase.OrderQueryUsecase, transitions *usecase.OrderTransitionUsecase, stats *usecase.StatsUsecase) *MerchantHandler {
	return &MerchantHandler{shops: shops, queries: queries, transitions: transitions, stats: stats}
}

type ShopApplyRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Logo string `json:"logo" validate:"max=500"`
}

func (h *MerchantHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/shop", h.applyShop)
	g.GET("/shop", h.myShop)
	g.GET("/orders", h.listOrders)
	g.GET("/orders/:id", h.orderDetail)
	g.POST("/orders/:id/ship", h.ship)
	g.GET("/stats", h.statsSummary)
}

func (h *MerchantHandler) applyShop(c echo.Context) error {
	var req ShopApplyRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.shops.Apply(c.Request().Context(), callerOf(c), req.Name, req.Logo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *MerchantHandler) myShop(c echo.Context) error {
	out, err := h.shops.MyShop(c.Request().Context(), callerOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MerchantHandler) listOrders(c echo.Context) error {
	var q OrderListQuery
	if err := bind(c, &q); err != nil {
		return writeError(c, err)
	}
	status, err := parseStatus(q.Status)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.queries.ListShopOrders(c.Request().Context(), callerOf(c), usecase.OrderListInput{
		Status: status,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MerchantHandler) orderDetail(c echo.Context) error {
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

func (h *MerchantHandler) ship(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.transitions.Ship(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MerchantHandler) statsSummary(c echo.Context) error {
	out, err := h.stats.MerchantStats(c.Request().Context(), callerOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
