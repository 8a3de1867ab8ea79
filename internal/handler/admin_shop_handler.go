package handler

import (
	"net/http"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin の店舗審査と監査ログ
type AdminShopHandler struct {
	shops  *usecase.ShopUsecase
	audits *usecase.AuditLogUsecase
}

func NewAdminShopHandler(shops *usecase.ShopUsecase, audits *usecase.AuditLogUsecase) *AdminShopHandler {
	return &AdminShopHandler{shops: shops, audits: audits}
}

type AuditLogQuery struct {
	ActorUserID  int64  `query:"actor_user_id" validate:"gte=0"`
	Action       string `query:"action" validate:"omitempty,oneof=UPDATE_ORDER_STATUS DELETE_ORDER REVIEW_SHOP DELETE_SHOP"`
	ResourceType string `query:"resource_type" validate:"omitempty,oneof=order shop"`
	ResourceID   int64  `query:"resource_id" validate:"gte=0"`
	From         string `query:"from"`
	To           string `query:"to"`
	Limit        int    `query:"limit" validate:"gte=0,lte=200"`
	Offset       int    `query:"offset" validate:"gte=0"`
}

func (h *AdminShopHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/shops/pending", h.pending)
	g.PUT("/shops/:id/approve", h.approve)
	g.PUT("/shops/:id/reject", h.reject)
	g.DELETE("/shops/:id", h.delete)
	g.GET("/audit-logs", h.auditLogs)
}

func (h *AdminShopHandler) pending(c echo.Context) error {
	out, err := h.shops.ListPending(c.Request().Context(), callerOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminShopHandler) approve(c echo.Context) error {
	return h.review(c, true)
}

func (h *AdminShopHandler) reject(c echo.Context) error {
	return h.review(c, false)
}

func (h *AdminShopHandler) review(c echo.Context, approve bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.shops.Review(c.Request().Context(), callerOf(c), id, approve)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminShopHandler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.shops.Delete(c.Request().Context(), callerOf(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminShopHandler) auditLogs(c echo.Context) error {
	var q AuditLogQuery
	if err := bind(c, &q); err != nil {
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

	f := repository.AuditLogFilter{CreatedFrom: from, CreatedTo: to, Limit: q.Limit, Offset: q.Offset}
	if q.ActorUserID > 0 {
		f.ActorUserID = &q.ActorUserID
	}
	if q.ResourceID > 0 {
		f.ResourceID = &q.ResourceID
	}
	if q.Action != "" {
		a := model.AuditAction(q.Action)
		f.Action = &a
	}
	if q.ResourceType != "" {
		rt := model.AuditResourceType(q.ResourceType)
		f.ResourceType = &rt
	}

	out, err := h.audits.List(c.Request().Context(), callerOf(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
