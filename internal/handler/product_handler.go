package handler

import (
	"net/http"

	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type ProductListQuery struct {
	Page   int    `query:"page" validate:"gte=0"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Q      string `query:"q" validate:"max=100"`
	ShopID int64  `query:"shop_id" validate:"gte=0"`
	Sort   string `query:"sort" validate:"omitempty,oneof=new price_asc price_desc"`
}

type ProductCreateRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Image    string `json:"image" validate:"max=500"`
	Price    string `json:"price" validate:"required"`
	Stock    int64  `json:"stock" validate:"gte=0"`
	IsOnSale *bool  `json:"is_on_sale"`
}

type ProductUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=255"`
	Image *string `json:"image" validate:"omitempty,max=500"`
	Price *string `json:"price"`
	Stock *int64  `json:"stock" validate:"omitempty,gte=0"`
}

type ProductSaleRequest struct {
	IsOnSale *bool `json:"is_on_sale" validate:"required"`
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

// マーチャントの出品管理（/merchant配下）
func (h *ProductHandler) RegisterMerchantRoutes(g *echo.Group) {
	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.PUT("/products/:id/sale", h.setSale)
}

func (h *ProductHandler) list(c echo.Context) error {
	var q ProductListQuery
	if err := bind(c, &q); err != nil {
		return writeError(c, err)
	}

	in := usecase.ListProductsInput{Page: q.Page, Limit: q.Limit, Q: q.Q, Sort: q.Sort}
	if q.ShopID > 0 {
		in.ShopID = &q.ShopID
	}
	out, err := h.uc.ListPublic(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.GetPublic(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductCreateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Create(c.Request().Context(), callerOf(c), usecase.CreateProductInput{
		Name:     req.Name,
		Image:    req.Image,
		Price:    req.Price,
		Stock:    req.Stock,
		IsOnSale: req.IsOnSale,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req ProductUpdateRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Update(c.Request().Context(), callerOf(c), id, usecase.UpdateProductInput{
		Name:  req.Name,
		Image: req.Image,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) setSale(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req ProductSaleRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.SetOnSale(c.Request().Context(), callerOf(c), id, *req.IsOnSale)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
