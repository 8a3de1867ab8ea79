package usecase

import (
	"context"
	"errors"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/authz"
	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductUsecase は商品カタログ（公開の一覧/詳細とマーチャントの登録・編集）
type ProductUsecase struct {
	products repo.ProductRepository
	shops    repo.ShopRepository
}

func NewProductUsecase(products repo.ProductRepository, shops repo.ShopRepository) *ProductUsecase {
	return &ProductUsecase{products: products, shops: shops}
}

type ProductOutput struct {
	ID       int64  `json:"id"`
	ShopID   int64  `json:"shop_id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Price    string `json:"price"`
	Stock    int64  `json:"stock"`
	IsOnSale bool   `json:"is_on_sale"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ListProductsInput struct {
	Page   int
	Limit  int
	Q      string
	ShopID *int64
	Sort   string
}

type CreateProductInput struct {
	Name     string
	Image    string
	Price    string
	Stock    int64
	IsOnSale *bool
}

// nilは変更しない
type UpdateProductInput struct {
	Name  *string
	Image *string
	Price *string
	Stock *int64
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:       p.ID,
		ShopID:   p.ShopID,
		Name:     p.Name,
		Image:    p.Image,
		Price:    p.Price.StringFixed(2),
		Stock:    p.Stock,
		IsOnSale: p.IsOnSale,
	}
}

func (u *ProductUsecase) ListPublic(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	page, limit, err := pageOf(in.Page, in.Limit, maxAdminLimit)
	if err != nil {
		return ProductListOutput{}, err
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, apperr.Validation("q too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, apperr.Validation("invalid sort")
	}

	list, total, err := u.products.ListPublic(ctx, repo.ProductListQuery{
		Page: page, Limit: limit, Q: in.Q, ShopID: in.ShopID, Sort: in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, errDB
	}

	items := make([]ProductOutput, 0, len(list))
	for _, p := range list {
		items = append(items, toProductOutput(p))
	}
	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 販売中かつ承認済み店舗の商品だけ見せる
func (u *ProductUsecase) GetPublic(ctx context.Context, id int64) (ProductOutput, error) {
	if id <= 0 {
		return ProductOutput{}, apperr.Validation("invalid id")
	}
	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductOutput{}, lookupErr(err, "product")
	}
	if !p.IsOnSale {
		return ProductOutput{}, apperr.NotFound("product not found")
	}
	shop, err := u.shops.FindByID(ctx, p.ShopID)
	if err != nil || shop.Status != model.ShopStatusApproved {
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return ProductOutput{}, errDB
		}
		return ProductOutput{}, apperr.NotFound("product not found")
	}
	return toProductOutput(p), nil
}

// 承認済み店舗を持つマーチャントだけ登録できる
func (u *ProductUsecase) Create(ctx context.Context, caller authz.Caller, in CreateProductInput) (ProductOutput, error) {
	shop, err := u.approvedShop(ctx, caller)
	if err != nil {
		return ProductOutput{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return ProductOutput{}, apperr.Validation("invalid name")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return ProductOutput{}, err
	}
	if in.Stock < 0 {
		return ProductOutput{}, apperr.Validation("invalid stock")
	}
	onSale := true
	if in.IsOnSale != nil {
		onSale = *in.IsOnSale
	}

	created, err := u.products.Create(ctx, model.Product{
		ShopID:   shop.ID,
		Name:     name,
		Image:    strings.TrimSpace(in.Image),
		Price:    price,
		Stock:    in.Stock,
		IsOnSale: onSale,
	})
	if err != nil {
		return ProductOutput{}, errDB
	}
	return toProductOutput(created), nil
}

func (u *ProductUsecase) Update(ctx context.Context, caller authz.Caller, id int64, in UpdateProductInput) (ProductOutput, error) {
	ch := repo.ProductChanges{Image: in.Image, Stock: in.Stock}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > 255 {
			return ProductOutput{}, apperr.Validation("invalid name")
		}
		ch.Name = &name
	}
	if in.Price != nil {
		price, err := parsePrice(*in.Price)
		if err != nil {
			return ProductOutput{}, err
		}
		ch.Price = &price
	}
	if in.Stock != nil && *in.Stock < 0 {
		return ProductOutput{}, apperr.Validation("invalid stock")
	}
	return u.change(ctx, caller, id, ch)
}

func (u *ProductUsecase) SetOnSale(ctx context.Context, caller authz.Caller, id int64, onSale bool) (ProductOutput, error) {
	return u.change(ctx, caller, id, repo.ProductChanges{IsOnSale: &onSale})
}

// 自店舗の商品だけ変更できる
func (u *ProductUsecase) change(ctx context.Context, caller authz.Caller, id int64, ch repo.ProductChanges) (ProductOutput, error) {
	shop, ok, err := authz.NewGate(u.shops).MerchantShop(ctx, caller)
	if err != nil {
		return ProductOutput{}, asAppErr(err)
	}
	if !ok {
		return ProductOutput{}, apperr.Forbidden("merchant has no shop")
	}
	if id <= 0 {
		return ProductOutput{}, apperr.Validation("invalid id")
	}

	p, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductOutput{}, lookupErr(err, "product")
	}
	if p.ShopID != shop.ID {
		return ProductOutput{}, apperr.Forbidden("product belongs to another shop")
	}

	if err := u.products.Update(ctx, id, ch); err != nil {
		return ProductOutput{}, lookupErr(err, "product")
	}
	updated, err := u.products.FindByID(ctx, id)
	if err != nil {
		return ProductOutput{}, lookupErr(err, "product")
	}
	return toProductOutput(updated), nil
}

func (u *ProductUsecase) approvedShop(ctx context.Context, caller authz.Caller) (model.Shop, error) {
	shop, ok, err := authz.NewGate(u.shops).MerchantShop(ctx, caller)
	if err != nil {
		return model.Shop{}, asAppErr(err)
	}
	if !ok {
		return model.Shop{}, apperr.Forbidden("merchant has no shop")
	}
	if shop.Status != model.ShopStatusApproved {
		return model.Shop{}, apperr.ErrShopUnavailable
	}
	return shop, nil
}

var maxPrice = decimal.New(1, 10) // numeric(12,2)

// 0より大きく、小数は2桁まで
func parsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !p.IsPositive() || !p.Equal(p.Round(2)) || p.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, apperr.Validation("invalid price")
	}
	return p.Round(2), nil
}
