package server

import (
	"marketplace/internal/domain/model"
	"marketplace/internal/handler"
	"marketplace/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Product    *handler.ProductHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Address    *handler.AddressHandler
	Merchant   *handler.MerchantHandler
	AdminOrder *handler.AdminOrderHandler
	AdminShop  *handler.AdminShopHandler
}

// ロールごとにグループを分ける。トークンが無い/不正なら401。
func RegisterRoutes(e *echo.Echo, jwtSecret string, h Handlers) {
	auth := middleware.AuthJWT(jwtSecret)

	//公開
	h.Product.RegisterRoutes(e)

	//購入者
	buyer := e.Group("", auth, middleware.RequireRoles(model.RoleBuyer))
	h.Cart.RegisterRoutes(buyer)
	h.Order.RegisterRoutes(buyer)
	h.Address.RegisterRoutes(buyer)

	//マーチャント
	merchant := e.Group("/merchant", auth, middleware.RequireRoles(model.RoleMerchant))
	h.Merchant.RegisterRoutes(merchant)
	h.Product.RegisterMerchantRoutes(merchant)

	//管理者
	admin := e.Group("/admin", auth, middleware.RequireRoles(model.RoleAdmin))
	h.AdminOrder.RegisterRoutes(admin)
	h.AdminShop.RegisterRoutes(admin)
}
