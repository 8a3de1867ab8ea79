package server

import (
	"marketplace/internal/handler"
	"marketplace/internal/infra/ordernumber"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/metrics"
	"marketplace/internal/usecase"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository（GORM実装）→ Usecase → Handler の組み立て
func NewHandlers(gdb *gorm.DB, orderNoPrefix string, clock usecase.Clock, rec metrics.Recorder, log *zap.Logger) Handlers {
	txm := infraRepo.NewTxManagerGorm(gdb)
	products := infraRepo.NewProductGormRepository(gdb)
	shops := infraRepo.NewShopGormRepository(gdb)

	orderUC := usecase.NewOrderUsecase(txm, ordernumber.New(orderNoPrefix), clock, rec, log.Named("checkout"))
	transitionUC := usecase.NewOrderTransitionUsecase(txm, clock, rec, log.Named("order"))
	queryUC := usecase.NewOrderQueryUsecase(txm, clock, log.Named("order"))
	statsUC := usecase.NewStatsUsecase(txm, clock)
	shopUC := usecase.NewShopUsecase(txm, shops, clock, log.Named("shop"))
	productUC := usecase.NewProductUsecase(products, shops)
	cartUC := usecase.NewCartUsecase(infraRepo.NewCartItemGormRepository(gdb), products)
	addressUC := usecase.NewAddressUsecase(txm, infraRepo.NewAddressGormRepository(gdb), clock)
	auditUC := usecase.NewAuditLogUsecase(infraRepo.NewAuditLogGormRepository(gdb))

	return Handlers{
		Product:    handler.NewProductHandler(productUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC, transitionUC, queryUC, statsUC),
		Address:    handler.NewAddressHandler(addressUC),
		Merchant:   handler.NewMerchantHandler(shopUC, queryUC, transitionUC, statsUC),
		AdminOrder: handler.NewAdminOrderHandler(queryUC, transitionUC, statsUC),
		AdminShop:  handler.NewAdminShopHandler(shopUC, auditUC),
	}
}
