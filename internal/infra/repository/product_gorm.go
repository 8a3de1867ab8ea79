package repository

import (
	"context"
	"strings"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 販売中かつ承認済み店舗の商品だけを、検索/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	tx := r.db.WithContext(ctx).Model(&model.Product{}).
		Joins("JOIN shops ON shops.id = products.shop_id AND shops.deleted_at IS NULL").
		Where("products.is_on_sale = ? AND shops.status = ?", true, model.ShopStatusApproved)

	// 名前の部分一致（大文字小文字を区別しない）
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if q.ShopID != nil {
		tx = tx.Where("products.shop_id = ?", *q.ShopID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("products.price asc").Order("products.id asc")
	case "price_desc":
		tx = tx.Order("products.price desc").Order("products.id desc")
	default:
		tx = tx.Order("products.id desc")
	}

	products := []model.Product{}
	if err := tx.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return model.Product{}, mapErr(err)
	}
	return p, nil
}

// 見つからないIDはmapに入らない
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, mapErr(err)
	}
	return p, nil
}

// 指定された項目だけ更新
func (r *ProductGormRepository) Update(ctx context.Context, id int64, ch repo.ProductChanges) error {
	fields := map[string]any{}
	if ch.Name != nil {
		fields["name"] = *ch.Name
	}
	if ch.Image != nil {
		fields["image"] = *ch.Image
	}
	if ch.Price != nil {
		fields["price"] = *ch.Price
	}
	if ch.Stock != nil {
		fields["stock"] = *ch.Stock
	}
	if ch.IsOnSale != nil {
		fields["is_on_sale"] = *ch.IsOnSale
	}
	if len(fields) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// shopIDがnilなら全店舗
func (r *ProductGormRepository) CountByShop(ctx context.Context, shopID *int64) (int64, int64, error) {
	type row struct {
		IsOnSale bool
		Cnt      int64
	}
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("is_on_sale, COUNT(*) AS cnt").
		Group("is_on_sale")
	if shopID != nil {
		q = q.Where("shop_id = ?", *shopID)
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return 0, 0, err
	}

	var onSale, offSale int64
	for _, rw := range rows {
		if rw.IsOnSale {
			onSale = rw.Cnt
		} else {
			offSale = rw.Cnt
		}
	}
	return onSale, offSale, nil
}
