package repository

import (
	"context"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type ShopGormRepository struct {
	db *gorm.DB
}

func NewShopGormRepository(db *gorm.DB) *ShopGormRepository {
	return &ShopGormRepository{db: db}
}

func (r *ShopGormRepository) FindByID(ctx context.Context, id int64) (model.Shop, error) {
	var s model.Shop
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return model.Shop{}, mapErr(err)
	}
	return s, nil
}

func (r *ShopGormRepository) FindByMerchantID(ctx context.Context, merchantID int64) (model.Shop, error) {
	var s model.Shop
	err := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).First(&s).Error
	if err != nil {
		return model.Shop{}, mapErr(err)
	}
	return s, nil
}

// 1マーチャント1店舗。重複はErrDuplicate。
func (r *ShopGormRepository) Create(ctx context.Context, shop model.Shop) (model.Shop, error) {
	if err := r.db.WithContext(ctx).Create(&shop).Error; err != nil {
		return model.Shop{}, mapErr(err)
	}
	return shop, nil
}

func (r *ShopGormRepository) UpdateStatus(ctx context.Context, id int64, status model.ShopStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ShopGormRepository) ListByStatus(ctx context.Context, status model.ShopStatus) ([]model.Shop, error) {
	shops := []model.Shop{}
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id asc").
		Find(&shops).Error; err != nil {
		return []model.Shop{}, err
	}
	return shops, nil
}

func (r *ShopGormRepository) CountByStatus(ctx context.Context) (map[model.ShopStatus]int64, error) {
	type row struct {
		Status model.ShopStatus
		Cnt    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Select("status, COUNT(*) AS cnt").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := map[model.ShopStatus]int64{}
	for _, rw := range rows {
		out[rw.Status] = rw.Cnt
	}
	return out, nil
}

// 論理削除
func (r *ShopGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Shop{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
