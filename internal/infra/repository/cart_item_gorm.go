package repository

import (
	"context"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) scope(ctx context.Context, userID int64, productIDs []int64) *gorm.DB {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(productIDs) > 0 {
		q = q.Where("product_id IN ?", productIDs)
	}
	return q.Order("id asc")
}

func (r *CartItemGormRepository) ListByUser(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	if err := r.scope(ctx, userID, productIDs).Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

func (r *CartItemGormRepository) ListByUserForUpdate(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	err := r.scope(ctx, userID, productIDs).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&items).Error
	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 同一商品は数量加算（(user_id, product_id)の一意制約で1行にまとめる）
func (r *CartItemGormRepository) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	now := time.Now().UTC()
	item := model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  addQty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + ?", addQty),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
	return mapErr(err)
}

// 明細の数量を上書き
func (r *CartItemGormRepository) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartItemGormRepository) DeleteByProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartItemGormRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}
