package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// 明細を商品と結合して返す。productIDsがnilなら全件。
func (r *CartGormRepository) ListWithProducts(ctx context.Context, userID int64, productIDs []int64) ([]repo.CartLineView, error) {
	q := r.db.WithContext(ctx).
		Table("cart").
		Select("cart.product_id, products.name, products.description, products.price, products.image, cart.quantity").
		Joins("join products on products.id = cart.product_id").
		Where("cart.user_id = ?", userID)

	if len(productIDs) > 0 {
		q = q.Where("cart.product_id in ?", productIDs)
	}

	var rows []repo.CartLineView
	if err := q.Order("cart.product_id asc").Scan(&rows).Error; err != nil {
		return []repo.CartLineView{}, err
	}
	return rows, nil
}

// 同一商品は数量加算、無ければ新規行
func (r *CartGormRepository) UpsertLine(ctx context.Context, userID int64, productID int64, delta int64) (model.CartLine, error) {
	if delta <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}

	var out model.CartLine

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&line).Error

		if err == nil {
			// 既存ありなら数量を増やす
			newQty := line.Quantity + delta

			res := tx.Model(&model.CartLine{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}

			line.Quantity = newQty
			out = line
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		now := time.Now()
		newLine := model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  delta,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newLine).Error; err != nil {
			return err
		}

		out = newLine
		return nil
	})

	if err != nil {
		return model.CartLine{}, err
	}
	return out, nil
}

// 数量を絶対値で設定。0以下は行削除。
func (r *CartGormRepository) SetQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (int64, error) {
	if quantity <= 0 {
		return r.RemoveLine(ctx, userID, productID)
	}

	var affected int64 = 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&line).Error

		if err == nil {
			res := tx.Model(&model.CartLine{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Update("quantity", quantity)
			if res.Error != nil {
				return res.Error
			}
			affected = res.RowsAffected
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		return tx.Create(&model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}).Error
	})

	if err != nil {
		return 0, err
	}
	return affected, nil
}

// 明細を削除。影響行数を返す（0なら存在しなかった）。
func (r *CartGormRepository) RemoveLine(ctx context.Context, userID int64, productID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartLine{})

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 購入済み商品の行をまとめて削除
func (r *CartGormRepository) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id in ?", userID, productIDs).
		Delete(&model.CartLine{}).Error
}

// ユーザーの明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}
