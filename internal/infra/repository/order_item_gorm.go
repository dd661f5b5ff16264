package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderItemGormRepository struct {
	db *gorm.DB
}

func NewOrderItemGormRepository(db *gorm.DB) *OrderItemGormRepository {
	return &OrderItemGormRepository{db: db}
}

func (r *OrderItemGormRepository) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}

func (r *OrderItemGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}

// 履歴表示用に商品名と画像をproductsから結合。
// priceはorder_items側のスナップショットを返す。
func (r *OrderItemGormRepository) ListViewByOrderID(ctx context.Context, orderID int64) ([]repo.OrderItemView, error) {
	var rows []repo.OrderItemView
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, products.name, order_items.quantity, order_items.price, products.image").
		Joins("join products on products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Order("order_items.id asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderItemView{}, err
	}
	return rows, nil
}
