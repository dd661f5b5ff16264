package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 履歴表示用。Priceはorder_itemsのスナップショット、Name/Imageはproductsから。
type OrderItemView struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	ListViewByOrderID(ctx context.Context, orderID int64) ([]OrderItemView, error)
}
