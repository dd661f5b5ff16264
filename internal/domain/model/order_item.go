package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。Priceは注文時点の単価スナップショット。
// 後から商品価格が変わっても過去の注文金額は変わらない。
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
