package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文。作成後は変更しない。
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	OrderNumber string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	OrderDate   time.Time       `gorm:"column:order_date;not null" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
}
