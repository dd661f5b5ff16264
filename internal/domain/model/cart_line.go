package model

import "time"

// カート明細。user_id + product_id の複合キーで1商品1行。
type CartLine struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ProductID int64     `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CartLine) TableName() string {
	return "cart"
}
