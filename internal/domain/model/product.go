package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	Description     string          `gorm:"type:text" json:"description"`
	FullDescription string          `gorm:"type:text" json:"full_description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image           string          `gorm:"type:varchar(512)" json:"image"`
	Specs           []ProductSpec   `gorm:"foreignKey:ProductID" json:"specs,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 商品スペック（processor/ram等のキーと値）
type ProductSpec struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Value     string `gorm:"type:varchar(255);not null" json:"value"`
}
