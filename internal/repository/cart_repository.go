package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// カート明細を商品と結合した表示用の行
type CartLineView struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Quantity    int64           `json:"quantity"`
}

// cartテーブル((user_id, product_id)複合キー)へのアクセス。
// 更新系は影響行数を返し、0行なら呼び出し側が404にする。
type CartRepository interface {
	// productIDsがnilならユーザーの全明細
	ListWithProducts(ctx context.Context, userID int64, productIDs []int64) ([]CartLineView, error)
	// deltaを既存数量に加算、無ければ新規行
	UpsertLine(ctx context.Context, userID int64, productID int64, delta int64) (model.CartLine, error)
	// 絶対値で数量を設定（upsert）
	SetQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (int64, error)
	RemoveLine(ctx context.Context, userID int64, productID int64) (int64, error)
	// 注文確定後に購入済み商品の行を消す
	DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) error
	Clear(ctx context.Context, userID int64) error
}
