package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の取得だけを約束。コアからは読み取り専用。
type ProductRepository interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
