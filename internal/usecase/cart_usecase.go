package usecase

import (
	"context"
	"errors"
	"net/http"

	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /api/cart の業務ロジック。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

// DI
func NewCartUsecase(cartRepo repo.CartRepository, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

type CartResponse struct {
	Message    string              `json:"message,omitempty"`
	CartItems  []repo.CartLineView `json:"cartItems"`
	TotalItems int                 `json:"totalItems"`
	TotalValue string              `json:"totalValue"`
}

type AddToCartOutput struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// GetCart はカートを商品情報つきで返す。空でも200。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "User ID is required")
	}

	rows, err := u.cartRepo.ListWithProducts(ctx, userID, nil)
	if err != nil {
		return CartResponse{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error fetching cart", err)
	}

	if len(rows) == 0 {
		return CartResponse{
			Message:    "Cart is empty",
			CartItems:  []repo.CartLineView{},
			TotalItems: 0,
			TotalValue: "0.00",
		}, nil
	}

	//合計はdecimalで集計
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Price.Mul(decimal.NewFromInt(row.Quantity)))
	}

	return CartResponse{
		CartItems:  rows,
		TotalItems: len(rows),
		TotalValue: total.StringFixed(2),
	}, nil
}

// AddToCart は同一商品なら数量加算、無ければ新規行。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, productID int64, quantity int64) (AddToCartOutput, error) {
	if userID <= 0 || productID <= 0 || quantity < 1 {
		return AddToCartOutput{}, NewHTTPError(http.StatusBadRequest, "User ID, Product ID, and Quantity are required")
	}

	//商品存在チェック
	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AddToCartOutput{}, NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return AddToCartOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}

	line, err := u.cartRepo.UpsertLine(ctx, userID, productID, quantity)
	if err != nil {
		return AddToCartOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error adding to cart", err)
	}

	return AddToCartOutput{
		UserID:    line.UserID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}, nil
}

// UpdateQuantity は数量を絶対値で設定。0以下は削除扱い。
// 削除時の戻りmessageを呼び分けるためremovedを返す。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (removed bool, err error) {
	if userID <= 0 || productID <= 0 {
		return false, NewHTTPError(http.StatusBadRequest, "User ID, Product ID, and Quantity are required")
	}

	if quantity <= 0 {
		affected, err := u.cartRepo.RemoveLine(ctx, userID, productID)
		if err != nil {
			return false, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
		}
		if affected == 0 {
			return false, NewHTTPError(http.StatusNotFound, "Item not found in cart")
		}
		return true, nil
	}

	if _, err := u.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return false, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}
	return false, nil
}

// RemoveLine は明細を削除。0行なら404。
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 || productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "User ID and Product ID are required")
	}

	affected, err := u.cartRepo.RemoveLine(ctx, userID, productID)
	if err != nil {
		return NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}
	if affected == 0 {
		return NewHTTPError(http.StatusNotFound, "Item not found in cart")
	}
	return nil
}

// GetDetails は指定商品のカート明細を商品情報つきで返す。
func (u *CartUsecase) GetDetails(ctx context.Context, userID int64, productIDs []int64) ([]repo.CartLineView, error) {
	if userID <= 0 || len(productIDs) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "User ID and Product IDs are required")
	}

	rows, err := u.cartRepo.ListWithProducts(ctx, userID, productIDs)
	if err != nil {
		return nil, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}
	return rows, nil
}
