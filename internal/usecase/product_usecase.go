package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
	Details string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 失敗理由をdetailsに載せて返す
func NewHTTPErrorFrom(status int, message string, cause error) error {
	he := &HTTPError{
		Status:  status,
		Message: message,
	}
	if cause != nil {
		he.Details = cause.Error()
	}
	return he
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// 全商品を返す（クライアント側が一覧をキャッシュする前提）
func (u *ProductUsecase) ListProducts(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return []model.Product{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error retrieving products", err)
	}
	return items, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}
	return p, nil
}
