package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 全商品をスペック付きで返す
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var items []model.Product
	err := r.db.WithContext(ctx).
		Preload("Specs").
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Specs").
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}
