package repository

import (
	"context"
	"errors"
	"strings"

	"clickgo/internal/domain/model"
	repo "clickgo/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) ListActive(ctx context.Context, query string, page int, limit int) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_active = ?", true)
	if query != "" {
		//大文字小文字を無視した検索はname_lower列で
		q = q.Where("name_lower LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	offset := (page - 1) * limit
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}
	return items, total, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) error {
	return r.db.WithContext(ctx).Create(&p).Error
}
