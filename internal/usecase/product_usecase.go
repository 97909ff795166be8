package usecase

import (
	"context"
	"errors"
	"strings"

	"clickgo/internal/domain/model"
	repo "clickgo/internal/repository"
)

// 公開カタログの読み取りだけ。商品の作成・編集は管理ツール側の仕事。
type ProductUsecase struct {
	products repo.ProductRepository
}

func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

type ListProductsInput struct {
	Query string // 商品名の部分一致（空なら全件）
	Page  int
	Limit int
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListActiveProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewError(CodeInvalidArgument, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewError(CodeInvalidArgument, "invalid limit")
	}

	items, total, err := u.products.ListActive(ctx, strings.TrimSpace(in.Query), in.Page, in.Limit)
	if err != nil {
		return ProductListOutput{}, NewError(CodeInternal, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewError(CodeInvalidArgument, "missing productId")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewError(CodeNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, NewError(CodeInternal, "db error")
	}
	return p, nil
}
