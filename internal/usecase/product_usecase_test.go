package usecase_test

import (
	"context"
	"testing"

	"clickgo/internal/domain/model"
	repo "clickgo/internal/repository"
	"clickgo/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListActiveProducts_InvalidPaging(t *testing.T) {
	prods := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(prods)

	_, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 0, Limit: 20})
	assertCode(t, err, usecase.CodeInvalidArgument)

	_, err = uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 1, Limit: 101})
	assertCode(t, err, usecase.CodeInvalidArgument)

	prods.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListActiveProducts_ReturnsPage(t *testing.T) {
	prods := new(ProductRepoMock)
	prods.On("ListActive", mock.Anything, "", 2, 10).Return([]model.Product{
		{ID: "p1", Name: "Mochila", Price: decimal.NewFromInt(55), Stock: 3, IsActive: true},
	}, int64(11), nil)
	uc := usecase.NewProductUsecase(prods)

	out, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{Page: 2, Limit: 10})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(11), out.Total)
	assert.Equal(t, 2, out.Page)
}

// 商品名の絞り込みはトリムしてrepoへ渡す
func TestListActiveProducts_PassesNameQuery(t *testing.T) {
	prods := new(ProductRepoMock)
	prods.On("ListActive", mock.Anything, "mochila", 1, 20).Return([]model.Product{
		{ID: "p1", Name: "Mochila urbana", Price: decimal.NewFromInt(55), Stock: 3, IsActive: true},
	}, int64(1), nil)
	uc := usecase.NewProductUsecase(prods)

	out, err := uc.ListActiveProducts(context.Background(), usecase.ListProductsInput{
		Query: "  mochila ",
		Page:  1,
		Limit: 20,
	})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	prods.AssertCalled(t, "ListActive", mock.Anything, "mochila", 1, 20)
}

func TestGetProduct_NotFound(t *testing.T) {
	prods := new(ProductRepoMock)
	prods.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)
	uc := usecase.NewProductUsecase(prods)

	_, err := uc.GetProduct(context.Background(), "missing")
	assertCode(t, err, usecase.CodeNotFound)
}

func TestGetProduct_MissingID(t *testing.T) {
	prods := new(ProductRepoMock)
	uc := usecase.NewProductUsecase(prods)

	_, err := uc.GetProduct(context.Background(), "")
	assertCode(t, err, usecase.CodeInvalidArgument)
}
