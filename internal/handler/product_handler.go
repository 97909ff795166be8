package handler

import (
	"net/http"
	"strconv"

	"clickgo/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// エンジンのエラー分類をHTTPステータスへ写像する。
// 一覧に無い分類（failed-precondition等）は500に落とす。
func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.CodeUnauthenticated:
		return http.StatusUnauthorized
	case usecase.CodeInvalidArgument:
		return http.StatusBadRequest
	case usecase.CodePermissionDenied:
		return http.StatusForbidden
	case usecase.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := usecase.AsError(err); ok {
		return c.JSON(statusForCode(ue.Code), ErrorResponse{Error: ue.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListActiveProducts(c.Request().Context(), usecase.ListProductsInput{
		Query: c.QueryParam("q"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	out, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
