package handler

import (
	"net/http"

	"clickgo/internal/identity"
	"clickgo/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HTTPOrderHandler は公開HTTPエンドポイント。
// ミドルウェアを通さず、bearer検証もCORSもここで自前でやる。
type HTTPOrderHandler struct {
	uc       *usecase.OrderUsecase
	verifier identity.TokenVerifier
}

func NewHTTPOrderHandler(uc *usecase.OrderUsecase, verifier identity.TokenVerifier) *HTTPOrderHandler {
	return &HTTPOrderHandler{uc: uc, verifier: verifier}
}

func (h *HTTPOrderHandler) RegisterRoutes(e *echo.Echo) {
	e.Any("/createOrderHttp", h.createOrder)
	e.Any("/cancelOrderHttp", h.cancelOrder)
}

// CORSヘッダはエラー応答にも必ず付ける
func applyCORS(c echo.Context) {
	origin := c.Request().Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}

	h := c.Response().Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, X-Requested-With")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func (h *HTTPOrderHandler) createOrder(c echo.Context) error {
	applyCORS(c)

	switch c.Request().Method {
	case http.MethodOptions:
		//preflightは本文なし
		return c.NoContent(http.StatusNoContent)
	case http.MethodPost:
	default:
		return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}

	userID, err := h.verifyBearer(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or missing token"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPOrderHandler) cancelOrder(c echo.Context) error {
	applyCORS(c)

	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusNoContent)
	case http.MethodPost:
	default:
		return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}

	userID, err := h.verifyBearer(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or missing token"})
	}

	var req cancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CancelOrder(c.Request().Context(), userID, req.OrderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HTTPOrderHandler) verifyBearer(c echo.Context) (string, error) {
	raw, err := identity.ParseBearer(c.Request().Header.Get("Authorization"))
	if err != nil {
		return "", err
	}
	return h.verifier.Verify(raw)
}
