package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"clickgo/internal/identity"
	"clickgo/internal/middleware"
	"clickgo/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// flexNumber は数値でも文字列でも受ける（不正・欠損は0）。
// クライアントJSONのprecioは型が揺れるのでここで吸収する。
type flexNumber struct {
	decimal.Decimal
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		n.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			n.Decimal = decimal.Zero
			return nil
		}
		n.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = d
	return nil
}

// flexInt も同様（数値・文字列→int64、不正は0）
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var f flexNumber
	if err := f.UnmarshalJSON(data); err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(f.IntPart())
	return nil
}

type orderItemRequest struct {
	ProductID string     `json:"productId"`
	Name      string     `json:"nombre"`
	Price     flexNumber `json:"precio"`
	Quantity  flexInt    `json:"cantidad"`
}

type shippingRequest struct {
	Tier string `json:"tipo"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	Shipping        *shippingRequest   `json:"envio"`
	ShippingAddress json.RawMessage    `json:"direccionEnvio"`
	PaymentMethod   json.RawMessage    `json:"metodoPagoSimulado"`
}

// wire形式からエンジン入力へ。住所と支払いは不透明なまま通す。
func (r createOrderRequest) toInput() usecase.CreateOrderInput {
	items := make([]usecase.CreateOrderItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, usecase.CreateOrderItemInput{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.Decimal,
			Quantity:  int64(it.Quantity),
		})
	}

	tier := ""
	if r.Shipping != nil {
		tier = r.Shipping.Tier
	}

	return usecase.CreateOrderInput{
		Items:           items,
		ShippingTier:    tier,
		ShippingAddress: string(r.ShippingAddress),
		PaymentMethod:   string(r.PaymentMethod),
	}
}

type cancelOrderRequest struct {
	OrderID string `json:"orderId"`
}

// 検証済み身元が注入されるcall形式のエンドポイント。
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, verifier identity.TokenVerifier) {
	g := e.Group("")
	g.Use(middleware.AuthJWT(verifier))

	g.POST("/createOrder", h.create)
	g.POST("/cancelOrder", h.cancel)
	g.GET("/orders", h.list)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, ok := getCallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
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

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, ok := getCallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
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

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getCallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ミドルウェアが注入したuidを取り出す
func getCallerID(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	userID, ok := v.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
