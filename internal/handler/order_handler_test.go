package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clickgo/internal/domain/model"
	"clickgo/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderEcho(f *handlerFixture, verifier *stubVerifier) *echo.Echo {
	e := echo.New()
	handler.NewOrderHandler(f.uc).RegisterRoutes(e, verifier)
	return e
}

func TestCreateOrder_RequiresBearer(t *testing.T) {
	f := newHandlerFixture()
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/createOrder", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestCreateOrder_RejectsBadToken(t *testing.T) {
	f := newHandlerFixture()
	e := newOrderEcho(f, &stubVerifier{err: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/createOrder", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// precio/cantidadは文字列で来ても数値に読む
func TestCreateOrder_CoercesStringNumbers(t *testing.T) {
	f := newHandlerFixture()
	f.prods.On("FindByID", mock.Anything, "p1").Return(model.Product{
		ID:    "p1",
		Name:  "Mochila",
		Price: decimal.NewFromInt(10),
		Stock: 5,
	}, nil)
	f.inv.On("DecreaseStockIfEnough", mock.Anything, "p1", int64(2)).Return(true, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.items.On("CreateBulk", mock.Anything, "order-1", mock.Anything).Return(nil)
	f.orders.On("SetCreatedAtText", mock.Anything, "order-1", mock.Anything).Return(nil)
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	body := `{"items":[{"productId":"p1","precio":"999.99","cantidad":"2"}]}`
	req := httptest.NewRequest(http.MethodPost, "/createOrder", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.inv.AssertCalled(t, "DecreaseStockIfEnough", mock.Anything, "p1", int64(2))
}

// cantidadが読めない値なら0に落ちて400
func TestCreateOrder_GarbageQuantityRejected(t *testing.T) {
	f := newHandlerFixture()
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	body := `{"items":[{"productId":"p1","cantidad":"muchos"}]}`
	req := httptest.NewRequest(http.MethodPost, "/createOrder", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid quantity")
}

func TestCancelOrder_OwnerSucceeds(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("FindByID", mock.Anything, "o1").Return(model.Order{
		ID:     "o1",
		UserID: "user-1",
		Status: model.OrderStatusPending,
	}, nil)
	f.orders.On("UpdateStatusIfPending", mock.Anything, "o1", model.OrderStatusCanceled).Return(true, nil)
	f.items.On("ListByOrderID", mock.Anything, "o1").Return([]model.OrderItem{}, nil)
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/cancelOrder", strings.NewReader(`{"orderId":"o1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestCancelOrder_MissingOrderID(t *testing.T) {
	f := newHandlerFixture()
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	req := httptest.NewRequest(http.MethodPost, "/cancelOrder", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing orderId")
}

func TestListOrders_ReturnsOwnOrders(t *testing.T) {
	f := newHandlerFixture()
	f.orders.On("ListByUserID", mock.Anything, "user-1", 1, 50).Return([]model.Order{
		{
			ID:           "o1",
			UserID:       "user-1",
			Status:       model.OrderStatusPending,
			Subtotal:     decimal.NewFromInt(20),
			ShippingTier: "standard",
			ShippingCost: decimal.NewFromInt(5),
			Total:        decimal.NewFromInt(25),
		},
	}, int64(1), nil)
	f.items.On("ListByOrderID", mock.Anything, "o1").Return([]model.OrderItem{
		{ProductID: "p1", NameSnapshot: "Mochila", UnitPriceSnapshot: decimal.NewFromInt(10), Quantity: 2},
	}, nil)
	e := newOrderEcho(f, &stubVerifier{userID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"o1"`)
	assert.Contains(t, rec.Body.String(), `"estado":"pending"`)
	assert.Contains(t, rec.Body.String(), `"nombre":"Mochila"`)
}
