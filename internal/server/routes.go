package server

import (
	"clickgo/internal/handler"
	"clickgo/internal/identity"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	verifier identity.TokenVerifier,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	orderH *handler.OrderHandler,
	roleH *handler.RoleHandler,
	httpOrderH *handler.HTTPOrderHandler,
) {
	authH.RegisterRoutes(e)
	productH.RegisterRoutes(e)

	//call形式（ミドルウェアが身元を注入する）
	orderH.RegisterRoutes(e, verifier)
	roleH.RegisterRoutes(e, verifier)

	//公開HTTP形式（bearer検証とCORSはhandler側）
	httpOrderH.RegisterRoutes(e)
}
