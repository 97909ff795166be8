package middleware

import (
	"net/http"

	"clickgo/internal/identity"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey = "user_id" // string（検証済みのuid）
)

// bearerAuth用のJWT検証ミドルウェア。
// 検証済みのuidをcontextへ入れる。ここを通ったhandlerは注入済み身元を信用できる。
func AuthJWT(verifier identity.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			rawToken, err := identity.ParseBearer(c.Request().Header.Get("Authorization"))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//トークンを検証してuidを取り出す
			userID, err := verifier.Verify(rawToken)
			if err != nil || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, userID)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
