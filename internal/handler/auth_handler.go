package handler

import (
	"errors"
	"net/http"
	"time"

	auth "clickgo/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	refreshUC  *auth.RefreshUsecase      // トークン更新usecase
	refreshTTL time.Duration             // refresh cookieの有効期限
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		refreshUC:  refreshUC,
		refreshTTL: refreshTTL,
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/refresh", h.refresh)
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmailFormat), errors.Is(err, auth.ErrPasswordTooShort):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// LoginはPOST /auth/loginのハンドラ
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	h.setRefreshCookie(c, side.PlainRefreshToken)
	return c.JSON(http.StatusOK, out)
}

// RefreshはPOST /auth/refreshのハンドラ。
// cookieかbodyのどちらかでrefresh tokenを受け取る。
func (h *AuthHandler) refresh(c echo.Context) error {
	plain := ""
	if cookie, err := c.Cookie("refresh_token"); err == nil {
		plain = cookie.Value
	}
	if plain == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			plain = req.RefreshToken
		}
	}

	out, side, err := h.refreshUC.Execute(c.Request().Context(), auth.RefreshInput{
		PlainRefreshToken: plain,
		UserAgent:         c.Request().UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefresh), errors.Is(err, auth.ErrUserInactive):
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	h.setRefreshCookie(c, side.PlainRefreshToken)
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, plain string) {
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    plain,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
