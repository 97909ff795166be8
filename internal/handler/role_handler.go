package handler

import (
	"net/http"

	"clickgo/internal/identity"
	"clickgo/internal/middleware"
	"clickgo/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RoleHandler struct {
	uc *usecase.RoleUsecase
}

func NewRoleHandler(uc *usecase.RoleUsecase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

type setUserRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"rol"`
}

func (h *RoleHandler) RegisterRoutes(e *echo.Echo, verifier identity.TokenVerifier) {
	g := e.Group("")
	g.Use(middleware.AuthJWT(verifier))

	g.POST("/setUserRole", h.setUserRole)
}

func (h *RoleHandler) setUserRole(c echo.Context) error {
	callerID, ok := getCallerID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req setUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SetUserRole(c.Request().Context(), callerID, usecase.SetUserRoleInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
