package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// refresh tokenを運ぶヘッダ
const RefreshTokenHeader = "x-refresh-token"

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type errorResponse struct {
	Message string `json:"message"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// SignUpはPOST /auth/signupのハンドラ
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req usecase.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	out, err := h.uc.SignUp(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// ConfirmはGET /auth/confirm?token=...のハンドラ
func (h *AuthHandler) Confirm(c echo.Context) error {
	rawToken := c.QueryParam("token")
	if rawToken == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "token is required"})
	}

	out, err := h.uc.Confirm(c.Request().Context(), rawToken)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// ForgotPasswordはPOST /auth/password/forgotのハンドラ
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	out, err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// ResetPasswordはPOST /auth/password/resetのハンドラ
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req usecase.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	out, err := h.uc.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// SignInはPOST /auth/signinのハンドラ
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req usecase.SignInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	out, err := h.uc.SignIn(c.Request().Context(), req, c.RealIP())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// RefreshはPOST /auth/refreshのハンドラ。
// refresh tokenは専用ヘッダで受け取る。
func (h *AuthHandler) Refresh(c echo.Context) error {
	rawRefresh := c.Request().Header.Get(RefreshTokenHeader)
	if rawRefresh == "" {
		return c.JSON(http.StatusForbidden, errorResponse{Message: "missing refresh token"})
	}

	out, err := h.uc.Refresh(c.Request().Context(), rawRefresh, c.RealIP())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// SignOutはPOST /auth/signoutのハンドラ
func (h *AuthHandler) SignOut(c echo.Context) error {
	rawRefresh := c.Request().Header.Get(RefreshTokenHeader)
	if rawRefresh == "" {
		return c.JSON(http.StatusForbidden, errorResponse{Message: "missing refresh token"})
	}

	out, err := h.uc.SignOut(c.Request().Context(), rawRefresh)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// MeはGET /auth/meのハンドラ（bearer必須）
func (h *AuthHandler) Me(c echo.Context) error {
	userUUID, _ := c.Get(middleware.CtxUserUUIDKey).(string)
	if userUUID == "" {
		return c.JSON(http.StatusForbidden, errorResponse{Message: "missing bearer token"})
	}

	out, err := h.uc.Me(c.Request().Context(), userUUID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// usecaseのエラー分類をHTTPステータスに変換する。
// スタックや内部情報はレスポンスに載せない。
func writeError(c echo.Context, err error) error {
	msg := usecase.MessageOf(err)

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: msg})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: msg})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Message: msg})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Message: msg})
	case errors.Is(err, usecase.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: msg})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "unexpected error"})
	}
}
