package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/example/identity-service/internal/adapters/http/middleware"
	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/service"
	res "github.com/example/identity-service/pkg/http"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type kakaoLoginRequest struct {
	AccessToken string `json:"accessToken"`
}

type codeLoginRequest struct {
	Code string `json:"code"`
}

type reissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/login/kakao", h.LoginKakao)
	g.POST("/login/apple", h.LoginApple)
	g.POST("/login/google", h.LoginGoogle)
	g.POST("/reissue", h.Reissue)
}

func (h *AuthHandler) LoginKakao(c echo.Context) error {
	req := new(kakaoLoginRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid payload")
	}
	result, err := h.auth.Login(c.Request().Context(), mw.RequestIDFromCtx(c), domain.SocialKakao, req.AccessToken)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, result)
}

func (h *AuthHandler) LoginApple(c echo.Context) error {
	return h.loginWithCode(c, domain.SocialApple)
}

func (h *AuthHandler) LoginGoogle(c echo.Context) error {
	return h.loginWithCode(c, domain.SocialGoogle)
}

func (h *AuthHandler) loginWithCode(c echo.Context, socialType domain.SocialType) error {
	req := new(codeLoginRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid payload")
	}
	result, err := h.auth.Login(c.Request().Context(), mw.RequestIDFromCtx(c), socialType, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, result)
}

func (h *AuthHandler) Reissue(c echo.Context) error {
	req := new(reissueRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refreshToken required")
	}
	tokens, err := h.auth.Reissue(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, tokens)
}

func badRequest(c echo.Context, message string) error {
	return res.ErrorJSON(c, http.StatusBadRequest, "BAD_REQUEST", message, mw.RequestIDFromCtx(c), nil)
}

func writeError(c echo.Context, err error) error {
	appErr := apperr.From(err)
	return res.ErrorJSON(c, appErr.HTTPStatus(), appErr.Code, appErr.Message, mw.RequestIDFromCtx(c), nil)
}
