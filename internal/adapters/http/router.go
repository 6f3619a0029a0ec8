package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/identity-service/config"
	"github.com/example/identity-service/internal/adapters/http/handlers"
	authmw "github.com/example/identity-service/internal/adapters/http/middleware"
)

type Router struct {
	cfg           *config.Config
	authHandler   *handlers.AuthHandler
	memberHandler *handlers.MemberHandler
	authMW        *authmw.AuthMiddleware
}

func NewRouter(cfg *config.Config, authHandler *handlers.AuthHandler, memberHandler *handlers.MemberHandler, authMW *authmw.AuthMiddleware) *Router {
	return &Router{cfg: cfg, authHandler: authHandler, memberHandler: memberHandler, authMW: authMW}
}

func (r *Router) Setup(e *echo.Echo) {
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{r.cfg.CORSAllowOrigins},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestedWith},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	authGroup := e.Group("/api/v1/auth")
	r.authHandler.RegisterRoutes(authGroup)

	memberGroup := e.Group("/api/v1/members", r.authMW.Handler)
	r.memberHandler.RegisterRoutes(memberGroup)
}
