package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/repo"
	"github.com/example/identity-service/internal/service"
	res "github.com/example/identity-service/pkg/http"
	pkglog "github.com/example/identity-service/pkg/log"
)

const memberContextKey = "member"

// AuthMiddleware validates the bearer access token locally and resolves the
// acting member. Deleted members are treated as unauthenticated.
type AuthMiddleware struct {
	logger  pkglog.Logger
	tokens  service.TokenService
	members repo.MemberRepository
}

func NewAuthMiddleware(logger pkglog.Logger, tokens service.TokenService, members repo.MemberRepository) *AuthMiddleware {
	return &AuthMiddleware{logger: logger, tokens: tokens, members: members}
}

func (a *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, apperr.CodeMissingToken, "missing token")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return unauthorized(c, apperr.CodeInvalidToken, "invalid authorization header")
		}

		subject, err := a.tokens.Validate(parts[1])
		if err != nil {
			appErr := apperr.From(err)
			return unauthorized(c, appErr.Code, appErr.Message)
		}

		member, err := a.members.FindByEmail(c.Request().Context(), subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c, apperr.CodeMemberNotFound, "member not found")
			}
			return res.ErrorJSON(c, http.StatusInternalServerError, apperr.CodeStorageFailure, "failed to load member", RequestIDFromCtx(c), nil)
		}
		if member.Deleted {
			return unauthorized(c, apperr.CodeMemberNotFound, "member not found")
		}

		c.Set(memberContextKey, member)
		return next(c)
	}
}

// MemberFromCtx returns the member resolved by the auth middleware.
func MemberFromCtx(c echo.Context) (*domain.Member, bool) {
	member, ok := c.Get(memberContextKey).(*domain.Member)
	return member, ok
}

func unauthorized(c echo.Context, code, message string) error {
	return res.ErrorJSON(c, http.StatusUnauthorized, code, message, RequestIDFromCtx(c), nil)
}
