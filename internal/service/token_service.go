package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/identity-service/config"
	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/repo"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService mints and validates the service's own session tokens. Tokens
// are stateless signed credentials; the only persistence is the hash of the
// currently valid refresh token per subject, used to reject superseded tokens
// after rotation.
type TokenService interface {
	Issue(ctx context.Context, subject string) (*TokenPair, error)
	Validate(token string) (string, error)
	Reissue(ctx context.Context, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, subject string) error
}

type tokenService struct {
	cfg      *config.Config
	secret   []byte
	refresh  repo.RefreshTokenRepository
	mu       sync.Mutex
	subjects map[string]*sync.Mutex
}

func NewTokenService(cfg *config.Config, refresh repo.RefreshTokenRepository) (TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &tokenService{
		cfg:      cfg,
		secret:   []byte(cfg.JWTSecret),
		refresh:  refresh,
		subjects: map[string]*sync.Mutex{},
	}, nil
}

func (s *tokenService) Issue(ctx context.Context, subject string) (*TokenPair, error) {
	access, err := s.sign(subject, s.cfg.JWTTTLMinutes, false)
	if err != nil {
		return nil, apperr.Internal(apperr.CodeInternal, "failed to sign access token", err)
	}
	refreshTTL := s.cfg.JWTRefreshTTLMinutes
	refresh, err := s.sign(subject, refreshTTL, true)
	if err != nil {
		return nil, apperr.Internal(apperr.CodeInternal, "failed to sign refresh token", err)
	}
	if err := s.storeCurrentRefresh(ctx, subject, refresh, refreshTTL); err != nil {
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to persist refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate checks an access token and returns its subject. Refresh tokens are
// not accepted on the per-request path.
func (s *tokenService) Validate(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	if typ, _ := claims["typ"].(string); typ == "refresh" {
		return "", apperr.Unauthorized(apperr.CodeInvalidToken, "refresh token not accepted here")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", apperr.Unauthorized(apperr.CodeInvalidToken, "token missing subject")
	}
	return sub, nil
}

// Reissue rotates the pair bound to the refresh token's subject. Concurrent
// reissues for one subject serialize so that exactly one succeeds on a given
// token; the superseded token stops matching the stored hash.
func (s *tokenService) Reissue(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "not a refresh token")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "token missing subject")
	}

	lock := s.subjectLock(subject)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.refresh.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized(apperr.CodeTokenNotFound, "no active session for subject")
		}
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to load refresh token", err)
	}
	if current.TokenHash != hashToken(refreshToken) {
		return nil, apperr.Unauthorized(apperr.CodeStaleRefresh, "refresh token superseded")
	}
	return s.Issue(ctx, subject)
}

func (s *tokenService) Revoke(ctx context.Context, subject string) error {
	return s.refresh.DeleteBySubject(ctx, subject)
}

func (s *tokenService) sign(subject string, ttl time.Duration, isRefresh bool) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	// The jti keeps rotated refresh tokens distinct even when minted within
	// the same second as their predecessor; without it rotation would be a
	// no-op byte-wise and the superseded token would still match the stored
	// hash.
	if isRefresh {
		claims["typ"] = "refresh"
		claims["jti"] = uuid.NewString()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthorized(apperr.CodeTokenExpired, "token expired")
		}
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "invalid token")
	}
	return claims, nil
}

func (s *tokenService) storeCurrentRefresh(ctx context.Context, subject, refreshToken string, ttl time.Duration) error {
	return s.refresh.Upsert(ctx, &domain.MemberRefreshToken{
		Subject:   subject,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
}

func (s *tokenService) subjectLock(subject string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.subjects[subject]
	if !ok {
		lock = &sync.Mutex{}
		s.subjects[subject] = lock
	}
	return lock
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
