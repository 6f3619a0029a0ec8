package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/adapters/broker"
	"github.com/example/identity-service/internal/adapters/filestorage"
	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/events"
	"github.com/example/identity-service/internal/oauth"
	"github.com/example/identity-service/internal/repo"
	pkglog "github.com/example/identity-service/pkg/log"
)

// UnlinkStrategy revokes the app's grant at the member's identity provider.
// Any error it returns aborts the deletion: proceeding would leave a dangling
// provider-side authorization.
type UnlinkStrategy interface {
	Unlink(ctx context.Context, member *domain.Member) error
}

// KakaoUnlink severs the grant via the admin API keyed by social id; no
// refresh token is involved.
type KakaoUnlink struct {
	Client *oauth.KakaoClient
}

func (s KakaoUnlink) Unlink(ctx context.Context, member *domain.Member) error {
	if err := s.Client.UnlinkByUserID(ctx, member.SocialID); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeUnlinkFailed, "failed to unlink kakao account")
	}
	return nil
}

// AppleUnlink requires the stored refresh token: mint an access token, then
// revoke it.
type AppleUnlink struct {
	Refresher oauth.TokenRefresher
	Revoker   oauth.Revoker
}

func (s AppleUnlink) Unlink(ctx context.Context, member *domain.Member) error {
	if member.OAuthRefreshToken == "" {
		return apperr.Internal(apperr.CodeMissingRefreshToken, "missing oauth refresh token", nil)
	}
	accessToken, err := s.Refresher.RefreshAccessToken(ctx, member.OAuthRefreshToken)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeUnlinkFailed, "failed to unlink apple account")
	}
	if err := s.Revoker.Revoke(ctx, accessToken); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeUnlinkFailed, "failed to unlink apple account")
	}
	return nil
}

// GoogleUnlink mirrors Apple's two-step flow but tolerates a missing refresh
// token: the account was unlinked elsewhere and only local deletion remains.
type GoogleUnlink struct {
	Refresher oauth.TokenRefresher
	Revoker   oauth.Revoker
}

func (s GoogleUnlink) Unlink(ctx context.Context, member *domain.Member) error {
	if member.OAuthRefreshToken == "" {
		return nil
	}
	accessToken, err := s.Refresher.RefreshAccessToken(ctx, member.OAuthRefreshToken)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeUnlinkFailed, "failed to unlink google account")
	}
	if err := s.Revoker.Revoke(ctx, accessToken); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, apperr.CodeUnlinkFailed, "failed to unlink google account")
	}
	return nil
}

// LifecycleService orchestrates account deletion: provider unlink first,
// then local soft delete and anonymization. A member leaves the DELETED state
// only through the reconciliation engine's restore path.
type LifecycleService interface {
	Delete(ctx context.Context, memberID int64) error
}

type lifecycleService struct {
	logger     pkglog.Logger
	members    repo.MemberRepository
	strategies map[domain.SocialType]UnlinkStrategy
	tokens     TokenService
	files      filestorage.Client
	publisher  broker.Publisher
}

func NewLifecycleService(
	logger pkglog.Logger,
	members repo.MemberRepository,
	strategies map[domain.SocialType]UnlinkStrategy,
	tokens TokenService,
	files filestorage.Client,
	publisher broker.Publisher,
) LifecycleService {
	return &lifecycleService{
		logger:     logger,
		members:    members,
		strategies: strategies,
		tokens:     tokens,
		files:      files,
		publisher:  publisher,
	}
}

func (s *lifecycleService) Delete(ctx context.Context, memberID int64) error {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return apperr.Internal(apperr.CodeStorageFailure, "failed to load member", err)
	}
	if member.Deleted {
		return apperr.BadRequest(apperr.CodeAlreadyDeleted, "member already deleted")
	}

	strategy, ok := s.strategies[member.SocialType]
	if !ok {
		return apperr.Internal(apperr.CodeUnsupportedProvider, "no unlink strategy for provider", nil)
	}
	if err := strategy.Unlink(ctx, member); err != nil {
		s.logger.Error().Int64("member_id", member.ID).Str("provider", string(member.SocialType)).Err(err).Msg("provider unlink failed, deletion aborted")
		return err
	}

	// Provider unlink succeeded; the window between here and the local commit
	// is the documented inconsistency window, it cannot be made transactional
	// with the provider.
	subject := member.Email
	imageURL := member.ImageURL
	deleted := member.MarkDeleted(time.Now().UTC())
	if err := s.members.Save(ctx, &deleted); err != nil {
		return apperr.Internal(apperr.CodeStorageFailure, "failed to mark member deleted", err)
	}

	_ = s.tokens.Revoke(ctx, subject)
	if imageURL != "" && s.files != nil {
		if err := s.files.Delete(ctx, imageURL); err != nil {
			s.logger.Warn().Int64("member_id", member.ID).Err(err).Msg("failed to delete profile image object")
		}
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.MemberDeleted, events.NewMemberEvent(events.MemberDeleted, member.ID, member.SocialType, ""))
	}

	s.logger.Info().Int64("member_id", member.ID).Str("provider", string(member.SocialType)).Msg("member soft deleted")
	return nil
}
