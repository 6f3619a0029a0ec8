package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/adapters/broker"
	"github.com/example/identity-service/internal/adapters/notify"
	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/events"
	"github.com/example/identity-service/internal/oauth"
	"github.com/example/identity-service/internal/repo"
	pkglog "github.com/example/identity-service/pkg/log"
)

type LoginResult struct {
	Tokens       *TokenPair        `json:"tokens"`
	Role         domain.Role       `json:"role"`
	Nickname     string            `json:"nickname"`
	ProfileImage string            `json:"profileImage"`
	SocialID     string            `json:"socialId"`
	SocialType   domain.SocialType `json:"socialType"`
}

// AuthService maps provider logins onto exactly one local member, creating
// or restoring as needed, and issues session tokens for the result.
type AuthService interface {
	Login(ctx context.Context, traceID string, socialType domain.SocialType, credential string) (*LoginResult, error)
	Reissue(ctx context.Context, refreshToken string) (*TokenPair, error)
	ResolveOrCreate(ctx context.Context, identity *oauth.ExternalIdentity, socialType domain.SocialType) (*domain.Member, error)
}

type authService struct {
	logger    pkglog.Logger
	providers oauth.Registry
	members   repo.MemberRepository
	nicknames *NicknameGenerator
	tokens    TokenService
	notifier  notify.Notifier
	publisher broker.Publisher
}

func NewAuthService(
	logger pkglog.Logger,
	providers oauth.Registry,
	members repo.MemberRepository,
	nicknames *NicknameGenerator,
	tokens TokenService,
	notifier notify.Notifier,
	publisher broker.Publisher,
) AuthService {
	return &authService{
		logger:    logger,
		providers: providers,
		members:   members,
		nicknames: nicknames,
		tokens:    tokens,
		notifier:  notifier,
		publisher: publisher,
	}
}

func (s *authService) Login(ctx context.Context, traceID string, socialType domain.SocialType, credential string) (*LoginResult, error) {
	if credential == "" {
		return nil, apperr.BadRequest(apperr.CodeMissingAuthCode, "missing provider credential")
	}
	provider, err := s.providers.Get(socialType)
	if err != nil {
		return nil, apperr.BadRequest(apperr.CodeUnsupportedProvider, "unsupported login provider")
	}

	// Provider failure at login time is a caller-facing bad request, never a
	// silent anonymous user.
	identity, err := provider.Exchange(ctx, credential)
	if err != nil {
		s.logger.Warn().Str("trace_id", traceID).Str("provider", string(socialType)).Err(err).Msg("provider exchange failed")
		return nil, apperr.Wrap(err, apperr.KindBadRequest, apperr.CodeExchangeFailed, "failed to access oauth provider")
	}

	member, err := s.ResolveOrCreate(ctx, identity, socialType)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.Issue(ctx, member.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("trace_id", traceID).Int64("member_id", member.ID).Str("provider", string(socialType)).Msg("member logged in")
	return &LoginResult{
		Tokens:       tokens,
		Role:         member.Role,
		Nickname:     member.Nickname,
		ProfileImage: member.ImageURL,
		SocialID:     member.SocialID,
		SocialType:   member.SocialType,
	}, nil
}

func (s *authService) Reissue(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokens.Reissue(ctx, refreshToken)
}

// ResolveOrCreate is the reconciliation step: an external identity maps to at
// most one member row for the lifetime of the system, across delete/restore
// cycles.
func (s *authService) ResolveOrCreate(ctx context.Context, identity *oauth.ExternalIdentity, socialType domain.SocialType) (*domain.Member, error) {
	if identity == nil || identity.ProviderUserID == "" {
		return nil, apperr.BadRequest(apperr.CodeMissingProviderID, "provider payload missing user id")
	}

	existing, err := s.members.FindBySocialID(ctx, identity.ProviderUserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to look up member", err)
	}

	if existing != nil {
		if existing.Deleted {
			return s.restore(ctx, existing, identity, socialType)
		}
		return s.resync(ctx, existing, identity, socialType)
	}
	return s.register(ctx, identity, socialType)
}

// resync keeps the stored email and provider refresh token current for
// Apple/Google logins. Providers re-issue a refresh token only on first
// consent, so empty payload values never blank out stored ones. Kakao
// members are returned untouched.
func (s *authService) resync(ctx context.Context, member *domain.Member, identity *oauth.ExternalIdentity, socialType domain.SocialType) (*domain.Member, error) {
	if socialType == domain.SocialKakao {
		return member, nil
	}
	updated := member.WithOAuthSync(identity.Email, identity.RefreshToken)
	if updated.Email == member.Email && updated.OAuthRefreshToken == member.OAuthRefreshToken {
		return member, nil
	}
	if err := s.members.Save(ctx, &updated); err != nil {
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to update member", err)
	}
	return &updated, nil
}

// restore flips a soft-deleted row back to active. Kakao restores clear only
// the flags and do not re-sync profile fields from the fresh payload.
func (s *authService) restore(ctx context.Context, member *domain.Member, identity *oauth.ExternalIdentity, socialType domain.SocialType) (*domain.Member, error) {
	restored := member.Restored()
	if socialType != domain.SocialKakao {
		restored = restored.WithOAuthSync(identity.Email, identity.RefreshToken)
	}
	if err := s.members.Save(ctx, &restored); err != nil {
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to restore member", err)
	}
	s.logger.Info().Int64("member_id", restored.ID).Str("provider", string(socialType)).Msg("deleted member restored")
	return &restored, nil
}

func (s *authService) register(ctx context.Context, identity *oauth.ExternalIdentity, socialType domain.SocialType) (*domain.Member, error) {
	email := identity.Email
	// Kakao accounts always receive a placeholder address in this design.
	if socialType == domain.SocialKakao || email == "" {
		email = domain.PlaceholderEmail()
	}
	imageURL := ""
	if socialType == domain.SocialKakao {
		imageURL = identity.AvatarURL
	}

	for {
		nickname, err := s.nicknames.Unique(ctx)
		if err != nil {
			return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to generate nickname", err)
		}
		member := &domain.Member{
			SocialID:          identity.ProviderUserID,
			SocialType:        socialType,
			Email:             email,
			Nickname:          nickname,
			ImageURL:          imageURL,
			Role:              domain.RoleUser,
			OAuthRefreshToken: identity.RefreshToken,
		}
		err = s.members.Save(ctx, member)
		if err == nil {
			s.afterRegistration(ctx, member)
			return member, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to create member", err)
		}
		// A concurrent login for the same provider identity may have won the
		// insert; reuse that row.
		if winner, ferr := s.members.FindBySocialID(ctx, identity.ProviderUserID); ferr == nil {
			return winner, nil
		}
		// The email may already belong to a member created through another
		// provider. Retrying cannot resolve that, so surface it.
		if _, ferr := s.members.FindByEmail(ctx, email); ferr == nil {
			return nil, apperr.BadRequest(apperr.CodeDuplicateEmail, "email already registered to another member")
		}
		// Otherwise the nickname raced another registration; draw again.
	}
}

// afterRegistration fires the one-time side effects of a first login. Both
// are best effort and never roll back the insert.
func (s *authService) afterRegistration(ctx context.Context, member *domain.Member) {
	if s.notifier != nil {
		if err := s.notifier.NotifyNewMember(ctx, member.ID); err != nil {
			s.logger.Warn().Int64("member_id", member.ID).Err(err).Msg("registration notification failed")
		}
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.MemberCreated, events.NewMemberEvent(events.MemberCreated, member.ID, member.SocialType, ""))
	}
	s.logger.Info().Int64("member_id", member.ID).Str("provider", string(member.SocialType)).Msg("new member registered")
}
