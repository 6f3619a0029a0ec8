package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/adapters/filestorage"
	"github.com/example/identity-service/internal/apperr"
	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/repo"
	pkglog "github.com/example/identity-service/pkg/log"
)

type BlockedMember struct {
	MemberID     int64  `json:"userId"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
}

type MemberService interface {
	GetByID(ctx context.Context, memberID int64) (*domain.Member, error)
	GetIDByEmail(ctx context.Context, email string) (int64, error)
	ChangeNickname(ctx context.Context, memberID int64, nickname string) error
	UpdateProfileImage(ctx context.Context, memberID int64, fileName, contentType string, data []byte) (string, error)
	Block(ctx context.Context, blockerID, blockedID int64) error
	Unblock(ctx context.Context, blockerID, blockedID int64) error
	ListBlocked(ctx context.Context, blockerID int64) ([]BlockedMember, error)
	BlockedIDs(ctx context.Context, blockerID int64) ([]int64, error)
}

type memberService struct {
	logger  pkglog.Logger
	members repo.MemberRepository
	blocks  repo.MemberBlockRepository
	files   filestorage.Client
}

func NewMemberService(logger pkglog.Logger, members repo.MemberRepository, blocks repo.MemberBlockRepository, files filestorage.Client) MemberService {
	return &memberService{logger: logger, members: members, blocks: blocks, files: files}
}

func (s *memberService) GetByID(ctx context.Context, memberID int64) (*domain.Member, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to load member", err)
	}
	return member, nil
}

func (s *memberService) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	member, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return 0, apperr.Internal(apperr.CodeStorageFailure, "failed to load member", err)
	}
	return member.ID, nil
}

func (s *memberService) ChangeNickname(ctx context.Context, memberID int64, nickname string) error {
	if nickname == "" {
		return apperr.BadRequest(apperr.CodeDuplicateNickname, "nickname must not be empty")
	}
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member.Nickname == nickname {
		return nil
	}
	taken, err := s.members.ExistsByNickname(ctx, nickname)
	if err != nil {
		return apperr.Internal(apperr.CodeStorageFailure, "failed to check nickname", err)
	}
	if taken {
		return apperr.BadRequest(apperr.CodeDuplicateNickname, "nickname already in use")
	}
	updated := member.WithNickname(nickname)
	if err := s.members.Save(ctx, &updated); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.BadRequest(apperr.CodeDuplicateNickname, "nickname already in use")
		}
		return apperr.Internal(apperr.CodeStorageFailure, "failed to change nickname", err)
	}
	return nil
}

// UpdateProfileImage replaces the member's avatar. The previous object is
// deleted best effort before the new upload.
func (s *memberService) UpdateProfileImage(ctx context.Context, memberID int64, fileName, contentType string, data []byte) (string, error) {
	member, err := s.GetByID(ctx, memberID)
	if err != nil {
		return "", err
	}
	if member.ImageURL != "" {
		if err := s.files.Delete(ctx, member.ImageURL); err != nil {
			s.logger.Warn().Int64("member_id", memberID).Err(err).Msg("failed to delete previous profile image")
		}
	}
	imageURL, err := s.files.Upload(ctx, member.Email, fileName, contentType, data)
	if err != nil {
		return "", apperr.Internal(apperr.CodeStorageFailure, "failed to upload profile image", err)
	}
	updated := member.WithImageURL(imageURL)
	if err := s.members.Save(ctx, &updated); err != nil {
		return "", apperr.Internal(apperr.CodeStorageFailure, "failed to save profile image", err)
	}
	return imageURL, nil
}

func (s *memberService) Block(ctx context.Context, blockerID, blockedID int64) error {
	if _, err := s.GetByID(ctx, blockerID); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, blockedID); err != nil {
		return err
	}
	exists, err := s.blocks.Exists(ctx, blockerID, blockedID)
	if err != nil {
		return apperr.Internal(apperr.CodeStorageFailure, "failed to check block", err)
	}
	if exists {
		return apperr.BadRequest(apperr.CodeAlreadyBlocked, "member already blocked")
	}
	block := &domain.MemberBlock{BlockerID: blockerID, BlockedID: blockedID}
	if err := s.blocks.Create(ctx, block); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.BadRequest(apperr.CodeAlreadyBlocked, "member already blocked")
		}
		return apperr.Internal(apperr.CodeStorageFailure, "failed to create block", err)
	}
	return nil
}

func (s *memberService) Unblock(ctx context.Context, blockerID, blockedID int64) error {
	if _, err := s.GetByID(ctx, blockerID); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, blockedID); err != nil {
		return err
	}
	block, err := s.blocks.FindByPair(ctx, blockerID, blockedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.BadRequest(apperr.CodeNotBlocked, "member is not blocked")
		}
		return apperr.Internal(apperr.CodeStorageFailure, "failed to load block", err)
	}
	if err := s.blocks.Delete(ctx, block); err != nil {
		return apperr.Internal(apperr.CodeStorageFailure, "failed to delete block", err)
	}
	return nil
}

func (s *memberService) ListBlocked(ctx context.Context, blockerID int64) ([]BlockedMember, error) {
	ids, err := s.BlockedIDs(ctx, blockerID)
	if err != nil {
		return nil, err
	}
	result := make([]BlockedMember, 0, len(ids))
	for _, id := range ids {
		member, err := s.members.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to load blocked member", err)
		}
		result = append(result, BlockedMember{
			MemberID:     member.ID,
			Nickname:     member.Nickname,
			ProfileImage: member.ImageURL,
		})
	}
	return result, nil
}

func (s *memberService) BlockedIDs(ctx context.Context, blockerID int64) ([]int64, error) {
	if _, err := s.GetByID(ctx, blockerID); err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, apperr.Internal(apperr.CodeStorageFailure, "failed to list blocks", err)
	}
	ids := make([]int64, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.BlockedID)
	}
	return ids, nil
}
