package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/domain"
)

type MemberRepository interface {
	Save(ctx context.Context, member *domain.Member) error
	FindByID(ctx context.Context, id int64) (*domain.Member, error)
	FindBySocialID(ctx context.Context, socialID string) (*domain.Member, error)
	FindByEmail(ctx context.Context, email string) (*domain.Member, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
}

type gormMemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &gormMemberRepository{db: db}
}

// Save upserts the member. The unique indexes on social_id, email and
// nickname are the authoritative uniqueness guard; callers treat
// gorm.ErrDuplicatedKey as a collision signal.
func (r *gormMemberRepository) Save(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *gormMemberRepository) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *gormMemberRepository) FindBySocialID(ctx context.Context, socialID string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("social_id = ?", socialID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *gormMemberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *gormMemberRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Member{}).Where("nickname = ?", nickname).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
