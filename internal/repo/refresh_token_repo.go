package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/identity-service/internal/domain"
)

type RefreshTokenRepository interface {
	Upsert(ctx context.Context, token *domain.MemberRefreshToken) error
	FindBySubject(ctx context.Context, subject string) (*domain.MemberRefreshToken, error)
	DeleteBySubject(ctx context.Context, subject string) error
}

type gormRefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &gormRefreshTokenRepository{db: db}
}

func (r *gormRefreshTokenRepository) Upsert(ctx context.Context, token *domain.MemberRefreshToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "updated_at"}),
	}).Create(token).Error
}

func (r *gormRefreshTokenRepository) FindBySubject(ctx context.Context, subject string) (*domain.MemberRefreshToken, error) {
	var token domain.MemberRefreshToken
	if err := r.db.WithContext(ctx).Where("subject = ?", subject).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *gormRefreshTokenRepository) DeleteBySubject(ctx context.Context, subject string) error {
	return r.db.WithContext(ctx).Where("subject = ?", subject).Delete(&domain.MemberRefreshToken{}).Error
}
