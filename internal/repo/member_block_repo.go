package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/domain"
)

type MemberBlockRepository interface {
	Create(ctx context.Context, block *domain.MemberBlock) error
	Delete(ctx context.Context, block *domain.MemberBlock) error
	Exists(ctx context.Context, blockerID, blockedID int64) (bool, error)
	FindByPair(ctx context.Context, blockerID, blockedID int64) (*domain.MemberBlock, error)
	ListByBlocker(ctx context.Context, blockerID int64) ([]domain.MemberBlock, error)
}

type gormMemberBlockRepository struct {
	db *gorm.DB
}

func NewMemberBlockRepository(db *gorm.DB) MemberBlockRepository {
	return &gormMemberBlockRepository{db: db}
}

func (r *gormMemberBlockRepository) Create(ctx context.Context, block *domain.MemberBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *gormMemberBlockRepository) Delete(ctx context.Context, block *domain.MemberBlock) error {
	return r.db.WithContext(ctx).Delete(block).Error
}

func (r *gormMemberBlockRepository) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MemberBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormMemberBlockRepository) FindByPair(ctx context.Context, blockerID, blockedID int64) (*domain.MemberBlock, error) {
	var block domain.MemberBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (r *gormMemberBlockRepository) ListByBlocker(ctx context.Context, blockerID int64) ([]domain.MemberBlock, error) {
	var blocks []domain.MemberBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
