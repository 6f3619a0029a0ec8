package domain

import "time"

// MemberBlock is a directed block edge, unique per (blocker, blocked) pair.
type MemberBlock struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BlockerID int64     `gorm:"column:blocker_id;not null;uniqueIndex:idx_member_block_pair" json:"blocker_id"`
	BlockedID int64     `gorm:"column:blocked_id;not null;uniqueIndex:idx_member_block_pair" json:"blocked_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MemberBlock) TableName() string {
	return "member_block"
}
