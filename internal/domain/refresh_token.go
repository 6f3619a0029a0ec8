package domain

import "time"

// MemberRefreshToken tracks the hash of the single currently valid session
// refresh token per subject. Rotation replaces the row; a superseded token no
// longer matches and fails reissue.
type MemberRefreshToken struct {
	Subject   string    `gorm:"column:subject;primaryKey" json:"subject"`
	TokenHash string    `gorm:"column:token_hash;not null" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MemberRefreshToken) TableName() string {
	return "member_refresh_token"
}
