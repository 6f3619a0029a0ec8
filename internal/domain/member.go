package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SocialType string

const (
	SocialKakao  SocialType = "KAKAO"
	SocialApple  SocialType = "APPLE"
	SocialGoogle SocialType = "GOOGLE"
)

func (s SocialType) IsValid() bool {
	return s == SocialKakao || s == SocialApple || s == SocialGoogle
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Member is the canonical local identity record. A member is forever bound to
// the (social_id, social_type) pair that created it: deletion only flags and
// anonymizes the row, so a later login with the same provider identity
// restores the same member instead of creating a duplicate.
type Member struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SocialID          string     `gorm:"column:social_id;not null;uniqueIndex" json:"social_id"`
	SocialType        SocialType `gorm:"column:social_type;type:text;not null" json:"social_type"`
	Email             string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Nickname          string     `gorm:"column:nickname;not null;uniqueIndex" json:"nickname"`
	ImageURL          string     `gorm:"column:image_url" json:"image_url"`
	Role              Role       `gorm:"column:role;type:text;default:USER" json:"role"`
	OAuthRefreshToken string     `gorm:"column:oauth_refresh_token" json:"-"`
	Deleted           bool       `gorm:"column:deleted;default:false" json:"deleted"`
	DeletedAt         *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "member"
}

// PlaceholderEmail generates the address stored when a provider withholds the
// real one.
func PlaceholderEmail() string {
	return fmt.Sprintf("%s@socialUser.com", uuid.NewString())
}

// Restored returns a copy with the soft-delete flags cleared.
func (m Member) Restored() Member {
	m.Deleted = false
	m.DeletedAt = nil
	return m
}

// WithOAuthSync returns a copy with email and provider refresh token updated
// from a fresh login payload. Empty values never overwrite stored ones:
// Apple and Google only re-issue a refresh token on first consent.
func (m Member) WithOAuthSync(email, refreshToken string) Member {
	if email != "" {
		m.Email = email
	}
	if refreshToken != "" {
		m.OAuthRefreshToken = refreshToken
	}
	return m
}

// MarkDeleted returns a copy flagged as deleted with personal fields
// anonymized. SocialID and SocialType are retained so that a future login by
// the same provider identity restores this row. Nickname and role survive the
// delete/restore cycle.
func (m Member) MarkDeleted(now time.Time) Member {
	m.Deleted = true
	m.DeletedAt = &now
	m.Email = fmt.Sprintf("deleted-%s@socialUser.com", uuid.NewString())
	m.ImageURL = ""
	m.OAuthRefreshToken = ""
	return m
}

func (m Member) WithNickname(nickname string) Member {
	m.Nickname = nickname
	return m
}

func (m Member) WithImageURL(imageURL string) Member {
	m.ImageURL = imageURL
	return m
}
