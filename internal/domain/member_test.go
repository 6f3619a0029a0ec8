package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialTypeIsValid(t *testing.T) {
	assert.True(t, SocialKakao.IsValid())
	assert.True(t, SocialApple.IsValid())
	assert.True(t, SocialGoogle.IsValid())
	assert.False(t, SocialType("NAVER").IsValid())
	assert.False(t, SocialType("").IsValid())
}

func TestPlaceholderEmail(t *testing.T) {
	first := PlaceholderEmail()
	second := PlaceholderEmail()
	assert.Regexp(t, `^[0-9a-f-]{36}@socialUser\.com$`, first)
	assert.NotEqual(t, first, second)
}

func TestMarkDeleted(t *testing.T) {
	now := time.Now().UTC()
	member := Member{
		ID:                7,
		SocialID:          "kakao-1",
		SocialType:        SocialKakao,
		Email:             "user@socialUser.com",
		Nickname:          "happycat#07",
		ImageURL:          "https://files.example.com/p.jpg",
		Role:              RoleUser,
		OAuthRefreshToken: "refresh",
	}

	deleted := member.MarkDeleted(now)

	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DeletedAt)
	assert.Equal(t, now, *deleted.DeletedAt)
	assert.Regexp(t, `^deleted-[0-9a-f-]{36}@socialUser\.com$`, deleted.Email)
	assert.Empty(t, deleted.ImageURL)
	assert.Empty(t, deleted.OAuthRefreshToken)
	assert.Equal(t, "kakao-1", deleted.SocialID)
	assert.Equal(t, SocialKakao, deleted.SocialType)
	assert.Equal(t, "happycat#07", deleted.Nickname)
	assert.Equal(t, RoleUser, deleted.Role)

	assert.False(t, member.Deleted, "receiver is not mutated")
	assert.Equal(t, "user@socialUser.com", member.Email)
}

func TestRestored(t *testing.T) {
	now := time.Now().UTC()
	member := Member{Deleted: true, DeletedAt: &now}

	restored := member.Restored()

	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)
	assert.True(t, member.Deleted, "receiver is not mutated")
}

func TestWithOAuthSync(t *testing.T) {
	member := Member{Email: "old@example.com", OAuthRefreshToken: "old-token"}

	synced := member.WithOAuthSync("new@example.com", "new-token")
	assert.Equal(t, "new@example.com", synced.Email)
	assert.Equal(t, "new-token", synced.OAuthRefreshToken)

	kept := member.WithOAuthSync("", "")
	assert.Equal(t, "old@example.com", kept.Email, "empty values never blank stored ones")
	assert.Equal(t, "old-token", kept.OAuthRefreshToken)

	partial := member.WithOAuthSync("new@example.com", "")
	assert.Equal(t, "new@example.com", partial.Email)
	assert.Equal(t, "old-token", partial.OAuthRefreshToken)
}
