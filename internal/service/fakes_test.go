package service_test

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/example/identity-service/internal/domain"
	"github.com/example/identity-service/internal/oauth"
	pkglog "github.com/example/identity-service/pkg/log"
)

func testLogger() pkglog.Logger {
	return pkglog.New("test")
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	nextID  int64
	members map[int64]domain.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{nextID: 1, members: map[int64]domain.Member{}}
}

func (f *fakeMemberRepo) Save(ctx context.Context, member *domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if member.ID == 0 {
		for _, m := range f.members {
			if m.SocialID == member.SocialID || m.Nickname == member.Nickname || m.Email == member.Email {
				return gorm.ErrDuplicatedKey
			}
		}
		member.ID = f.nextID
		f.nextID++
	}
	f.members[member.ID] = *member
	return nil
}

func (f *fakeMemberRepo) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[id]; ok {
		copied := m
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) FindBySocialID(ctx context.Context, socialID string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.SocialID == socialID {
			copied := m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.Email == email {
			copied := m
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

type fakeBlockRepo struct {
	blocks map[[2]int64]domain.MemberBlock
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: map[[2]int64]domain.MemberBlock{}}
}

func (f *fakeBlockRepo) Create(ctx context.Context, block *domain.MemberBlock) error {
	key := [2]int64{block.BlockerID, block.BlockedID}
	if _, ok := f.blocks[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.blocks[key] = *block
	return nil
}

func (f *fakeBlockRepo) Delete(ctx context.Context, block *domain.MemberBlock) error {
	delete(f.blocks, [2]int64{block.BlockerID, block.BlockedID})
	return nil
}

func (f *fakeBlockRepo) Exists(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	_, ok := f.blocks[[2]int64{blockerID, blockedID}]
	return ok, nil
}

func (f *fakeBlockRepo) FindByPair(ctx context.Context, blockerID, blockedID int64) (*domain.MemberBlock, error) {
	if b, ok := f.blocks[[2]int64{blockerID, blockedID}]; ok {
		copied := b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBlockRepo) ListByBlocker(ctx context.Context, blockerID int64) ([]domain.MemberBlock, error) {
	var out []domain.MemberBlock
	for key, b := range f.blocks {
		if key[0] == blockerID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]domain.MemberRefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]domain.MemberRefreshToken{}}
}

func (f *fakeRefreshRepo) Upsert(ctx context.Context, token *domain.MemberRefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.Subject] = *token
	return nil
}

func (f *fakeRefreshRepo) FindBySubject(ctx context.Context, subject string) (*domain.MemberRefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[subject]; ok {
		copied := t
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefreshRepo) DeleteBySubject(ctx context.Context, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, subject)
	return nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	memberIDs []int64
	err       error
}

func (f *fakeNotifier) NotifyNewMember(ctx context.Context, memberID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberIDs = append(f.memberIDs, memberID)
	return f.err
}

type fakePublisher struct {
	mu       sync.Mutex
	routings []string
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routings = append(f.routings, routingKey)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeFileStorage struct {
	uploaded []string
	deleted  []string
	url      string
}

func (f *fakeFileStorage) Upload(ctx context.Context, ownerKey, fileName, contentType string, data []byte) (string, error) {
	f.uploaded = append(f.uploaded, fileName)
	if f.url != "" {
		return f.url, nil
	}
	return "https://files.example.com/" + fileName, nil
}

func (f *fakeFileStorage) Delete(ctx context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

type fakeProvider struct {
	socialType domain.SocialType
	identity   *oauth.ExternalIdentity
	err        error
}

func (f *fakeProvider) Type() domain.SocialType {
	return f.socialType
}

func (f *fakeProvider) Exchange(ctx context.Context, credential string) (*oauth.ExternalIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeRefresher struct {
	accessToken string
	err         error
	calls       int
}

func (f *fakeRefresher) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.accessToken, nil
}

type fakeRevoker struct {
	err   error
	calls int
}

func (f *fakeRevoker) Revoke(ctx context.Context, accessToken string) error {
	f.calls++
	return f.err
}
