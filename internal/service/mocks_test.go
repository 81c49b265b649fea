package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moments_api/internal/model"
	"moments_api/internal/queue"
)

// Function-field mocks: each test sets only the behaviour it needs. Unset
// functions return a not-found error or a zero value.

type mockUserRepository struct {
	createWithProfileFn func(ctx context.Context, user *model.User, profileImage string) (*model.Profile, error)
	getByIDFn           func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn     func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn  func(ctx context.Context, username string) (bool, error)
	existsFn            func(ctx context.Context, id int64) (bool, error)
	getCurrentFn        func(ctx context.Context, id int64) (*model.CurrentUser, error)

	createCalls []*model.User
}

func (m *mockUserRepository) CreateWithProfile(ctx context.Context, user *model.User, profileImage string) (*model.Profile, error) {
	m.createCalls = append(m.createCalls, user)
	if m.createWithProfileFn != nil {
		return m.createWithProfileFn(ctx, user, profileImage)
	}
	return &model.Profile{OwnerID: user.ID, Image: profileImage}, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepository) GetCurrent(ctx context.Context, id int64) (*model.CurrentUser, error) {
	if m.getCurrentFn != nil {
		return m.getCurrentFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	mu      sync.Mutex
	byHash  map[string]*model.RefreshToken
	nextID  int
	revoked []string
	family  []int64
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{byHash: map[string]*model.RefreshToken{}}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	token.ID = fmt.Sprintf("token-%d", m.nextID)
	stored := *token
	m.byHash[token.TokenHash] = &stored
	return nil
}

func (m *mockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[tokenHash]
	if !ok {
		return nil, model.ErrRefreshTokenNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, id string, replacedBy *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byHash {
		if t.ID == id && t.RevokedAt == nil {
			now := t.CreatedAt
			t.RevokedAt = &now
			t.ReplacedBy = replacedBy
		}
	}
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.family = append(m.family, userID)
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var deleted int64
	for hash, t := range m.byHash {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}

type mockPostRepository struct {
	createFn    func(ctx context.Context, post *model.Post) error
	getByIDFn   func(ctx context.Context, id int64) (*model.Post, error)
	getDetailFn func(ctx context.Context, id int64) (*model.PostRow, error)
	listFn      func(ctx context.Context, q model.PostQuery) ([]model.PostRow, int, error)
	updateFn    func(ctx context.Context, post *model.Post) error
	deleteFn    func(ctx context.Context, id int64) error
	existsFn    func(ctx context.Context, id int64) (bool, error)

	createCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetDetail(ctx context.Context, id int64) (*model.PostRow, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) List(ctx context.Context, q model.PostQuery) ([]model.PostRow, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return nil, 0, nil
}

func (m *mockPostRepository) Update(ctx context.Context, post *model.Post) error {
	m.updateCalls++
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

type mockLikeRepository struct {
	createFn      func(ctx context.Context, ownerID, postID int64) (*model.Like, model.CreateOutcome, error)
	getDetailFn   func(ctx context.Context, id int64) (*model.LikeRow, error)
	deleteFn      func(ctx context.Context, id int64) error
	idsForPostsFn func(ctx context.Context, ownerID int64, postIDs []int64) (map[int64]int64, error)

	deleteCalls int
}

func (m *mockLikeRepository) Create(ctx context.Context, ownerID, postID int64) (*model.Like, model.CreateOutcome, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, postID)
	}
	return &model.Like{ID: 1, OwnerID: ownerID, PostID: postID}, model.Created, nil
}

func (m *mockLikeRepository) GetDetail(ctx context.Context, id int64) (*model.LikeRow, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, model.ErrLikeNotFound
}

func (m *mockLikeRepository) List(ctx context.Context, q model.LikeQuery) ([]model.LikeRow, int, error) {
	return nil, 0, nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockLikeRepository) IDsForPosts(ctx context.Context, ownerID int64, postIDs []int64) (map[int64]int64, error) {
	if m.idsForPostsFn != nil {
		return m.idsForPostsFn(ctx, ownerID, postIDs)
	}
	return map[int64]int64{}, nil
}

type mockFollowerRepository struct {
	createFn         func(ctx context.Context, ownerID, followedID int64) (*model.Follower, model.CreateOutcome, error)
	getDetailFn      func(ctx context.Context, id int64) (*model.FollowerRow, error)
	idsForFollowedFn func(ctx context.Context, ownerID int64, followedIDs []int64) (map[int64]int64, error)

	deleteCalls int
}

func (m *mockFollowerRepository) Create(ctx context.Context, ownerID, followedID int64) (*model.Follower, model.CreateOutcome, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, followedID)
	}
	return &model.Follower{ID: 1, OwnerID: ownerID, FollowedID: followedID}, model.Created, nil
}

func (m *mockFollowerRepository) GetDetail(ctx context.Context, id int64) (*model.FollowerRow, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, model.ErrFollowerNotFound
}

func (m *mockFollowerRepository) List(ctx context.Context, q model.FollowerQuery) ([]model.FollowerRow, int, error) {
	return nil, 0, nil
}

func (m *mockFollowerRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	return nil
}

func (m *mockFollowerRepository) IDsForFollowed(ctx context.Context, ownerID int64, followedIDs []int64) (map[int64]int64, error) {
	if m.idsForFollowedFn != nil {
		return m.idsForFollowedFn(ctx, ownerID, followedIDs)
	}
	return map[int64]int64{}, nil
}

type mockProfileRepository struct {
	getByIDFn   func(ctx context.Context, id int64) (*model.Profile, error)
	getDetailFn func(ctx context.Context, id int64) (*model.ProfileRow, error)
	updateFn    func(ctx context.Context, profile *model.Profile) error

	updated []*model.Profile
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetDetail(ctx context.Context, id int64) (*model.ProfileRow, error) {
	if m.getDetailFn != nil {
		return m.getDetailFn(ctx, id)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) List(ctx context.Context, q model.ProfileQuery) ([]model.ProfileRow, int, error) {
	return nil, 0, nil
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	m.updated = append(m.updated, profile)
	if m.updateFn != nil {
		return m.updateFn(ctx, profile)
	}
	return nil
}

// recordingPublisher captures published events. err, when set, is returned
// from every Publish call.
type recordingPublisher struct {
	events []queue.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event queue.ActivityEvent) error {
	p.events = append(p.events, event)
	return p.err
}

// memoryStore is an ObjectStore kept in memory.
type memoryStore struct {
	objects map[string][]byte
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	s.objects[key] = body
	return "https://cdn.example.com/" + key, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
