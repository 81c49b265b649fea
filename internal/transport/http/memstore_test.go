package http

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"moments_api/internal/model"
)

// memStore backs every repository interface with maps so the router can be
// exercised end to end without Postgres.
type memStore struct {
	mu        sync.Mutex
	seq       map[string]int64
	users     map[int64]*model.User
	profiles  map[int64]*model.Profile
	posts     map[int64]*model.Post
	comments  map[int64]*model.Comment
	likes     map[int64]*model.Like
	followers map[int64]*model.Follower
	tokens    map[string]*model.RefreshToken
	objects   map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		seq:       map[string]int64{},
		users:     map[int64]*model.User{},
		profiles:  map[int64]*model.Profile{},
		posts:     map[int64]*model.Post{},
		comments:  map[int64]*model.Comment{},
		likes:     map[int64]*model.Like{},
		followers: map[int64]*model.Follower{},
		tokens:    map[string]*model.RefreshToken{},
		objects:   map[string][]byte{},
	}
}

func (s *memStore) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *memStore) profileOf(userID int64) *model.Profile {
	for _, p := range s.profiles {
		if p.OwnerID == userID {
			return p
		}
	}
	return &model.Profile{}
}

// sortedIDs returns map keys newest first, matching the default -created_at order.
func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

func paginate[T any](rows []T, opts model.ListOptions) ([]T, int, error) {
	total := len(rows)
	if err := opts.CheckPage(total); err != nil {
		return nil, 0, err
	}
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.Limit()
	if end > total {
		end = total
	}
	return rows[start:end], total, nil
}

type memUsers struct{ *memStore }

func (s memUsers) CreateWithProfile(ctx context.Context, user *model.User, profileImage string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, model.ErrUsernameExists
		}
	}
	now := time.Now()
	user.ID = s.next("users")
	user.CreatedAt = now
	stored := *user
	s.users[user.ID] = &stored

	profile := &model.Profile{ID: s.next("profiles"), OwnerID: user.ID, CreatedAt: now, UpdatedAt: now, Image: profileImage}
	s.profiles[profile.ID] = profile
	copied := *profile
	return &copied, nil
}

func (s memUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s memUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (s memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.GetByUsername(ctx, username)
	return err == nil, nil
}

func (s memUsers) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	return err == nil, nil
}

func (s memUsers) GetCurrent(ctx context.Context, id int64) (*model.CurrentUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	p := s.profileOf(id)
	return &model.CurrentUser{ID: u.ID, Username: u.Username, ProfileID: p.ID, ProfileImage: p.Image}, nil
}

type memTokens struct{ *memStore }

func (s memTokens) Create(ctx context.Context, token *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = fmt.Sprintf("rt-%d", s.next("tokens"))
	token.CreatedAt = time.Now()
	stored := *token
	s.tokens[token.TokenHash] = &stored
	return nil
}

func (s memTokens) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok {
		return nil, model.ErrRefreshTokenNotFound
	}
	copied := *t
	return &copied, nil
}

func (s memTokens) Revoke(ctx context.Context, id string, replacedBy *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, t := range s.tokens {
		if t.ID == id && t.RevokedAt == nil {
			t.RevokedAt = &now
			t.ReplacedBy = replacedBy
		}
	}
	return nil
}

func (s memTokens) RevokeAllForUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

type memProfiles struct{ *memStore }

func (s memProfiles) row(p *model.Profile) model.ProfileRow {
	row := model.ProfileRow{Profile: *p, OwnerUsername: s.users[p.OwnerID].Username}
	for _, post := range s.posts {
		if post.OwnerID == p.OwnerID {
			row.PostsCount++
		}
	}
	for _, f := range s.followers {
		if f.FollowedID == p.OwnerID {
			row.FollowersCount++
		}
		if f.OwnerID == p.OwnerID {
			row.FollowingCount++
		}
	}
	return row
}

func (s memProfiles) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

func (s memProfiles) GetDetail(ctx context.Context, id int64) (*model.ProfileRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	row := s.row(p)
	return &row, nil
}

func (s memProfiles) List(ctx context.Context, q model.ProfileQuery) ([]model.ProfileRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.ProfileRow
	for _, id := range sortedIDs(s.profiles) {
		row := s.row(s.profiles[id])
		if q.Search != "" && !strings.Contains(row.OwnerUsername, q.Search) && !strings.Contains(row.Name, q.Search) {
			continue
		}
		rows = append(rows, row)
	}
	return paginate(rows, q.ListOptions)
}

func (s memProfiles) Update(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return model.ErrProfileNotFound
	}
	profile.UpdatedAt = time.Now()
	stored := *profile
	s.profiles[profile.ID] = &stored
	return nil
}

type memPosts struct{ *memStore }

func (s memPosts) row(p *model.Post) model.PostRow {
	profile := s.profileOf(p.OwnerID)
	row := model.PostRow{
		Post:          *p,
		OwnerUsername: s.users[p.OwnerID].Username,
		ProfileID:     profile.ID,
		ProfileImage:  profile.Image,
	}
	for _, l := range s.likes {
		if l.PostID == p.ID {
			row.LikesCount++
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			row.CommentsCount++
		}
	}
	return row
}

func (s memPosts) Create(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	post.ID = s.next("posts")
	post.CreatedAt = now
	post.UpdatedAt = now
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (s memPosts) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	copied := *p
	return &copied, nil
}

func (s memPosts) GetDetail(ctx context.Context, id int64) (*model.PostRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	row := s.row(p)
	return &row, nil
}

func (s memPosts) List(ctx context.Context, q model.PostQuery) ([]model.PostRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.PostRow
	for _, id := range sortedIDs(s.posts) {
		row := s.row(s.posts[id])
		if q.ProfileID != nil && row.ProfileID != *q.ProfileID {
			continue
		}
		if q.Search != "" && !strings.Contains(row.Title, q.Search) && !strings.Contains(row.OwnerUsername, q.Search) {
			continue
		}
		rows = append(rows, row)
	}
	return paginate(rows, q.ListOptions)
}

func (s memPosts) Update(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.ID]; !ok {
		return model.ErrPostNotFound
	}
	post.UpdatedAt = time.Now()
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (s memPosts) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return model.ErrPostNotFound
	}
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for lid, l := range s.likes {
		if l.PostID == id {
			delete(s.likes, lid)
		}
	}
	return nil
}

func (s memPosts) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[id]
	return ok, nil
}

type memComments struct{ *memStore }

func (s memComments) row(c *model.Comment) model.CommentRow {
	profile := s.profileOf(c.OwnerID)
	return model.CommentRow{
		Comment:       *c,
		OwnerUsername: s.users[c.OwnerID].Username,
		ProfileID:     profile.ID,
		ProfileImage:  profile.Image,
	}
}

func (s memComments) Create(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return model.ErrPostNotFound
	}
	now := time.Now()
	comment.ID = s.next("comments")
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (s memComments) GetDetail(ctx context.Context, id int64) (*model.CommentRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	row := s.row(c)
	return &row, nil
}

func (s memComments) List(ctx context.Context, q model.CommentQuery) ([]model.CommentRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.CommentRow
	for _, id := range sortedIDs(s.comments) {
		c := s.comments[id]
		if q.PostID != nil && c.PostID != *q.PostID {
			continue
		}
		rows = append(rows, s.row(c))
	}
	return paginate(rows, q.ListOptions)
}

func (s memComments) Update(ctx context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[comment.ID]; !ok {
		return model.ErrCommentNotFound
	}
	comment.UpdatedAt = time.Now()
	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (s memComments) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return model.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

type memLikes struct{ *memStore }

func (s memLikes) Create(ctx context.Context, ownerID, postID int64) (*model.Like, model.CreateOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return nil, model.Created, model.ErrPostNotFound
	}
	for _, l := range s.likes {
		if l.OwnerID == ownerID && l.PostID == postID {
			return nil, model.AlreadyExists, nil
		}
	}
	like := &model.Like{ID: s.next("likes"), OwnerID: ownerID, PostID: postID, CreatedAt: time.Now()}
	s.likes[like.ID] = like
	copied := *like
	return &copied, model.Created, nil
}

func (s memLikes) GetDetail(ctx context.Context, id int64) (*model.LikeRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.likes[id]
	if !ok {
		return nil, model.ErrLikeNotFound
	}
	return &model.LikeRow{Like: *l, OwnerUsername: s.users[l.OwnerID].Username}, nil
}

func (s memLikes) List(ctx context.Context, q model.LikeQuery) ([]model.LikeRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.LikeRow
	for _, id := range sortedIDs(s.likes) {
		l := s.likes[id]
		if q.PostID != nil && l.PostID != *q.PostID {
			continue
		}
		if q.OwnerID != nil && l.OwnerID != *q.OwnerID {
			continue
		}
		rows = append(rows, model.LikeRow{Like: *l, OwnerUsername: s.users[l.OwnerID].Username})
	}
	return paginate(rows, q.ListOptions)
}

func (s memLikes) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[id]; !ok {
		return model.ErrLikeNotFound
	}
	delete(s.likes, id)
	return nil
}

func (s memLikes) IDsForPosts(ctx context.Context, ownerID int64, postIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := map[int64]int64{}
	for _, l := range s.likes {
		for _, postID := range postIDs {
			if l.OwnerID == ownerID && l.PostID == postID {
				ids[postID] = l.ID
			}
		}
	}
	return ids, nil
}

type memFollowers struct{ *memStore }

func (s memFollowers) row(f *model.Follower) model.FollowerRow {
	return model.FollowerRow{
		Follower:         *f,
		OwnerUsername:    s.users[f.OwnerID].Username,
		FollowedUsername: s.users[f.FollowedID].Username,
	}
}

func (s memFollowers) Create(ctx context.Context, ownerID, followedID int64) (*model.Follower, model.CreateOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[followedID]; !ok {
		return nil, model.Created, model.ErrUserNotFound
	}
	for _, f := range s.followers {
		if f.OwnerID == ownerID && f.FollowedID == followedID {
			return nil, model.AlreadyExists, nil
		}
	}
	f := &model.Follower{ID: s.next("followers"), OwnerID: ownerID, FollowedID: followedID, CreatedAt: time.Now()}
	s.followers[f.ID] = f
	copied := *f
	return &copied, model.Created, nil
}

func (s memFollowers) GetDetail(ctx context.Context, id int64) (*model.FollowerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.followers[id]
	if !ok {
		return nil, model.ErrFollowerNotFound
	}
	row := s.row(f)
	return &row, nil
}

func (s memFollowers) List(ctx context.Context, q model.FollowerQuery) ([]model.FollowerRow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []model.FollowerRow
	for _, id := range sortedIDs(s.followers) {
		f := s.followers[id]
		if q.OwnerID != nil && f.OwnerID != *q.OwnerID {
			continue
		}
		if q.FollowedID != nil && f.FollowedID != *q.FollowedID {
			continue
		}
		rows = append(rows, s.row(f))
	}
	return paginate(rows, q.ListOptions)
}

func (s memFollowers) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.followers[id]; !ok {
		return model.ErrFollowerNotFound
	}
	delete(s.followers, id)
	return nil
}

func (s memFollowers) IDsForFollowed(ctx context.Context, ownerID int64, followedIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := map[int64]int64{}
	for _, f := range s.followers {
		for _, followedID := range followedIDs {
			if f.OwnerID == ownerID && f.FollowedID == followedID {
				ids[followedID] = f.ID
			}
		}
	}
	return ids, nil
}

// memObjects is an in-memory service.ObjectStore.
type memObjects struct{ *memStore }

func (s memObjects) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	return "https://cdn.example.com/" + key, nil
}

func (s memObjects) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s memTokens) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var deleted int64
	for hash, t := range s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(s.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}
