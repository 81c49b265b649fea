package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moments_api/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postSelect = `
	SELECT p.id, p.owner_id, p.created_at, p.updated_at, p.title, p.content,
	       p.image, p.image_key, p.image_filter,
	       u.username AS owner_username, pr.id AS profile_id, pr.image AS profile_image,
	       COUNT(DISTINCT l.id) AS likes_count,
	       COUNT(DISTINCT c.id) AS comments_count
	FROM posts p
	JOIN users u ON u.id = p.owner_id
	JOIN profiles pr ON pr.owner_id = p.owner_id
	LEFT JOIN likes l ON l.post_id = p.id
	LEFT JOIN comments c ON c.post_id = p.id
`

const postGroupBy = ` GROUP BY p.id, u.username, pr.id`

var postOrderings = map[string]string{
	"created_at":     "p.created_at",
	"likes_count":    "likes_count",
	"comments_count": "comments_count",
	"liked_at":       "MAX(l.created_at)",
}

// Create inserts a post, filling in its id and timestamps.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (owner_id, title, content, image, image_key, image_filter)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.OwnerID,
		post.Title,
		post.Content,
		post.Image,
		post.ImageKey,
		post.ImageFilter,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a bare post row, used for ownership checks before writes.
func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	query := `
		SELECT id, owner_id, created_at, updated_at, title, content, image, image_key, image_filter
		FROM posts
		WHERE id = $1
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) GetDetail(ctx context.Context, id int64) (*model.PostRow, error) {
	query := r.db.Rebind(postSelect + ` WHERE p.id = ?` + postGroupBy)

	var row model.PostRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post detail: %w", err)
	}
	return &row, nil
}

// List returns one page of posts and the total number matching the filters.
// Filters are EXISTS subqueries so they never multiply the counted joins.
func (r *postRepository) List(ctx context.Context, q model.PostQuery) ([]model.PostRow, int, error) {
	var f filterSet
	if q.ProfileID != nil {
		f.add(`pr.id = ?`, *q.ProfileID)
	}
	if q.LikedByProfile != nil {
		f.add(`EXISTS (
			SELECT 1 FROM likes x JOIN profiles t ON t.owner_id = x.owner_id
			WHERE x.post_id = p.id AND t.id = ?)`, *q.LikedByProfile)
	}
	if q.FollowedByProfile != nil {
		f.add(`EXISTS (
			SELECT 1 FROM followers x JOIN profiles t ON t.owner_id = x.owner_id
			WHERE x.followed_id = p.owner_id AND t.id = ?)`, *q.FollowedByProfile)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		f.add(`(p.title ILIKE ? OR u.username ILIKE ?)`, pattern, pattern)
	}

	var total int
	countQuery := r.db.Rebind(`
		SELECT COUNT(*)
		FROM posts p
		JOIN users u ON u.id = p.owner_id
		JOIN profiles pr ON pr.owner_id = p.owner_id` + f.where())
	if err := r.db.GetContext(ctx, &total, countQuery, f.args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	if err := q.CheckPage(total); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(postSelect + f.where() + postGroupBy +
		orderBy(q.Ordering, postOrderings, "p.created_at DESC", "p.id DESC") +
		` LIMIT ? OFFSET ?`)

	rows := []model.PostRow{}
	if err := r.db.SelectContext(ctx, &rows, query, f.pageArgs(q.ListOptions)...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return rows, total, nil
}

// Update writes the editable fields and refreshes updated_at.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, image = $3, image_key = $4, image_filter = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.Title,
		post.Content,
		post.Image,
		post.ImageKey,
		post.ImageFilter,
		post.ID,
	).Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post. Its comments and likes go with it through ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check post existence: %w", err)
	}
	return exists, nil
}
