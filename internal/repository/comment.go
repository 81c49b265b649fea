package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moments_api/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentSelect = `
	SELECT c.id, c.owner_id, c.post_id, c.created_at, c.updated_at, c.content,
	       u.username AS owner_username, pr.id AS profile_id, pr.image AS profile_image
	FROM comments c
	JOIN users u ON u.id = c.owner_id
	JOIN profiles pr ON pr.owner_id = c.owner_id
`

var commentOrderings = map[string]string{
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

// Create inserts a new comment. A missing post is reported as model.ErrPostNotFound.
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO comments (owner_id, post_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, comment.OwnerID, comment.PostID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetDetail(ctx context.Context, id int64) (*model.CommentRow, error) {
	var row model.CommentRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(commentSelect+` WHERE c.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &row, nil
}

func (r *commentRepository) List(ctx context.Context, q model.CommentQuery) ([]model.CommentRow, int, error) {
	var f filterSet
	if q.PostID != nil {
		f.add(`c.post_id = ?`, *q.PostID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM comments c`+f.where()), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	if err := q.CheckPage(total); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(commentSelect + f.where() +
		orderBy(q.Ordering, commentOrderings, "c.created_at DESC", "c.id DESC") +
		` LIMIT ? OFFSET ?`)

	rows := []model.CommentRow{}
	if err := r.db.SelectContext(ctx, &rows, query, f.pageArgs(q.ListOptions)...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return rows, total, nil
}

// Update rewrites a comment's content. The post it belongs to never changes.
func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	query := `
		UPDATE comments
		SET content = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, comment.Content, comment.ID).Scan(&comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}
