package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"moments_api/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

const likeSelect = `
	SELECT l.id, l.owner_id, l.post_id, l.created_at, u.username AS owner_username
	FROM likes l
	JOIN users u ON u.id = l.owner_id
`

var likeOrderings = map[string]string{
	"created_at": "l.created_at",
}

// Create inserts a like. When the pair already exists no row is returned and
// the outcome is model.AlreadyExists; the unique constraint makes this safe
// under concurrent requests.
func (r *likeRepository) Create(ctx context.Context, ownerID, postID int64) (*model.Like, model.CreateOutcome, error) {
	query := `
		INSERT INTO likes (owner_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT likes_owner_post_unique DO NOTHING
		RETURNING id, owner_id, post_id, created_at
	`
	var like model.Like
	err := r.db.GetContext(ctx, &like, query, ownerID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.AlreadyExists, nil
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.Created, model.ErrPostNotFound
		}
		return nil, model.Created, fmt.Errorf("insert like: %w", err)
	}
	return &like, model.Created, nil
}

func (r *likeRepository) GetDetail(ctx context.Context, id int64) (*model.LikeRow, error) {
	var row model.LikeRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(likeSelect+` WHERE l.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &row, nil
}

func (r *likeRepository) List(ctx context.Context, q model.LikeQuery) ([]model.LikeRow, int, error) {
	var f filterSet
	if q.PostID != nil {
		f.add(`l.post_id = ?`, *q.PostID)
	}
	if q.OwnerID != nil {
		f.add(`l.owner_id = ?`, *q.OwnerID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM likes l`+f.where()), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count likes: %w", err)
	}
	if err := q.CheckPage(total); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(likeSelect + f.where() +
		orderBy(q.Ordering, likeOrderings, "l.created_at DESC", "l.id DESC") +
		` LIMIT ? OFFSET ?`)

	rows := []model.LikeRow{}
	if err := r.db.SelectContext(ctx, &rows, query, f.pageArgs(q.ListOptions)...); err != nil {
		return nil, 0, fmt.Errorf("list likes: %w", err)
	}
	return rows, total, nil
}

func (r *likeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrLikeNotFound
	}
	return nil
}

func (r *likeRepository) IDsForPosts(ctx context.Context, ownerID int64, postIDs []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID     int64 `db:"id"`
		PostID int64 `db:"post_id"`
	}
	query := `SELECT id, post_id FROM likes WHERE owner_id = $1 AND post_id = ANY($2)`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("get like ids: %w", err)
	}
	for _, row := range rows {
		result[row.PostID] = row.ID
	}
	return result, nil
}
