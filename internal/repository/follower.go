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

type followerRepository struct {
	db *sqlx.DB
}

func NewFollowerRepository(db *sqlx.DB) FollowerRepository {
	return &followerRepository{db: db}
}

const followerSelect = `
	SELECT f.id, f.owner_id, f.followed_id, f.created_at,
	       o.username AS owner_username, d.username AS followed_username
	FROM followers f
	JOIN users o ON o.id = f.owner_id
	JOIN users d ON d.id = f.followed_id
`

var followerOrderings = map[string]string{
	"created_at": "f.created_at",
}

// Create inserts a follow edge, reporting model.AlreadyExists instead of an
// error when the pair is taken. A missing followed user yields model.ErrUserNotFound.
func (r *followerRepository) Create(ctx context.Context, ownerID, followedID int64) (*model.Follower, model.CreateOutcome, error) {
	query := `
		INSERT INTO followers (owner_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT followers_owner_followed_unique DO NOTHING
		RETURNING id, owner_id, followed_id, created_at
	`
	var f model.Follower
	err := r.db.GetContext(ctx, &f, query, ownerID, followedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.AlreadyExists, nil
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, model.Created, model.ErrUserNotFound
		}
		return nil, model.Created, fmt.Errorf("insert follower: %w", err)
	}
	return &f, model.Created, nil
}

func (r *followerRepository) GetDetail(ctx context.Context, id int64) (*model.FollowerRow, error) {
	var row model.FollowerRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(followerSelect+` WHERE f.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFollowerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get follower: %w", err)
	}
	return &row, nil
}

func (r *followerRepository) List(ctx context.Context, q model.FollowerQuery) ([]model.FollowerRow, int, error) {
	var f filterSet
	if q.OwnerID != nil {
		f.add(`f.owner_id = ?`, *q.OwnerID)
	}
	if q.FollowedID != nil {
		f.add(`f.followed_id = ?`, *q.FollowedID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM followers f`+f.where()), f.args...); err != nil {
		return nil, 0, fmt.Errorf("count followers: %w", err)
	}
	if err := q.CheckPage(total); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(followerSelect + f.where() +
		orderBy(q.Ordering, followerOrderings, "f.created_at DESC", "f.id DESC") +
		` LIMIT ? OFFSET ?`)

	rows := []model.FollowerRow{}
	if err := r.db.SelectContext(ctx, &rows, query, f.pageArgs(q.ListOptions)...); err != nil {
		return nil, 0, fmt.Errorf("list followers: %w", err)
	}
	return rows, total, nil
}

func (r *followerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM followers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete follower: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrFollowerNotFound
	}
	return nil
}

func (r *followerRepository) IDsForFollowed(ctx context.Context, ownerID int64, followedIDs []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(followedIDs))
	if len(followedIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ID         int64 `db:"id"`
		FollowedID int64 `db:"followed_id"`
	}
	query := `SELECT id, followed_id FROM followers WHERE owner_id = $1 AND followed_id = ANY($2)`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, pq.Array(followedIDs)); err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	for _, row := range rows {
		result[row.FollowedID] = row.ID
	}
	return result, nil
}
