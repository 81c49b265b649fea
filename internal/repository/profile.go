package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moments_api/internal/model"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Counts are computed with DISTINCT because the three LEFT JOINs multiply rows.
const profileSelect = `
	SELECT pr.id, pr.owner_id, pr.created_at, pr.updated_at, pr.name, pr.content, pr.image, pr.image_key,
	       u.username AS owner_username,
	       COUNT(DISTINCT p.id) AS posts_count,
	       COUNT(DISTINCT fd.id) AS followers_count,
	       COUNT(DISTINCT fg.id) AS following_count
	FROM profiles pr
	JOIN users u ON u.id = pr.owner_id
	LEFT JOIN posts p ON p.owner_id = pr.owner_id
	LEFT JOIN followers fd ON fd.followed_id = pr.owner_id
	LEFT JOIN followers fg ON fg.owner_id = pr.owner_id
`

const profileGroupBy = ` GROUP BY pr.id, u.username`

var profileOrderings = map[string]string{
	"created_at":      "pr.created_at",
	"posts_count":     "posts_count",
	"followers_count": "followers_count",
	"following_count": "following_count",
	"following_at":    "MAX(fg.created_at)",
	"followed_at":     "MAX(fd.created_at)",
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*model.Profile, error) {
	query := `
		SELECT id, owner_id, created_at, updated_at, name, content, image, image_key
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepository) GetDetail(ctx context.Context, id int64) (*model.ProfileRow, error) {
	query := r.db.Rebind(profileSelect + ` WHERE pr.id = ?` + profileGroupBy)

	var row model.ProfileRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile detail: %w", err)
	}
	return &row, nil
}

// List returns one page of profiles and the total number matching the filters.
func (r *profileRepository) List(ctx context.Context, q model.ProfileQuery) ([]model.ProfileRow, int, error) {
	var f filterSet
	if q.FollowsProfile != nil {
		f.add(`EXISTS (
			SELECT 1 FROM followers x JOIN profiles t ON t.owner_id = x.followed_id
			WHERE x.owner_id = pr.owner_id AND t.id = ?)`, *q.FollowsProfile)
	}
	if q.FollowedByProfile != nil {
		f.add(`EXISTS (
			SELECT 1 FROM followers x JOIN profiles t ON t.owner_id = x.owner_id
			WHERE x.followed_id = pr.owner_id AND t.id = ?)`, *q.FollowedByProfile)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		f.add(`(u.username ILIKE ? OR pr.name ILIKE ?)`, pattern, pattern)
	}

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM profiles pr JOIN users u ON u.id = pr.owner_id` + f.where())
	if err := r.db.GetContext(ctx, &total, countQuery, f.args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	if err := q.CheckPage(total); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(profileSelect + f.where() + profileGroupBy +
		orderBy(q.Ordering, profileOrderings, "pr.created_at DESC", "pr.id DESC") +
		` LIMIT ? OFFSET ?`)

	rows := []model.ProfileRow{}
	if err := r.db.SelectContext(ctx, &rows, query, f.pageArgs(q.ListOptions)...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	return rows, total, nil
}

// Update writes the editable fields and refreshes updated_at.
func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	query := `
		UPDATE profiles
		SET name = $1, content = $2, image = $3, image_key = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, p.Name, p.Content, p.Image, p.ImageKey, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrProfileNotFound
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
