package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/festivo/festivo-api/internal/domain"
)

type UsersRepo interface {
	// UpsertByMobile returns the user for a mobile number, creating it (with
	// an empty profile) on first successful OTP verification. The verified
	// flag is set either way.
	UpsertByMobile(ctx context.Context, mobile string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.User, error)
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `id, mobile, role, is_verified, created_at, updated_at`

func (r *UsersRepoImpl) UpsertByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO users (mobile, role, is_verified)
		VALUES ($1, 'USER', true)
		ON CONFLICT (mobile) DO UPDATE SET is_verified = true, updated_at = now()
		RETURNING ` + userCols

	var u domain.User
	if err := tx.QueryRow(ctx, q, mobile).Scan(
		&u.ID, &u.Mobile, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const pq = `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, pq, u.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Mobile, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &u, err
}

func (r *UsersRepoImpl) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE mobile = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	err := r.pool.QueryRow(ctx, q, mobile).Scan(
		&u.ID, &u.Mobile, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &u, err
}

func (r *UsersRepoImpl) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	const q = `SELECT user_id, name, gender, location FROM profiles WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Profile
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.Name, &p.Gender, &p.Location)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &p, err
}

func (r *UsersRepoImpl) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	const q = `
		UPDATE profiles SET name = $2, gender = $3, location = $4
		WHERE user_id = $1
		RETURNING user_id, name, gender, location`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Profile
	err := r.pool.QueryRow(ctx, q, userID, req.Name, req.Gender, req.Location).Scan(
		&p.UserID, &p.Name, &p.Gender, &p.Location,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &p, err
}

func (r *UsersRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + userCols + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	us := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Mobile, &u.Role, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		us = append(us, u)
	}
	return us, rows.Err()
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
