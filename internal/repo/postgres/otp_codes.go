package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/festivo/festivo-api/internal/domain"
)

type OTPRepo interface {
	// Replace atomically installs a new code for the mobile number, dropping
	// any previous one, and sweeps expired rows while it is at it. At most
	// one active code exists per number.
	Replace(ctx context.Context, mobile, codeHash string, expiresAt time.Time) error
	FindByMobile(ctx context.Context, mobile string) (*domain.OneTimeCode, error)
	// IncrementAttempts bumps the attempt counter in a single statement so
	// concurrent wrong guesses are all counted.
	IncrementAttempts(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type OTPRepoImpl struct{ pool *pgxpool.Pool }

func NewOTPRepo(pool *pgxpool.Pool) *OTPRepoImpl { return &OTPRepoImpl{pool: pool} }

const otpCols = `id, mobile, code_hash, expires_at, attempt_count, created_at`

func (r *OTPRepoImpl) Replace(ctx context.Context, mobile, codeHash string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lazy housekeeping: expired rows for any number go first.
	if _, err := tx.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at < now()`); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM otp_codes WHERE mobile = $1`, mobile); err != nil {
		return err
	}
	const q = `INSERT INTO otp_codes (mobile, code_hash, expires_at) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, q, mobile, codeHash, expiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *OTPRepoImpl) FindByMobile(ctx context.Context, mobile string) (*domain.OneTimeCode, error) {
	const q = `SELECT ` + otpCols + ` FROM otp_codes WHERE mobile = $1 ORDER BY id DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var c domain.OneTimeCode
	err := r.pool.QueryRow(ctx, q, mobile).Scan(
		&c.ID, &c.Mobile, &c.CodeHash, &c.ExpiresAt, &c.AttemptCount, &c.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *OTPRepoImpl) IncrementAttempts(ctx context.Context, id int64) error {
	const q = `UPDATE otp_codes SET attempt_count = attempt_count + 1 WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

func (r *OTPRepoImpl) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM otp_codes WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

var _ OTPRepo = (*OTPRepoImpl)(nil)
