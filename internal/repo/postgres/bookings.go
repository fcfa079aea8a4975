package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/festivo/festivo-api/internal/domain"
)

type BookingsRepo interface {
	Create(ctx context.Context, userID, eventID int64, packageID *int64, notes string) (*domain.Booking, error)
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	ListAll(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	// UpdateStatus transitions a PENDING booking and reports whether a row
	// changed. The status guard lives in the statement, so two admins racing
	// the same booking cannot both win.
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
}

type BookingsRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingsRepo(pool *pgxpool.Pool) *BookingsRepoImpl { return &BookingsRepoImpl{pool: pool} }

const bookingCols = `id, user_id, event_id, package_id, notes, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.EventID, &b.PackageID, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingsRepoImpl) Create(ctx context.Context, userID, eventID int64, packageID *int64, notes string) (*domain.Booking, error) {
	const q = `
		INSERT INTO bookings (user_id, event_id, package_id, notes, status)
		VALUES ($1, $2, $3, $4, 'PENDING')
		RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, userID, eventID, packageID, notes))
}

func (r *BookingsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (r *BookingsRepoImpl) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `
		SELECT b.id, b.user_id, b.event_id, b.package_id, b.notes, b.status,
		       b.created_at, b.updated_at, e.title
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0, limit)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventID, &b.PackageID, &b.Notes, &b.Status,
			&b.CreatedAt, &b.UpdatedAt, &b.EventTitle,
		); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (r *BookingsRepoImpl) ListAll(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := `
		SELECT b.id, b.user_id, b.event_id, b.package_id, b.notes, b.status,
		       b.created_at, b.updated_at, e.title, u.mobile
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		JOIN users u ON u.id = b.user_id`
	args := []any{limit, offset}
	if status != nil {
		q += ` WHERE b.status = $3`
		args = append(args, *status)
	}
	q += ` ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0, limit)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.EventID, &b.PackageID, &b.Notes, &b.Status,
			&b.CreatedAt, &b.UpdatedAt, &b.EventTitle, &b.UserMobile,
		); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (r *BookingsRepoImpl) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	const q = `
		UPDATE bookings SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + bookingCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id, status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return b, err
}

var _ BookingsRepo = (*BookingsRepoImpl)(nil)
