package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/festivo/festivo-api/internal/domain"
)

type EventsRepo interface {
	Create(ctx context.Context, adminID int64, req *domain.UpsertEventRequest) (*domain.Event, error)
	Update(ctx context.Context, id int64, req *domain.UpsertEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Event, error)
	List(ctx context.Context, filter *domain.EventFilter) ([]domain.Event, error)
	AddPhoto(ctx context.Context, eventID int64, filePath, altText string) (*domain.EventPhoto, error)
	ListPhotos(ctx context.Context, eventID int64) ([]domain.EventPhoto, error)
}

type EventsRepoImpl struct{ pool *pgxpool.Pool }

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepoImpl { return &EventsRepoImpl{pool: pool} }

const eventCols = `id, category, title, budget_min, budget_max,
company_name, contact_number, location, description,
created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	err := row.Scan(
		&e.ID, &e.Category, &e.Title, &e.BudgetMin, &e.BudgetMax,
		&e.CompanyName, &e.ContactNumber, &e.Location, &e.Description,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventsRepoImpl) Create(ctx context.Context, adminID int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	const q = `INSERT INTO events (
		category, title, budget_min, budget_max,
		company_name, contact_number, location, description, created_by
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	category, _ := domain.ParseEventCategory(req.Category)
	return scanEvent(r.pool.QueryRow(ctx, q,
		category, req.Title, req.BudgetMin, req.BudgetMax,
		req.CompanyName, req.ContactNumber, req.Location, req.Description, adminID,
	))
}

func (r *EventsRepoImpl) Update(ctx context.Context, id int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	const q = `UPDATE events SET
		category = $2, title = $3, budget_min = $4, budget_max = $5,
		company_name = $6, contact_number = $7, location = $8, description = $9,
		updated_at = now()
	WHERE id = $1
	RETURNING ` + eventCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	category, _ := domain.ParseEventCategory(req.Category)
	e, err := scanEvent(r.pool.QueryRow(ctx, q, id,
		category, req.Title, req.BudgetMin, req.BudgetMax,
		req.CompanyName, req.ContactNumber, req.Location, req.Description,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *EventsRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	// Photo and package rows go with the event via ON DELETE CASCADE. Booking
	// rows do not: an event with bookings stays put.
	const q = `DELETE FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return false, domain.Validationf("event has bookings and cannot be deleted")
		}
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *EventsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Event, error) {
	const q = `SELECT ` + eventCols + ` FROM events WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// List applies the catalog filters: exact category, case-insensitive
// substring match across title/company/location, and budget bounds against
// the stored range. Newest first.
func (r *EventsRepoImpl) List(ctx context.Context, filter *domain.EventFilter) ([]domain.Event, error) {
	filter.Normalize()

	q := `SELECT ` + eventCols + ` FROM events WHERE 1=1`
	args := []any{}
	n := 0

	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if filter.Category != "" {
		q += ` AND category = ` + arg(filter.Category)
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		q += ` AND (title ILIKE ` + p + ` OR company_name ILIKE ` + p + ` OR location ILIKE ` + p + `)`
	}
	if filter.BudgetMin != nil {
		q += ` AND budget_min >= ` + arg(*filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		q += ` AND budget_max <= ` + arg(*filter.BudgetMax)
	}
	q += ` ORDER BY created_at DESC LIMIT ` + arg(filter.Limit()) + ` OFFSET ` + arg(filter.Offset())

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	es := make([]domain.Event, 0, filter.Limit())
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.Category, &e.Title, &e.BudgetMin, &e.BudgetMax,
			&e.CompanyName, &e.ContactNumber, &e.Location, &e.Description,
			&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		es = append(es, e)
	}
	return es, rows.Err()
}

func (r *EventsRepoImpl) AddPhoto(ctx context.Context, eventID int64, filePath, altText string) (*domain.EventPhoto, error) {
	const q = `
		INSERT INTO event_photos (event_id, file_path, alt_text)
		VALUES ($1, $2, $3)
		RETURNING id, event_id, file_path, alt_text, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.EventPhoto
	err := r.pool.QueryRow(ctx, q, eventID, filePath, altText).Scan(
		&p.ID, &p.EventID, &p.FilePath, &p.AltText, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *EventsRepoImpl) ListPhotos(ctx context.Context, eventID int64) ([]domain.EventPhoto, error) {
	const q = `
		SELECT id, event_id, file_path, alt_text, created_at
		FROM event_photos WHERE event_id = $1 ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := []domain.EventPhoto{}
	for rows.Next() {
		var p domain.EventPhoto
		if err := rows.Scan(&p.ID, &p.EventID, &p.FilePath, &p.AltText, &p.CreatedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

var _ EventsRepo = (*EventsRepoImpl)(nil)
