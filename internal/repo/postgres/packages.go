package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/festivo/festivo-api/internal/domain"
)

type PackagesRepo interface {
	Create(ctx context.Context, req *domain.UpsertPackageRequest) (*domain.Package, error)
	Update(ctx context.Context, id int64, req *domain.UpsertPackageRequest) (*domain.Package, error)
	Delete(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Package, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Package, error)
}

type PackagesRepoImpl struct{ pool *pgxpool.Pool }

func NewPackagesRepo(pool *pgxpool.Pool) *PackagesRepoImpl { return &PackagesRepoImpl{pool: pool} }

const packageCols = `id, event_id, name, price, description, features, created_at`

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var p domain.Package
	err := row.Scan(&p.ID, &p.EventID, &p.Name, &p.Price, &p.Description, &p.Features, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PackagesRepoImpl) Create(ctx context.Context, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	const q = `
		INSERT INTO packages (event_id, name, price, description, features)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + packageCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPackage(r.pool.QueryRow(ctx, q,
		req.EventID, req.Name, req.Price, req.Description, req.Features,
	))
}

func (r *PackagesRepoImpl) Update(ctx context.Context, id int64, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	const q = `
		UPDATE packages SET name = $2, price = $3, description = $4, features = $5
		WHERE id = $1
		RETURNING ` + packageCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPackage(r.pool.QueryRow(ctx, q, id, req.Name, req.Price, req.Description, req.Features))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PackagesRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM packages WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *PackagesRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Package, error) {
	const q = `SELECT ` + packageCols + ` FROM packages WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPackage(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PackagesRepoImpl) ListByEvent(ctx context.Context, eventID int64) ([]domain.Package, error) {
	const q = `SELECT ` + packageCols + ` FROM packages WHERE event_id = $1 ORDER BY price`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := []domain.Package{}
	for rows.Next() {
		var p domain.Package
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.Price, &p.Description, &p.Features, &p.CreatedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

var _ PackagesRepo = (*PackagesRepoImpl)(nil)
