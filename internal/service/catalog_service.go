package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/repo/postgres"
	"github.com/festivo/festivo-api/pkg/logger"
)

// PhotoUpload is one file from an admin multipart upload.
type PhotoUpload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

type CatalogService interface {
	ListEvents(ctx context.Context, filter *domain.EventFilter) ([]domain.Event, error)
	GetEvent(ctx context.Context, id int64) (*domain.EventDetail, error)

	CreateEvent(ctx context.Context, adminID int64, req *domain.UpsertEventRequest) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id int64, req *domain.UpsertEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	AddPhotos(ctx context.Context, eventID int64, uploads []PhotoUpload) ([]domain.EventPhoto, error)

	CreatePackage(ctx context.Context, req *domain.UpsertPackageRequest) (*domain.Package, error)
	UpdatePackage(ctx context.Context, id int64, req *domain.UpsertPackageRequest) (*domain.Package, error)
	DeletePackage(ctx context.Context, id int64) error
}

type catalogService struct {
	events   postgres.EventsRepo
	packages postgres.PackagesRepo
	cfg      *config.Config
}

func NewCatalogService(events postgres.EventsRepo, packages postgres.PackagesRepo, cfg *config.Config) CatalogService {
	return &catalogService{events: events, packages: packages, cfg: cfg}
}

func (s *catalogService) ListEvents(ctx context.Context, filter *domain.EventFilter) ([]domain.Event, error) {
	return s.events.List(ctx, filter)
}

func (s *catalogService) GetEvent(ctx context.Context, id int64) (*domain.EventDetail, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	photos, err := s.events.ListPhotos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	packages, err := s.packages.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	return &domain.EventDetail{Event: *event, Photos: photos, Packages: packages}, nil
}

func (s *catalogService) CreateEvent(ctx context.Context, adminID int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.events.Create(ctx, adminID, req)
}

func (s *catalogService) UpdateEvent(ctx context.Context, id int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *catalogService) DeleteEvent(ctx context.Context, id int64) error {
	// Collect file paths before the rows cascade away.
	photos, err := s.events.ListPhotos(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}

	deleted, err := s.events.Delete(ctx, id)
	if err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}

	// Best effort: a leftover file is not worth failing the delete over.
	for _, p := range photos {
		name := filepath.Base(p.FilePath)
		if err := os.Remove(filepath.Join(s.cfg.Uploads.Dir, name)); err != nil && !os.IsNotExist(err) {
			logger.WarnContext(ctx, "failed to remove photo file", "error", err, "path", p.FilePath)
		}
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

func (s *catalogService) AddPhotos(ctx context.Context, eventID int64, uploads []PhotoUpload) ([]domain.EventPhoto, error) {
	if len(uploads) == 0 {
		return nil, domain.Validationf("no photos uploaded")
	}
	if len(uploads) > s.cfg.Uploads.MaxFileCount {
		return nil, domain.Validationf("at most %d photos per upload", s.cfg.Uploads.MaxFileCount)
	}
	for _, up := range uploads {
		if !strings.HasPrefix(up.ContentType, "image/") {
			return nil, domain.Validationf("only image files are allowed")
		}
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	if err := os.MkdirAll(s.cfg.Uploads.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	photos := make([]domain.EventPhoto, 0, len(uploads))
	for _, up := range uploads {
		safe := unsafeFileChars.ReplaceAllString(filepath.Base(up.Name), "_")
		name := uuid.NewString() + "-" + safe

		dst, err := os.Create(filepath.Join(s.cfg.Uploads.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to create photo file: %w", err)
		}
		_, err = io.Copy(dst, io.LimitReader(up.Data, s.cfg.Uploads.MaxFileSize))
		dst.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to write photo file: %w", err)
		}

		photo, err := s.events.AddPhoto(ctx, eventID, "/uploads/"+name, up.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to record photo: %w", err)
		}
		photos = append(photos, *photo)
	}
	return photos, nil
}

func (s *catalogService) CreatePackage(ctx context.Context, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	return s.packages.Create(ctx, req)
}

func (s *catalogService) UpdatePackage(ctx context.Context, id int64, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pkg, err := s.packages.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}
	return pkg, nil
}

func (s *catalogService) DeletePackage(ctx context.Context, id int64) error {
	deleted, err := s.packages.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
