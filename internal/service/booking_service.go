package service

import (
	"context"
	"fmt"

	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/platform/events"
	"github.com/festivo/festivo-api/internal/repo/postgres"
	"github.com/festivo/festivo-api/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	ListAll(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	// UpdateStatus applies an admin disposition to a PENDING booking.
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Booking, error)
}

type bookingService struct {
	bookings postgres.BookingsRepo
	eventsR  postgres.EventsRepo
	packages postgres.PackagesRepo
	eventBus events.Publisher
}

func NewBookingService(bookings postgres.BookingsRepo, eventsR postgres.EventsRepo, packages postgres.PackagesRepo, eventBus events.Publisher) BookingService {
	return &bookingService{bookings: bookings, eventsR: eventsR, packages: packages, eventBus: eventBus}
}

func (s *bookingService) Create(ctx context.Context, userID int64, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.eventsR.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	if req.PackageID != nil {
		pkg, err := s.packages.FindByID(ctx, *req.PackageID)
		if err != nil {
			return nil, fmt.Errorf("failed to find package: %w", err)
		}
		if pkg == nil || pkg.EventID != req.EventID {
			return nil, domain.Validationf("package does not belong to event")
		}
	}

	booking, err := s.bookings.Create(ctx, userID, req.EventID, req.PackageID, req.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	ev := events.BookingCreatedEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		EventID:   booking.EventID,
		PackageID: booking.PackageID,
		CreatedAt: booking.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, ev); err != nil {
		logger.ErrorContext(ctx, "failed to publish booking.created", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

func (s *bookingService) ListAll(ctx context.Context, status *domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx, status, limit, offset)
}

func (s *bookingService) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Booking, error) {
	target, ok := domain.ParseBookingStatus(status)
	if !ok {
		return nil, domain.Validationf("invalid status %q", status)
	}

	current, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, domain.Validationf("cannot move booking from %s to %s", current.Status, target)
	}

	// The repo re-checks PENDING in the UPDATE itself; a concurrent admin
	// losing the race gets the validation error, not a silent overwrite.
	booking, err := s.bookings.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if booking == nil {
		return nil, domain.Validationf("booking is no longer pending")
	}

	ev := events.BookingStatusChangedEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Status:    string(booking.Status),
		ChangedAt: booking.UpdatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.BookingStatusChanged, ev); err != nil {
		logger.ErrorContext(ctx, "failed to publish booking.status_changed", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}
