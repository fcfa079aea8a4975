package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(strings.ToUpper(s)) {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled:
		return BookingStatus(strings.ToUpper(s)), true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether a booking may move from its current status
// to the target. Only PENDING bookings move; every other status is terminal.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s != BookingPending {
		return false
	}
	switch target {
	case BookingApproved, BookingRejected, BookingCancelled:
		return true
	default:
		return false
	}
}

type Booking struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	EventID   int64         `json:"event_id"`
	PackageID *int64        `json:"package_id,omitempty"`
	Notes     string        `json:"notes"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Joined display fields, populated by list queries.
	EventTitle string `json:"event_title,omitempty"`
	UserMobile string `json:"user_mobile,omitempty"`
}

type CreateBookingRequest struct {
	EventID   int64  `json:"event_id"`
	PackageID *int64 `json:"package_id"`
	Notes     string `json:"notes"`
}

func (r *CreateBookingRequest) Normalize() {
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreateBookingRequest) Validate() error {
	if r.EventID <= 0 {
		return Validationf("event_id is required")
	}
	if len(r.Notes) > 500 {
		return Validationf("notes must be at most 500 characters")
	}
	return nil
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}
