package domain

import (
	"strings"
	"time"
)

type EventCategory string

const (
	CategoryWedding    EventCategory = "WEDDING"
	CategoryBirthday   EventCategory = "BIRTHDAY_PARTY"
	CategoryBabyShower EventCategory = "BABY_SHOWER"
)

func ParseEventCategory(s string) (EventCategory, bool) {
	switch EventCategory(strings.ToUpper(s)) {
	case CategoryWedding, CategoryBirthday, CategoryBabyShower:
		return EventCategory(strings.ToUpper(s)), true
	default:
		return "", false
	}
}

type Event struct {
	ID            int64         `json:"id"`
	Category      EventCategory `json:"category"`
	Title         string        `json:"title"`
	BudgetMin     *int64        `json:"budget_min,omitempty"`
	BudgetMax     *int64        `json:"budget_max,omitempty"`
	CompanyName   string        `json:"company_name"`
	ContactNumber string        `json:"contact_number"`
	Location      string        `json:"location"`
	Description   string        `json:"description"`
	CreatedBy     int64         `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type EventPhoto struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	FilePath  string    `json:"file_path"`
	AltText   string    `json:"alt_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Package struct {
	ID          int64     `json:"id"`
	EventID     int64     `json:"event_id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventFilter narrows the public catalog listing. Zero values mean "no
// constraint"; PageSize is clamped by the repository.
type EventFilter struct {
	Category  string
	Query     string
	BudgetMin *int64
	BudgetMax *int64
	Page      int
	PageSize  int
}

const MaxPageSize = 50

func (f *EventFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f *EventFilter) Limit() int  { return f.PageSize }
func (f *EventFilter) Offset() int { return (f.Page - 1) * f.PageSize }

type UpsertEventRequest struct {
	Category      string `json:"category"`
	Title         string `json:"title"`
	BudgetMin     *int64 `json:"budget_min"`
	BudgetMax     *int64 `json:"budget_max"`
	CompanyName   string `json:"company_name"`
	ContactNumber string `json:"contact_number"`
	Location      string `json:"location"`
	Description   string `json:"description"`
}

func (r *UpsertEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *UpsertEventRequest) Validate() error {
	if r.Title == "" {
		return Validationf("title is required")
	}
	if _, ok := ParseEventCategory(r.Category); !ok {
		return Validationf("invalid category")
	}
	if r.ContactNumber != "" && !IsValidMobile(r.ContactNumber) {
		return Validationf("invalid contact number")
	}
	return nil
}

type UpsertPackageRequest struct {
	EventID     int64    `json:"event_id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

func (r *UpsertPackageRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Features == nil {
		r.Features = []string{}
	}
}

func (r *UpsertPackageRequest) Validate() error {
	if r.Name == "" {
		return Validationf("name is required")
	}
	if r.Price < 0 {
		return Validationf("price must not be negative")
	}
	return nil
}

// EventDetail is the public event page payload.
type EventDetail struct {
	Event    Event        `json:"event"`
	Photos   []EventPhoto `json:"photos"`
	Packages []Package    `json:"packages"`
}
