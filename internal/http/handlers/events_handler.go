package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/http/middleware"
	"github.com/festivo/festivo-api/internal/http/response"
	"github.com/festivo/festivo-api/internal/service"
)

// EventsHandler serves the public catalog and the signed-in user's bookings.
type EventsHandler struct {
	Catalog  service.CatalogService
	Bookings service.BookingService
	Cfg      *config.Config
}

func NewEventsHandler(catalog service.CatalogService, bookings service.BookingService, cfg *config.Config) *EventsHandler {
	return &EventsHandler{Catalog: catalog, Bookings: bookings, Cfg: cfg}
}

func (h *EventsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.Cfg.Auth.JWTSecret))
		r.Post("/bookings", h.createBooking)
		r.Get("/bookings", h.listMyBookings)
	})

	r.Get("/{id}", h.detail)
	return r
}

func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	events, err := h.Catalog.ListEvents(r.Context(), filter)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"events":    events,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

func (h *EventsHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	detail, err := h.Catalog.GetEvent(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, detail)
}

func (h *EventsHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var in domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	booking, err := h.Bookings.Create(r.Context(), claims.Sub, &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Created(w, booking)
}

func (h *EventsHandler) listMyBookings(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	limit, offset := pagination(r)

	bookings, err := h.Bookings.ListForUser(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, map[string]any{"bookings": bookings})
}

func parseEventFilter(r *http.Request) (*domain.EventFilter, error) {
	q := r.URL.Query()
	filter := &domain.EventFilter{Query: q.Get("q")}

	if c := q.Get("category"); c != "" {
		category, ok := domain.ParseEventCategory(c)
		if !ok {
			return nil, domain.Validationf("invalid category %q", c)
		}
		filter.Category = string(category)
	}

	var err error
	if filter.BudgetMin, err = optionalInt64(q.Get("budget_min")); err != nil {
		return nil, domain.Validationf("budget_min must be a number")
	}
	if filter.BudgetMax, err = optionalInt64(q.Get("budget_max")); err != nil {
		return nil, domain.Validationf("budget_max must be a number")
	}

	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	filter.Normalize()
	return filter, nil
}

func optionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}
