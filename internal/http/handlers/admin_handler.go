package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/http/middleware"
	"github.com/festivo/festivo-api/internal/http/response"
	"github.com/festivo/festivo-api/internal/service"
)

// AdminHandler owns everything under /admin. Every route requires an ADMIN
// token.
type AdminHandler struct {
	Catalog  service.CatalogService
	Bookings service.BookingService
	Auth     service.AuthService
	Cfg      *config.Config
}

func NewAdminHandler(catalog service.CatalogService, bookings service.BookingService, auth service.AuthService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{Catalog: catalog, Bookings: bookings, Auth: auth, Cfg: cfg}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(h.Cfg.Auth.JWTSecret))
	r.Use(middleware.RequireRole(domain.RoleAdmin))

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.createEvent)
		r.Put("/{id}", h.updateEvent)
		r.Delete("/{id}", h.deleteEvent)
		r.Post("/{id}/photos", h.uploadPhotos)
	})

	r.Route("/packages", func(r chi.Router) {
		r.Post("/", h.createPackage)
		r.Put("/{id}", h.updatePackage)
		r.Delete("/{id}", h.deletePackage)
	})

	r.Get("/bookings", h.listBookings)
	r.Put("/bookings/{id}/status", h.updateBookingStatus)

	r.Get("/users", h.listUsers)
	return r
}

func (h *AdminHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var in domain.UpsertEventRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	event, err := h.Catalog.CreateEvent(r.Context(), claims.Sub, &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Created(w, event)
}

func (h *AdminHandler) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var in domain.UpsertEventRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	event, err := h.Catalog.UpdateEvent(r.Context(), id, &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, event)
}

func (h *AdminHandler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Catalog.DeleteEvent(r.Context(), id); err != nil {
		response.DomainError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *AdminHandler) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	maxBody := h.Cfg.Uploads.MaxFileSize * int64(h.Cfg.Uploads.MaxFileCount)
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["photos"]
	uploads := make([]service.PhotoUpload, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.Cfg.Uploads.MaxFileSize {
			response.BadRequest(w, "file too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.InternalError(w, "failed to read upload")
			return
		}
		defer f.Close()
		uploads = append(uploads, service.PhotoUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	photos, err := h.Catalog.AddPhotos(r.Context(), id, uploads)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Created(w, map[string]any{"photos": photos})
}

func (h *AdminHandler) createPackage(w http.ResponseWriter, r *http.Request) {
	var in domain.UpsertPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	pkg, err := h.Catalog.CreatePackage(r.Context(), &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.Created(w, pkg)
}

func (h *AdminHandler) updatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var in domain.UpsertPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	pkg, err := h.Catalog.UpdatePackage(r.Context(), id, &in)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, pkg)
}

func (h *AdminHandler) deletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Catalog.DeletePackage(r.Context(), id); err != nil {
		response.DomainError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *AdminHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	var status *domain.BookingStatus
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, ok := domain.ParseBookingStatus(s)
		if !ok {
			response.BadRequest(w, "invalid status")
			return
		}
		status = &parsed
	}
	limit, offset := pagination(r)

	bookings, err := h.Bookings.ListAll(r.Context(), status, limit, offset)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, map[string]any{"bookings": bookings})
}

func (h *AdminHandler) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}

	var in domain.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	booking, err := h.Bookings.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, booking)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	users, err := h.Auth.ListUsers(r.Context(), limit, offset)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.OK(w, map[string]any{"users": users})
}
