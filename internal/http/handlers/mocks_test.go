package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/festivo/festivo-api/internal/auth"
	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/domain"
	"github.com/festivo/festivo-api/internal/http/handlers"
	"github.com/festivo/festivo-api/internal/http/middleware"
	"github.com/festivo/festivo-api/internal/platform/events"
	"github.com/festivo/festivo-api/internal/service"
)

// ---------- In-memory repositories ----------

type memUsers struct {
	nextID   int64
	byMobile map[string]*domain.User
	profiles map[int64]*domain.Profile
}

func newMemUsers() *memUsers {
	return &memUsers{
		nextID:   1,
		byMobile: make(map[string]*domain.User),
		profiles: make(map[int64]*domain.Profile),
	}
}

func (m *memUsers) UpsertByMobile(_ context.Context, mobile string) (*domain.User, error) {
	if u, ok := m.byMobile[mobile]; ok {
		u.IsVerified = true
		cp := *u
		return &cp, nil
	}
	u := &domain.User{
		ID: m.nextID, Mobile: mobile, Role: domain.RoleUser, IsVerified: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.nextID++
	m.byMobile[mobile] = u
	m.profiles[u.ID] = &domain.Profile{UserID: u.ID}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.byMobile {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByMobile(_ context.Context, mobile string) (*domain.User, error) {
	if u, ok := m.byMobile[mobile]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.Name, p.Gender, p.Location = req.Name, req.Gender, req.Location
	cp := *p
	return &cp, nil
}

func (m *memUsers) List(_ context.Context, _, _ int) ([]domain.User, error) {
	us := make([]domain.User, 0, len(m.byMobile))
	for _, u := range m.byMobile {
		us = append(us, *u)
	}
	sort.Slice(us, func(i, j int) bool { return us[i].ID < us[j].ID })
	return us, nil
}

type memOTP struct {
	nextID   int64
	byMobile map[string]*domain.OneTimeCode
}

func newMemOTP() *memOTP {
	return &memOTP{nextID: 1, byMobile: make(map[string]*domain.OneTimeCode)}
}

func (m *memOTP) Replace(_ context.Context, mobile, codeHash string, expiresAt time.Time) error {
	m.byMobile[mobile] = &domain.OneTimeCode{
		ID: m.nextID, Mobile: mobile, CodeHash: codeHash,
		ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	m.nextID++
	return nil
}

func (m *memOTP) FindByMobile(_ context.Context, mobile string) (*domain.OneTimeCode, error) {
	if c, ok := m.byMobile[mobile]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memOTP) IncrementAttempts(_ context.Context, id int64) error {
	for _, c := range m.byMobile {
		if c.ID == id {
			c.AttemptCount++
		}
	}
	return nil
}

func (m *memOTP) Delete(_ context.Context, id int64) error {
	for mobile, c := range m.byMobile {
		if c.ID == id {
			delete(m.byMobile, mobile)
		}
	}
	return nil
}

type memEvents struct {
	nextID int64
	byID   map[int64]*domain.Event
	photos map[int64][]domain.EventPhoto
}

func newMemEvents() *memEvents {
	return &memEvents{
		nextID: 1,
		byID:   make(map[int64]*domain.Event),
		photos: make(map[int64][]domain.EventPhoto),
	}
}

func (m *memEvents) Create(_ context.Context, adminID int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	category, _ := domain.ParseEventCategory(req.Category)
	e := &domain.Event{
		ID: m.nextID, Category: category, Title: req.Title,
		BudgetMin: req.BudgetMin, BudgetMax: req.BudgetMax,
		CompanyName: req.CompanyName, ContactNumber: req.ContactNumber,
		Location: req.Location, Description: req.Description,
		CreatedBy: adminID, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.nextID++
	m.byID[e.ID] = e
	cp := *e
	return &cp, nil
}

func (m *memEvents) Update(_ context.Context, id int64, req *domain.UpsertEventRequest) (*domain.Event, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	category, _ := domain.ParseEventCategory(req.Category)
	e.Category, e.Title = category, req.Title
	e.BudgetMin, e.BudgetMax = req.BudgetMin, req.BudgetMax
	e.CompanyName, e.ContactNumber = req.CompanyName, req.ContactNumber
	e.Location, e.Description = req.Location, req.Description
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

func (m *memEvents) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	delete(m.photos, id)
	return true, nil
}

func (m *memEvents) FindByID(_ context.Context, id int64) (*domain.Event, error) {
	if e, ok := m.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (m *memEvents) List(_ context.Context, filter *domain.EventFilter) ([]domain.Event, error) {
	filter.Normalize()
	var es []domain.Event
	for _, e := range m.byID {
		if filter.Category != "" && string(e.Category) != filter.Category {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(e.Title), q) &&
				!strings.Contains(strings.ToLower(e.CompanyName), q) &&
				!strings.Contains(strings.ToLower(e.Location), q) {
				continue
			}
		}
		if filter.BudgetMin != nil && (e.BudgetMin == nil || *e.BudgetMin < *filter.BudgetMin) {
			continue
		}
		if filter.BudgetMax != nil && (e.BudgetMax == nil || *e.BudgetMax > *filter.BudgetMax) {
			continue
		}
		es = append(es, *e)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].ID > es[j].ID })
	if len(es) > filter.Limit() {
		es = es[:filter.Limit()]
	}
	return es, nil
}

func (m *memEvents) AddPhoto(_ context.Context, eventID int64, filePath, altText string) (*domain.EventPhoto, error) {
	p := domain.EventPhoto{
		ID: int64(len(m.photos[eventID]) + 1), EventID: eventID,
		FilePath: filePath, AltText: altText, CreatedAt: time.Now(),
	}
	m.photos[eventID] = append(m.photos[eventID], p)
	return &p, nil
}

func (m *memEvents) ListPhotos(_ context.Context, eventID int64) ([]domain.EventPhoto, error) {
	return append([]domain.EventPhoto{}, m.photos[eventID]...), nil
}

type memPackages struct {
	nextID int64
	byID   map[int64]*domain.Package
}

func newMemPackages() *memPackages {
	return &memPackages{nextID: 1, byID: make(map[int64]*domain.Package)}
}

func (m *memPackages) Create(_ context.Context, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	p := &domain.Package{
		ID: m.nextID, EventID: req.EventID, Name: req.Name, Price: req.Price,
		Description: req.Description, Features: req.Features, CreatedAt: time.Now(),
	}
	m.nextID++
	m.byID[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *memPackages) Update(_ context.Context, id int64, req *domain.UpsertPackageRequest) (*domain.Package, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	p.Name, p.Price, p.Description, p.Features = req.Name, req.Price, req.Description, req.Features
	cp := *p
	return &cp, nil
}

func (m *memPackages) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memPackages) FindByID(_ context.Context, id int64) (*domain.Package, error) {
	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memPackages) ListByEvent(_ context.Context, eventID int64) ([]domain.Package, error) {
	var ps []domain.Package
	for _, p := range m.byID {
		if p.EventID == eventID {
			ps = append(ps, *p)
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Price < ps[j].Price })
	return ps, nil
}

type memBookings struct {
	nextID int64
	byID   map[int64]*domain.Booking
}

func newMemBookings() *memBookings {
	return &memBookings{nextID: 1, byID: make(map[int64]*domain.Booking)}
}

func (m *memBookings) Create(_ context.Context, userID, eventID int64, packageID *int64, notes string) (*domain.Booking, error) {
	b := &domain.Booking{
		ID: m.nextID, UserID: userID, EventID: eventID, PackageID: packageID,
		Notes: notes, Status: domain.BookingPending,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.nextID++
	m.byID[b.ID] = b
	cp := *b
	return &cp, nil
}

func (m *memBookings) FindByID(_ context.Context, id int64) (*domain.Booking, error) {
	if b, ok := m.byID[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (m *memBookings) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Booking, error) {
	var bs []domain.Booking
	for _, b := range m.byID {
		if b.UserID == userID {
			bs = append(bs, *b)
		}
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	return bs, nil
}

func (m *memBookings) ListAll(_ context.Context, status *domain.BookingStatus, _, _ int) ([]domain.Booking, error) {
	var bs []domain.Booking
	for _, b := range m.byID {
		if status != nil && b.Status != *status {
			continue
		}
		bs = append(bs, *b)
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].ID < bs[j].ID })
	return bs, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	b, ok := m.byID[id]
	if !ok || b.Status != domain.BookingPending {
		return nil, nil
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

// ---------- Test server ----------

type env struct {
	srv      *httptest.Server
	cfg      *config.Config
	users    *memUsers
	events   *memEvents
	packages *memPackages
	bookings *memBookings
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		OTP:  config.OTPConfig{TTL: 5 * time.Minute, Length: 6, MaxAttempts: 5, DevMode: true},
		Uploads: config.UploadConfig{
			Dir: t.TempDir(), MaxFileSize: 1 << 20, MaxFileCount: 10,
		},
	}

	e := &env{
		cfg:      cfg,
		users:    newMemUsers(),
		events:   newMemEvents(),
		packages: newMemPackages(),
		bookings: newMemBookings(),
	}

	bus := events.NewMemoryEventBus()
	authSvc := service.NewAuthService(e.users, newMemOTP(), bus, cfg)
	catalogSvc := service.NewCatalogService(e.events, e.packages, cfg)
	bookingSvc := service.NewBookingService(e.bookings, e.events, e.packages, bus)

	r := chi.NewRouter()
	r.Mount("/auth", handlers.NewAuthHandler(authSvc, middleware.NoopLimiter{}, cfg).Routes())
	r.Mount("/events", handlers.NewEventsHandler(catalogSvc, bookingSvc, cfg).Routes())
	r.Mount("/admin", handlers.NewAdminHandler(catalogSvc, bookingSvc, authSvc, cfg).Routes())

	e.srv = httptest.NewServer(r)
	t.Cleanup(e.srv.Close)
	return e
}

// token mints a bearer token for a user that exists in the mock store.
func (e *env) token(t *testing.T, mobile, role string) string {
	t.Helper()
	u, err := e.users.UpsertByMobile(context.Background(), mobile)
	require.NoError(t, err)
	if role != domain.RoleUser {
		e.users.byMobile[mobile].Role = role
		u.Role = role
	}
	tok, err := auth.NewToken(u.ID, u.Mobile, u.Role, e.cfg.Auth.JWTSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (e *env) seedEvent(t *testing.T, title, category, location string, budgetMin, budgetMax int64) *domain.Event {
	t.Helper()
	req := &domain.UpsertEventRequest{
		Category: category, Title: title, CompanyName: "Festive Co", Location: location,
	}
	if budgetMin > 0 {
		req.BudgetMin = &budgetMin
	}
	if budgetMax > 0 {
		req.BudgetMax = &budgetMax
	}
	ev, err := e.events.Create(context.Background(), 1, req)
	require.NoError(t, err)
	return ev
}
