package handlers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/festivo/festivo-api/internal/domain"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodGet, "/admin/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "UNAUTHORIZED", body["code"])

	user := e.token(t, "+15550100123", domain.RoleUser)
	resp, body = e.do(t, http.MethodGet, "/admin/bookings", user, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "FORBIDDEN", body["code"])

	admin := e.token(t, "+15550100999", domain.RoleAdmin)
	resp, _ = e.do(t, http.MethodGet, "/admin/bookings", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminEventCRUD(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "+15550100999", domain.RoleAdmin)

	resp, body := e.do(t, http.MethodPost, "/admin/events", admin, map[string]any{
		"category": "wedding", "title": "Lakeside Wedding",
		"company_name": "Festive Co", "location": "Lisbon",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "WEDDING", body["category"])
	id := int64(body["id"].(float64))

	resp, _ = e.do(t, http.MethodPost, "/admin/events", admin, map[string]any{"category": "gala", "title": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPut, fmt.Sprintf("/admin/events/%d", id), admin, map[string]any{
		"category": "wedding", "title": "Hilltop Wedding",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Hilltop Wedding", body["title"])

	resp, _ = e.do(t, http.MethodPut, "/admin/events/999", admin, map[string]any{
		"category": "wedding", "title": "x",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/events/%d", id), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/events/%d", id), admin, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminPhotoUpload(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "+15550100999", domain.RoleAdmin)
	ev := e.seedEvent(t, "Lakeside Wedding", "WEDDING", "Lisbon", 0, 0)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photos"; filename="venue.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/admin/events/%d/photos", e.srv.URL, ev.ID), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+admin)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The photo shows up on the public event page.
	getResp, body := e.do(t, http.MethodGet, fmt.Sprintf("/events/%d", ev.ID), "", nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	photos := body["photos"].([]any)
	require.Len(t, photos, 1)
}

func TestAdminPackageCRUD(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "+15550100999", domain.RoleAdmin)
	ev := e.seedEvent(t, "Lakeside Wedding", "WEDDING", "Lisbon", 0, 0)

	resp, body := e.do(t, http.MethodPost, "/admin/packages", admin, map[string]any{
		"event_id": ev.ID, "name": "Gold", "price": 900, "features": []string{"dj"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(body["id"].(float64))

	resp, _ = e.do(t, http.MethodPost, "/admin/packages", admin, map[string]any{
		"event_id": 999, "name": "Gold", "price": 1,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodPut, fmt.Sprintf("/admin/packages/%d", id), admin, map[string]any{
		"event_id": ev.ID, "name": "Gold Plus", "price": 1100,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Gold Plus", body["name"])

	resp, _ = e.do(t, http.MethodDelete, fmt.Sprintf("/admin/packages/%d", id), admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAdminBookingStatusFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "+15550100999", domain.RoleAdmin)
	user := e.token(t, "+15550100123", domain.RoleUser)
	ev := e.seedEvent(t, "Lakeside Wedding", "WEDDING", "Lisbon", 0, 0)

	resp, body := e.do(t, http.MethodPost, "/events/bookings", user, map[string]any{"event_id": ev.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(body["id"].(float64))

	resp, _ = e.do(t, http.MethodPut, fmt.Sprintf("/admin/bookings/%d/status", id), admin,
		map[string]string{"status": "SHIPPED"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPut, fmt.Sprintf("/admin/bookings/%d/status", id), admin,
		map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "APPROVED", body["status"])

	// Terminal: a second transition is rejected.
	resp, _ = e.do(t, http.MethodPut, fmt.Sprintf("/admin/bookings/%d/status", id), admin,
		map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The change is visible to both sides.
	resp, body = e.do(t, http.MethodGet, "/events/bookings", user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "APPROVED", body["bookings"].([]any)[0].(map[string]any)["status"])

	resp, body = e.do(t, http.MethodGet, "/admin/bookings?status=APPROVED", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["bookings"], 1)

	resp, _ = e.do(t, http.MethodGet, "/admin/bookings?status=nope", admin, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPut, "/admin/bookings/999/status", admin,
		map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminListUsers(t *testing.T) {
	e := newEnv(t)
	admin := e.token(t, "+15550100999", domain.RoleAdmin)
	e.token(t, "+15550100123", domain.RoleUser)

	resp, body := e.do(t, http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["users"], 2)
}
