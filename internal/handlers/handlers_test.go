package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"year-journal/internal/auth"
	"year-journal/internal/cache"
	"year-journal/internal/calendar"
	"year-journal/internal/db"
	"year-journal/internal/models"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return New(database, cache.New(), auth.New(database, "test-secret"), t.TempDir())
}

func asWriter(r *http.Request) *http.Request {
	r.Header.Set("X-User-Role", "writer")
	return r
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func createTextEntry(t *testing.T, h *Handlers, date, content, color string) models.DayEntry {
	t.Helper()
	body := jsonBody(t, map[string]string{
		"date":         date,
		"entry_type":   "text",
		"text_content": content,
		"color":        color,
	})
	w := httptest.NewRecorder()
	h.CreateEntry(w, asWriter(httptest.NewRequest(http.MethodPost, "/api/entries", body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry models.DayEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	return entry
}

func TestGetEntries_MissingYear(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.GetEntries(w, httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Year parameter is required")
}

func TestGetEntries_EmptyYearIsArray(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.GetEntries(w, httptest.NewRequest(http.MethodGet, "/api/entries?year=2024", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestCreateEntry_Unauthorized(t *testing.T) {
	h := newTestHandlers(t)

	body := jsonBody(t, map[string]string{"date": "2024-03-15", "entry_type": "text", "text_content": "hi"})
	w := httptest.NewRecorder()
	h.CreateEntry(w, httptest.NewRequest(http.MethodPost, "/api/entries", body))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEntry_Validation(t *testing.T) {
	h := newTestHandlers(t)

	body := jsonBody(t, map[string]string{"date": "2024-03-15", "entry_type": "photo"})
	w := httptest.NewRecorder()
	h.CreateEntry(w, asWriter(httptest.NewRequest(http.MethodPost, "/api/entries", body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "photo_url is required for photo entries")
}

func TestCreateEntry_RoundTripAndConflict(t *testing.T) {
	h := newTestHandlers(t)

	entry := createTextEntry(t, h, "2024-03-15", "hi", "#6BCB77")
	assert.NotZero(t, entry.ID)

	// Listing the year returns exactly that entry.
	w := httptest.NewRecorder()
	h.GetEntries(w, httptest.NewRequest(http.MethodGet, "/api/entries?year=2024", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.DayEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "hi", *entries[0].TextContent)

	// A second create for the same date conflicts.
	body := jsonBody(t, map[string]string{"date": "2024-03-15", "entry_type": "text", "text_content": "again"})
	w = httptest.NewRecorder()
	h.CreateEntry(w, asWriter(httptest.NewRequest(http.MethodPost, "/api/entries", body)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "An entry already exists for this date")
}

func TestUpdateEntry_PartialPatch(t *testing.T) {
	h := newTestHandlers(t)
	entry := createTextEntry(t, h, "2024-03-15", "hi", "#6BCB77")

	body := jsonBody(t, map[string]string{"color": "#FF6B6B"})
	w := httptest.NewRecorder()
	req := asWriter(httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/entries/%d", entry.ID), body))
	h.UpdateEntry(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.DayEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "#FF6B6B", *updated.Color)
	assert.Equal(t, "hi", *updated.TextContent)
	assert.Equal(t, models.EntryTypeText, updated.EntryType)
}

func TestUpdateEntry_InvalidID(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	req := asWriter(httptest.NewRequest(http.MethodPut, "/api/entries/abc", jsonBody(t, map[string]string{})))
	h.UpdateEntry(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid entry ID")
}

func TestUpdateEntry_MissingID(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	req := asWriter(httptest.NewRequest(http.MethodPut, "/api/entries/999", jsonBody(t, map[string]string{"color": "#FF6B6B"})))
	h.UpdateEntry(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEntry(t *testing.T) {
	h := newTestHandlers(t)
	entry := createTextEntry(t, h, "2024-03-15", "hi", "#6BCB77")

	w := httptest.NewRecorder()
	req := asWriter(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/entries/%d", entry.ID), nil))
	h.DeleteEntry(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	// The deleted id is gone.
	w = httptest.NewRecorder()
	h.GetEntry(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/entries/%d", entry.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting it again still reports success (no existence check).
	w = httptest.NewRecorder()
	req = asWriter(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/entries/%d", entry.ID), nil))
	h.DeleteEntry(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCalendar(t *testing.T) {
	h := newTestHandlers(t)
	entry := createTextEntry(t, h, "2024-03-15", "hi", "#6BCB77")

	w := httptest.NewRecorder()
	h.GetCalendar(w, httptest.NewRequest(http.MethodGet, "/api/calendar?year=2024", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var view calendar.YearView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2024, view.Year)
	require.NotEmpty(t, view.Weeks)

	var found bool
	for _, week := range view.Weeks {
		for _, cell := range week.Days {
			if cell != nil && cell.Date == "2024-03-15" {
				require.NotNil(t, cell.Entry)
				assert.Equal(t, entry.ID, cell.Entry.ID)
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestGetCalendar_MissingYear(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.GetCalendar(w, httptest.NewRequest(http.MethodGet, "/api/calendar", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPalette(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.GetPalette(w, httptest.NewRequest(http.MethodGet, "/api/palette", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var palette []models.ColorOption
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &palette))
	assert.Len(t, palette, 8)
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Upload(w, asWriter(uploadRequest(t, "photo.jpg")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp["url"], "/uploads/"))
	assert.True(t, strings.HasSuffix(resp["url"], ".jpg"))
}

func TestUpload_RejectsNonImage(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Upload(w, asWriter(uploadRequest(t, "notes.txt")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported file type")
}

func TestAuthCheck(t *testing.T) {
	h := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.CheckAuth(w, httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))
	assert.JSONEq(t, `{"authenticated": false}`, w.Body.String())

	w = httptest.NewRecorder()
	h.CheckAuth(w, asWriter(httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)))
	assert.JSONEq(t, `{"authenticated": true}`, w.Body.String())
}
