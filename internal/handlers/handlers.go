package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"year-journal/internal/auth"
	"year-journal/internal/cache"
	"year-journal/internal/calendar"
	"year-journal/internal/db"
	"year-journal/internal/models"
	"year-journal/internal/validate"
)

const maxUploadSize = 10 << 20 // 10 MiB

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type Handlers struct {
	db         *db.DB
	cache      *cache.Cache
	auth       *auth.Auth
	uploadsDir string
}

func New(database *db.DB, c *cache.Cache, a *auth.Auth, uploadsDir string) *Handlers {
	return &Handlers{
		db:         database,
		cache:      c,
		auth:       a,
		uploadsDir: uploadsDir,
	}
}

func (h *Handlers) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *Handlers) error(w http.ResponseWriter, message string, status int) {
	h.respond(w, map[string]string{"error": message}, status)
}

func entryID(r *http.Request) (int64, error) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	return strconv.ParseInt(idStr, 10, 64)
}

func yearParam(r *http.Request) (int, error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return 0, errors.New("year parameter is required")
	}
	return strconv.Atoi(yearStr)
}

// listYear returns the year's entries, via the cache when possible.
// The result is never nil.
func (h *Handlers) listYear(year int) ([]models.DayEntry, error) {
	key := fmt.Sprintf("year:%d", year)
	if entries, ok := h.cache.Get(key); ok {
		return entries, nil
	}

	entries, err := h.db.ListEntriesByYear(year)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.DayEntry{}
	}
	h.cache.Set(key, entries)
	return entries, nil
}

// Entries
func (h *Handlers) GetEntries(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.error(w, "Year parameter is required", http.StatusBadRequest)
		return
	}

	entries, err := h.listYear(year)
	if err != nil {
		h.error(w, "Failed to fetch entries", http.StatusInternalServerError)
		return
	}

	h.respond(w, entries, http.StatusOK)
}

func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		h.error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	entry, err := h.db.GetEntry(id)
	if err != nil {
		h.error(w, "Entry not found", http.StatusNotFound)
		return
	}

	h.respond(w, entry, http.StatusOK)
}

func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	if !auth.IsWriter(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Create(&req); err != nil {
		h.error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.db.CreateEntry(&req)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			h.error(w, "An entry already exists for this date", http.StatusConflict)
			return
		}
		h.error(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}

	h.cache.Clear()
	h.respond(w, entry, http.StatusCreated)
}

func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	if !auth.IsWriter(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := entryID(r)
	if err != nil {
		h.error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Update(&req); err != nil {
		h.error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.db.UpdateEntry(id, &req)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.error(w, "Entry not found", http.StatusNotFound)
			return
		}
		h.error(w, "Failed to update entry", http.StatusInternalServerError)
		return
	}

	h.cache.Clear()
	h.respond(w, entry, http.StatusOK)
}

func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if !auth.IsWriter(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := entryID(r)
	if err != nil {
		h.error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteEntry(id); err != nil {
		h.error(w, "Failed to delete entry", http.StatusInternalServerError)
		return
	}

	h.cache.Clear()
	h.respond(w, map[string]bool{"success": true}, http.StatusOK)
}

// Calendar
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.error(w, "Year parameter is required", http.StatusBadRequest)
		return
	}

	entries, err := h.listYear(year)
	if err != nil {
		// The grid still renders with empty cells when the store is down.
		log.Printf("Error fetching entries for year %d: %v", year, err)
		entries = nil
	}

	h.respond(w, calendar.Assemble(year, entries), http.StatusOK)
}

func (h *Handlers) GetPalette(w http.ResponseWriter, r *http.Request) {
	h.respond(w, models.Palette, http.StatusOK)
}

// Upload stores a photo and returns its public URL. Thumbnails are not
// generated; the thumbnail URL stays optional in the entry payload.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if !auth.IsWriter(r) {
		h.error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.error(w, "File too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		h.error(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadsDir, name))
	if err != nil {
		h.error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	h.respond(w, map[string]string{"url": "/uploads/" + name}, http.StatusOK)
}

// Auth
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.error(w, "Token is required", http.StatusBadRequest)
		return
	}

	jwt, err := h.auth.ValidateLoginToken(token)
	if err != nil {
		h.error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    jwt,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60, // 3 months
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "../../", http.StatusFound)
}

func (h *Handlers) CheckAuth(w http.ResponseWriter, r *http.Request) {
	isWriter := auth.IsWriter(r)
	h.respond(w, map[string]bool{"authenticated": isWriter}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	h.respond(w, map[string]string{"status": "ok"}, http.StatusOK)
}
