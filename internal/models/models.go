package models

import "time"

const (
	EntryTypePhoto = "photo"
	EntryTypeText  = "text"
)

// DateLayout is the calendar-date format used everywhere: storage,
// API payloads and grid cells.
const DateLayout = "2006-01-02"

// DayEntry is one journal record for exactly one calendar date.
// The type-specific columns are nullable; which ones are meaningful
// is governed by EntryType. A type change does not clear the columns
// of the previous type.
type DayEntry struct {
	ID                int64     `json:"id"`
	Date              string    `json:"date"`
	EntryType         string    `json:"entry_type"`
	PhotoURL          *string   `json:"photo_url"`
	PhotoThumbnailURL *string   `json:"photo_thumbnail_url"`
	TextContent       *string   `json:"text_content"`
	Color             *string   `json:"color"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateEntryRequest is the POST /api/entries payload.
type CreateEntryRequest struct {
	Date              string  `json:"date"`
	EntryType         string  `json:"entry_type"`
	PhotoURL          *string `json:"photo_url"`
	PhotoThumbnailURL *string `json:"photo_thumbnail_url"`
	TextContent       *string `json:"text_content"`
	Color             *string `json:"color"`
}

// UpdateEntryRequest is the PUT /api/entries/{id} payload. Every field
// is optional; nil means "leave untouched".
type UpdateEntryRequest struct {
	EntryType         *string `json:"entry_type"`
	PhotoURL          *string `json:"photo_url"`
	PhotoThumbnailURL *string `json:"photo_thumbnail_url"`
	TextContent       *string `json:"text_content"`
	Color             *string `json:"color"`
}

// Photo and Text are the typed views of an entry's payload. The row
// stays flat for storage, but callers that care about one variant go
// through these instead of poking at nullable columns.
type Photo struct {
	URL          string
	ThumbnailURL string
}

type Text struct {
	Content string
	Color   string
}

// Photo returns the photo payload; ok is false when the entry is not
// photo-typed or carries no URL.
func (e *DayEntry) Photo() (Photo, bool) {
	if e.EntryType != EntryTypePhoto || e.PhotoURL == nil {
		return Photo{}, false
	}
	p := Photo{URL: *e.PhotoURL}
	if e.PhotoThumbnailURL != nil {
		p.ThumbnailURL = *e.PhotoThumbnailURL
	}
	return p, true
}

// Text returns the text payload; ok is false when the entry is not
// text-typed or carries no content.
func (e *DayEntry) Text() (Text, bool) {
	if e.EntryType != EntryTypeText || e.TextContent == nil {
		return Text{}, false
	}
	t := Text{Content: *e.TextContent}
	if e.Color != nil {
		t.Color = *e.Color
	}
	return t, true
}

type ColorOption struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette is the set of background colors offered for text entries.
var Palette = []ColorOption{
	{Name: "Coral", Hex: "#FF6B6B"},
	{Name: "Sunshine", Hex: "#FFD93D"},
	{Name: "Mint", Hex: "#6BCB77"},
	{Name: "Sky", Hex: "#4D96FF"},
	{Name: "Lavender", Hex: "#9D84B7"},
	{Name: "Peach", Hex: "#FFB4A2"},
	{Name: "Rose", Hex: "#E63946"},
	{Name: "Ocean", Hex: "#06A77D"},
}

type AuthToken struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
