// Package validate checks entry payloads before they reach the store.
// Creation enforces the per-type required fields; updates are sparse
// patches, so only fields actually supplied are shape-checked.
package validate

import (
	"errors"
	"regexp"
	"time"

	"year-journal/internal/models"
)

var (
	ErrMissingDate        = errors.New("date and entry_type are required")
	ErrMissingEntryType   = errors.New("date and entry_type are required")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidEntryType   = errors.New("entry_type must be 'photo' or 'text'")
	ErrMissingPhotoURL    = errors.New("photo_url is required for photo entries")
	ErrMissingTextContent = errors.New("text_content is required for text entries")
	ErrInvalidColor       = errors.New("color must be a hex code like #RRGGBB")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Create validates a creation payload. Unknown extra fields never fail
// here; the JSON decoder already dropped them.
func Create(req *models.CreateEntryRequest) error {
	if req.Date == "" {
		return ErrMissingDate
	}
	if req.EntryType == "" {
		return ErrMissingEntryType
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return ErrInvalidDate
	}
	switch req.EntryType {
	case models.EntryTypePhoto:
		if req.PhotoURL == nil || *req.PhotoURL == "" {
			return ErrMissingPhotoURL
		}
	case models.EntryTypeText:
		if req.TextContent == nil || *req.TextContent == "" {
			return ErrMissingTextContent
		}
	default:
		return ErrInvalidEntryType
	}
	if req.Color != nil && !hexColor.MatchString(*req.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Update validates a partial-update payload. The create-time required
// fields are deliberately not re-enforced: a patch carrying only a color
// is fine, whatever the entry's type.
func Update(req *models.UpdateEntryRequest) error {
	if req.EntryType != nil &&
		*req.EntryType != models.EntryTypePhoto && *req.EntryType != models.EntryTypeText {
		return ErrInvalidEntryType
	}
	if req.Color != nil && !hexColor.MatchString(*req.Color) {
		return ErrInvalidColor
	}
	return nil
}
