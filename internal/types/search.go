package types

import (
	"errors"
	"strings"
)

// Kind names the populated variant of a SearchRequest.
type Kind string

const (
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindStructured Kind = "structured"
)

// Image MIME subtypes accepted by the image analysis endpoint.
const (
	MimeJPEG = "jpeg"
	MimePNG  = "png"
	MimeGIF  = "gif"
	MimeBMP  = "bmp"
)

var allowedMimeTypes = map[string]bool{
	MimeJPEG: true,
	MimePNG:  true,
	MimeGIF:  true,
	MimeBMP:  true,
}

// IsAllowedMimeType reports whether m is one of the accepted image subtypes.
func IsAllowedMimeType(m string) bool {
	return allowedMimeTypes[m]
}

var (
	ErrNoVariant       = errors.New("search request has no variant")
	ErrManyVariants    = errors.New("search request has more than one variant")
	ErrEmptyText       = errors.New("text query is empty")
	ErrEmptyImage      = errors.New("image query has no data")
	ErrBadMimeType     = errors.New("image type not allowed")
	ErrMissingCategory = errors.New("structured query has no category")
)

// TextQuery is a free-text search.
type TextQuery struct {
	RawText string `json:"rawText" bson:"rawText"`
}

// ImageQuery is a search by food photo. Bytes are not persisted with history;
// ArchiveKey points at the stored original once it has been archived.
// ArchiveURL is a short-lived download link filled in when history is listed.
type ImageQuery struct {
	ImageBytes []byte `json:"-" bson:"-"`
	MimeType   string `json:"mimeType" bson:"mimeType"`
	Filename   string `json:"filename,omitempty" bson:"filename,omitempty"`
	ArchiveKey string `json:"archiveKey,omitempty" bson:"archiveKey,omitempty"`
	ArchiveURL string `json:"archiveUrl,omitempty" bson:"-"`
}

// StructuredQuery is a search built from the cascading filter form.
type StructuredQuery struct {
	Category           string   `json:"category" bson:"category" validate:"required"`
	DietaryPreferences []string `json:"dietaryPreferences" bson:"dietaryPreferences"`
	Ingredients        []string `json:"ingredients" bson:"ingredients"`
	CalorieTarget      int      `json:"calorieTarget" bson:"calorieTarget" validate:"gte=0"`
	TimeLimitMinutes   int      `json:"timeLimitMinutes" bson:"timeLimitMinutes" validate:"gte=0"`
}

// SearchRequest carries exactly one of its variants.
type SearchRequest struct {
	Text       *TextQuery       `json:"text,omitempty" bson:"text,omitempty"`
	Image      *ImageQuery      `json:"image,omitempty" bson:"image,omitempty"`
	Structured *StructuredQuery `json:"structured,omitempty" bson:"structured,omitempty"`
}

// Kind returns the populated variant, or "" when the request is not a single variant.
func (r SearchRequest) Kind() Kind {
	var kind Kind
	n := 0
	if r.Text != nil {
		kind = KindText
		n++
	}
	if r.Image != nil {
		kind = KindImage
		n++
	}
	if r.Structured != nil {
		kind = KindStructured
		n++
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Validate enforces the single-variant rule and the per-variant constraints
// that do not need form metadata.
func (r SearchRequest) Validate() error {
	n := 0
	for _, set := range []bool{r.Text != nil, r.Image != nil, r.Structured != nil} {
		if set {
			n++
		}
	}
	switch {
	case n == 0:
		return ErrNoVariant
	case n > 1:
		return ErrManyVariants
	}

	switch {
	case r.Text != nil:
		if strings.TrimSpace(r.Text.RawText) == "" {
			return ErrEmptyText
		}
	case r.Image != nil:
		if !IsAllowedMimeType(r.Image.MimeType) {
			return ErrBadMimeType
		}
	case r.Structured != nil:
		if r.Structured.Category == "" {
			return ErrMissingCategory
		}
	}
	return nil
}
