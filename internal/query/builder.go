// Package query turns raw user input into validated search requests.
package query

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// DefaultMaxImageBytes bounds uploaded query images.
const DefaultMaxImageBytes = 10 << 20

// User-facing validation messages.
const (
	MsgEmptyText         = "Please enter a search term."
	MsgImageType         = "Please upload a JPG, JPEG, PNG, GIF or BMP image."
	MsgImageEmpty        = "Please choose an image to upload."
	MsgImageTooLarge     = "That image is too large."
	MsgCategory          = "Please choose a category."
	MsgDietaryPreference = "One of the selected dietary preferences is not available for this category."
	MsgIngredient        = "One of the selected ingredients is not available for these preferences."
	MsgCalories          = "Calories are outside the range for this category."
	MsgTime              = "Cooking time is outside the range for this category."
)

var extensionMime = map[string]string{
	".jpg":  types.MimeJPEG,
	".jpeg": types.MimeJPEG,
	".png":  types.MimePNG,
	".gif":  types.MimeGIF,
	".bmp":  types.MimeBMP,
}

// MimeTypeForFilename maps a filename's extension to an allowed image subtype.
func MimeTypeForFilename(filename string) (string, bool) {
	mime, ok := extensionMime[strings.ToLower(filepath.Ext(filename))]
	return mime, ok
}

// Builder validates raw input and produces SearchRequests.
type Builder struct {
	validate      *validator.Validate
	maxImageBytes int64
}

// NewBuilder creates a Builder. A non-positive maxImageBytes uses DefaultMaxImageBytes.
func NewBuilder(maxImageBytes int64) *Builder {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Builder{
		validate:      validator.New(),
		maxImageBytes: maxImageBytes,
	}
}

// BuildText trims raw and rejects it when nothing is left.
func (b *Builder) BuildText(raw string) (types.SearchRequest, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return types.SearchRequest{}, apperr.Validation(MsgEmptyText).WithOp("query.BuildText")
	}
	return types.SearchRequest{Text: &types.TextQuery{RawText: text}}, nil
}

// BuildImage checks the upload's extension and size before anything is sent.
func (b *Builder) BuildImage(filename string, data []byte) (types.SearchRequest, error) {
	mime, ok := MimeTypeForFilename(filename)
	if !ok {
		return types.SearchRequest{}, apperr.Validation(MsgImageType).WithOp("query.BuildImage")
	}
	if len(data) == 0 {
		return types.SearchRequest{}, apperr.Validation(MsgImageEmpty).WithOp("query.BuildImage")
	}
	if int64(len(data)) > b.maxImageBytes {
		return types.SearchRequest{}, apperr.Validation(MsgImageTooLarge).WithOp("query.BuildImage")
	}
	return types.SearchRequest{Image: &types.ImageQuery{
		ImageBytes: data,
		MimeType:   mime,
		Filename:   filepath.Base(filename),
	}}, nil
}

// BuildStructured checks q against the form metadata it was built from.
func (b *Builder) BuildStructured(meta *types.FormMetadata, q types.StructuredQuery) (types.SearchRequest, error) {
	const op = "query.BuildStructured"

	if err := b.validate.Struct(q); err != nil {
		return types.SearchRequest{}, apperr.Wrap(apperr.KindValidation, fieldMessage(err), err).WithOp(op)
	}
	if meta == nil || !meta.HasCategory(q.Category) {
		return types.SearchRequest{}, apperr.Validation(MsgCategory).WithOp(op)
	}

	offered := meta.DietaryPreferences[q.Category]
	for _, pref := range q.DietaryPreferences {
		if !slices.Contains(offered, pref) {
			return types.SearchRequest{}, apperr.Validation(MsgDietaryPreference).
				WithOp(op).WithDetails(map[string]string{"dietary_preference": pref})
		}
	}

	options := IngredientOptions(meta, q.Category, q.DietaryPreferences)
	for _, ing := range q.Ingredients {
		if !slices.Contains(options, ing) {
			return types.SearchRequest{}, apperr.Validation(MsgIngredient).
				WithOp(op).WithDetails(map[string]string{"ingredient": ing})
		}
	}

	calories, minutes := CategoryRanges(meta, q.Category)
	if !calories.Contains(q.CalorieTarget) {
		return types.SearchRequest{}, apperr.Validation(MsgCalories).
			WithOp(op).WithDetails(calories)
	}
	if !minutes.Contains(q.TimeLimitMinutes) {
		return types.SearchRequest{}, apperr.Validation(MsgTime).
			WithOp(op).WithDetails(minutes)
	}

	sq := q
	sq.DietaryPreferences = dedupe(q.DietaryPreferences)
	sq.Ingredients = dedupe(q.Ingredients)
	return types.SearchRequest{Structured: &sq}, nil
}

// Default ranges used when the metadata has none for a category.
var (
	DefaultCalorieRange = types.Range{Min: 0, Max: 1100}
	DefaultTimeRange    = types.Range{Min: 0, Max: 12000000}
)

// CategoryRanges returns the calorie and time ranges for category.
func CategoryRanges(meta *types.FormMetadata, category string) (types.Range, types.Range) {
	calories, ok := meta.CalorieRanges[category]
	if !ok {
		calories = DefaultCalorieRange
	}
	minutes, ok := meta.TimeRanges[category]
	if !ok {
		minutes = DefaultTimeRange
	}
	return calories, minutes
}

// IngredientOptions is the deduplicated union of the ingredient lists of the
// given preferences within category. Order follows first appearance.
func IngredientOptions(meta *types.FormMetadata, category string, preferences []string) []string {
	byPref := meta.Ingredients[category]
	var all []string
	for _, pref := range preferences {
		all = append(all, byPref[pref]...)
	}
	return dedupe(all)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func fieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "CalorieTarget":
			return MsgCalories
		case "TimeLimitMinutes":
			return MsgTime
		}
	}
	return MsgCategory
}

// Describe summarizes req for log lines.
func Describe(req types.SearchRequest) string {
	switch req.Kind() {
	case types.KindText:
		return fmt.Sprintf("text(%q)", req.Text.RawText)
	case types.KindImage:
		return fmt.Sprintf("image(%s, %d bytes)", req.Image.MimeType, len(req.Image.ImageBytes))
	case types.KindStructured:
		return fmt.Sprintf("structured(%s)", req.Structured.Category)
	default:
		return "invalid"
	}
}
