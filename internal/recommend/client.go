// Package recommend is the HTTP client for the external recommendation service.
// It performs exactly one exchange per call: no retries, no partial results.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Endpoints of the recommendation service.
const (
	PathExtractAttributes = "/extract-recipe-attributes"
	PathAnalyzeImage      = "/analyze-food-image"
	PathRecommend         = "/recommend"
	PathFormData          = "/form-data"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client talks to the recommendation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// textRequest is the body of the attribute extraction call.
type textRequest struct {
	Text string `json:"text"`
}

// recommendRequest is the body of the structured recommend call.
type recommendRequest struct {
	Category          string   `json:"category"`
	DietaryPreference []string `json:"dietary_preference"`
	Ingredients       []string `json:"ingredients"`
	Calories          int      `json:"calories"`
	Time              int      `json:"time"`
}

// NewClient creates a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.logger,
	}
}

// Recommend sends req to the endpoint matching its variant and returns the
// ranked records. Failures are *apperr.Error values of kind Transport or
// UnexpectedShape wrapping the typed errors of this package.
func (c *Client) Recommend(ctx context.Context, req types.SearchRequest) ([]types.RecipeRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid search request", err).WithOp("recommend.Recommend")
	}

	var (
		path string
		body io.Reader
		ct   string
	)
	switch req.Kind() {
	case types.KindText:
		path = PathExtractAttributes
		b, err := json.Marshal(textRequest{Text: req.Text.RawText})
		if err != nil {
			return nil, apperr.Internal(err)
		}
		body, ct = bytes.NewReader(b), "application/json"
	case types.KindImage:
		path = PathAnalyzeImage
		buf, contentType, err := imageForm(req.Image)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		body, ct = buf, contentType
	case types.KindStructured:
		path = PathRecommend
		s := req.Structured
		b, err := json.Marshal(recommendRequest{
			Category:          s.Category,
			DietaryPreference: nonNil(s.DietaryPreferences),
			Ingredients:       nonNil(s.Ingredients),
			Calories:          s.CalorieTarget,
			Time:              s.TimeLimitMinutes,
		})
		if err != nil {
			return nil, apperr.Internal(err)
		}
		body, ct = bytes.NewReader(b), "application/json"
	}

	raw, err := c.do(ctx, http.MethodPost, path, body, ct)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(path, raw)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", path).Msg("unexpected response shape")
		return nil, apperr.UnexpectedShape(err).WithOp("recommend.Recommend")
	}
	return records, nil
}

// FormData fetches the filter form metadata.
func (c *Client) FormData(ctx context.Context) (*types.FormMetadata, error) {
	raw, err := c.do(ctx, http.MethodGet, PathFormData, nil, "")
	if err != nil {
		return nil, err
	}

	var meta types.FormMetadata
	if err := json.Unmarshal(raw, &meta); err != nil || meta.Categories == nil {
		shapeErr := &UnexpectedResponseShapeError{Endpoint: PathFormData, Message: "expected form metadata object", Cause: err}
		return nil, apperr.UnexpectedShape(shapeErr).WithOp("recommend.FormData")
	}
	return &meta, nil
}

// do performs a single exchange and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	op := "recommend." + strings.TrimPrefix(path, "/")

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperr.Transport(&TransportError{Endpoint: path, Message: "failed to create request", Cause: err}).WithOp(op)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := "request failed"
		if ctx.Err() != nil {
			msg = "request cancelled"
		}
		c.logger.Warn().Err(err).Str("endpoint", path).Msg(msg)
		return nil, apperr.Transport(&TransportError{Endpoint: path, Message: msg, Cause: err}).WithOp(op)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Transport(&TransportError{Endpoint: path, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}).WithOp(op)
	}

	c.logger.Debug().
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("recommendation service call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		terr := &TransportError{Endpoint: path, StatusCode: resp.StatusCode, Message: serviceMessage(raw)}
		c.logger.Warn().Err(terr).Msg("recommendation service returned error status")
		return nil, apperr.Transport(terr).WithOp(op)
	}
	return raw, nil
}

// decodeRecords accepts only a JSON array whose every element is a valid record.
func decodeRecords(path string, raw []byte) ([]types.RecipeRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &UnexpectedResponseShapeError{Endpoint: path, Message: "expected a JSON array of recipes"}
	}

	var records []types.RecipeRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &UnexpectedResponseShapeError{Endpoint: path, Message: "failed to decode recipes", Cause: err}
	}

	var errs []error
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, &UnexpectedResponseShapeError{Endpoint: path, Message: "invalid recipe records", Cause: errors.Join(errs...)}
	}
	if records == nil {
		records = []types.RecipeRecord{}
	}
	return records, nil
}

// imageForm encodes the image as a multipart body with an "image" file part.
func imageForm(img *types.ImageQuery) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	filename := img.Filename
	if filename == "" {
		filename = "upload." + img.MimeType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", "image/"+img.MimeType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(img.ImageBytes); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// serviceMessage pulls the "error" field out of an error body for logs.
func serviceMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return strings.TrimSpace(string(raw))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
