package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

const threeRecipes = `[
	{"RecipeId": 1, "Name": "Vegan Brownies", "RecipeCategory": "Dessert", "RecipeIngredientParts": ["Flour", "Cocoa"], "RecipeIngredientQuantities": ["1 cup", "1/2 cup"], "Keywords": ["Vegan"], "Calories": 280.5, "TotalTime_minutes": 40, "AggregatedRating": 4.5, "ReviewCount": 12, "Similarity": 0.91},
	{"RecipeId": 2, "Name": "Oat Cookies", "RecipeCategory": "Dessert", "RecipeIngredientParts": ["Flour"], "Keywords": [], "Calories": 150, "TotalTime_minutes": 25, "AggregatedRating": 4, "ReviewCount": 3},
	{"RecipeId": 3, "Name": "Banana Bread", "RecipeCategory": "Dessert", "RecipeIngredientParts": ["Flour", "Banana"], "Keywords": ["Quick"], "Calories": 310, "TotalTime_minutes": 45, "AggregatedRating": 5, "ReviewCount": 40}
]`

func structuredRequest() types.SearchRequest {
	return types.SearchRequest{Structured: &types.StructuredQuery{
		Category:           "Dessert",
		DietaryPreferences: []string{"Vegan"},
		Ingredients:        []string{"Flour"},
		CalorieTarget:      300,
		TimeLimitMinutes:   45,
	}}
}

func TestRecommendStructuredBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathRecommend, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"category":"Dessert","dietary_preference":["Vegan"],"ingredients":["Flour"],"calories":300,"time":45}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(threeRecipes))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	records, err := client.Recommend(context.Background(), structuredRequest())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].RecipeID)
	assert.Equal(t, "Vegan Brownies", records[0].Name)
	assert.Equal(t, []string{"1 cup", "1/2 cup"}, records[0].RecipeIngredientQuantities)
	assert.InDelta(t, 0.91, records[0].Similarity, 1e-9)
	assert.Equal(t, "Banana Bread", records[2].Name)
}

func TestRecommendEmptyListsAreArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"category":"Dessert","dietary_preference":[],"ingredients":[],"calories":0,"time":0}`, string(body))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	records, err := client.Recommend(context.Background(), types.SearchRequest{
		Structured: &types.StructuredQuery{Category: "Dessert"},
	})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecommendTextUsesTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathExtractAttributes, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"spicy noodles"}`, string(body))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL + "/"))
	_, err := client.Recommend(context.Background(), types.SearchRequest{Text: &types.TextQuery{RawText: "spicy noodles"}})
	require.NoError(t, err)
}

func TestRecommendImageMultipart(t *testing.T) {
	payload := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAnalyzeImage, r.URL.Path)
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		got, _ := io.ReadAll(file)
		assert.Equal(t, payload, got)
		assert.Equal(t, "salad.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(threeRecipes))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	records, err := client.Recommend(context.Background(), types.SearchRequest{Image: &types.ImageQuery{
		ImageBytes: payload,
		MimeType:   types.MimePNG,
		Filename:   "salad.png",
	}})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRecommendServerErrorIsTransport(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	records, err := client.Recommend(context.Background(), structuredRequest())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperr.Is(err, apperr.KindTransport))

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, "model not loaded", terr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no automatic retry")
	assert.Equal(t, apperr.MsgTransport, apperr.PublicMessage(err))
}

func TestRecommendNetworkFailureIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url))
	_, err := client.Recommend(context.Background(), structuredRequest())
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Zero(t, terr.StatusCode)
}

func TestRecommendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTimeout(20*time.Millisecond))
	_, err := client.Recommend(context.Background(), structuredRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransport))
}

func TestRecommendUnexpectedShape(t *testing.T) {
	bodies := map[string]string{
		"object":           `{"recipes": []}`,
		"truncated":        `[{"RecipeId": 1, "Name": "Cut`,
		"wrong field type": `[{"RecipeId": "one"}]`,
		"mismatched lists": `[{"RecipeId": 1, "RecipeIngredientParts": ["a", "b"], "RecipeIngredientQuantities": ["1"]}]`,
		"rating too high":  `[{"RecipeId": 1, "AggregatedRating": 7}]`,
		"empty body":       ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			records, err := client.Recommend(context.Background(), structuredRequest())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, apperr.Is(err, apperr.KindUnexpectedShape))

			var serr *UnexpectedResponseShapeError
			assert.True(t, errors.As(err, &serr))
		})
	}
}

func TestRecommendRejectsInvalidRequest(t *testing.T) {
	client := NewClient(WithBaseURL("http://127.0.0.1:1"))
	_, err := client.Recommend(context.Background(), types.SearchRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFormData(t *testing.T) {
	meta := types.FormMetadata{
		Categories:         []string{"Dessert"},
		DietaryPreferences: map[string][]string{"Dessert": {"Vegan"}},
		Ingredients:        map[string]map[string][]string{"Dessert": {"Vegan": {"Flour"}}},
		CalorieRanges:      map[string]types.Range{"Dessert": {Min: 50, Max: 800}},
		TimeRanges:         map[string]types.Range{"Dessert": {Min: 5, Max: 300}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathFormData, r.URL.Path)
		_ = json.NewEncoder(w).Encode(meta)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	got, err := client.FormData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, meta, *got)
}

func TestFormDataShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).FormData(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnexpectedShape))
}
