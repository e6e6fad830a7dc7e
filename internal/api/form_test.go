package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/mocks"
	"github.com/pageza/recipefinder/backend/internal/query"
	"github.com/pageza/recipefinder/backend/internal/types"
)

func newFormRouter(formData *mocks.MockFormDataService) *gin.Engine {
	router := newTestRouter("")
	NewFormHandler(formData, &testLog).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestGetFormData(t *testing.T) {
	formData := new(mocks.MockFormDataService)
	formData.On("Get", mock.Anything).Return(testMeta, nil)

	w := doJSON(t, newFormRouter(formData), http.MethodGet, "/api/v1/form-data", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got types.FormMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, testMeta.Categories, got.Categories)
	assert.Equal(t, types.Range{Min: 100, Max: 900}, got.CalorieRanges["Dessert"])
}

func TestGetFormDataUnavailable(t *testing.T) {
	formData := new(mocks.MockFormDataService)
	formData.On("Get", mock.Anything).Return(nil, apperr.Transport(errors.New("timeout")))

	w := doJSON(t, newFormRouter(formData), http.MethodGet, "/api/v1/form-data", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, apperr.MsgTransport, errorMessage(t, w))
}

func TestEvaluateForm(t *testing.T) {
	formData := new(mocks.MockFormDataService)
	formData.On("Get", mock.Anything).Return(testMeta, nil)
	router := newFormRouter(formData)

	t.Run("empty form uses defaults", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/form/options", gin.H{})
		require.Equal(t, http.StatusOK, w.Code)

		var got query.Form
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, query.DefaultCalorieRange, got.CalorieRange)
		assert.Equal(t, query.DefaultTimeRange, got.TimeRange)
		assert.Empty(t, got.PreferenceOptions)

		var resp FormOptionsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Submittable)
		assert.Equal(t, query.MsgCategory, resp.Problem)
	})

	t.Run("cascade", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/form/options", gin.H{
			"category":           "Dessert",
			"dietaryPreferences": []string{"Vegan", "Gluten-Free"},
			"ingredients":        []string{"cocoa", "lard"},
			"calories":           450,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var got query.Form
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, []string{"Vegan", "Gluten-Free"}, got.PreferenceOptions)
		assert.ElementsMatch(t, []string{"banana", "cocoa", "almond flour"}, got.IngredientOptions)
		assert.Equal(t, []string{"cocoa"}, got.Ingredients, "ingredients outside the options are dropped")
		assert.Equal(t, 450, got.Calories)
		assert.Equal(t, 5, got.Time, "time starts at the category minimum")
		assert.Equal(t, types.Range{Min: 5, Max: 240}, got.TimeRange)

		var resp FormOptionsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Submittable)
		assert.Empty(t, resp.Problem)
	})

	t.Run("calories outside the category range", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/form/options", gin.H{
			"category": "Dessert",
			"calories": 5000,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp FormOptionsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Submittable)
		assert.Equal(t, query.MsgCalories, resp.Problem)
		assert.Equal(t, 5000, resp.Calories)
	})
}
