package presenter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/resultcache"
	"github.com/pageza/recipefinder/backend/internal/types"
)

const fallback = "/static/default.png"

func loadedPresenter(t *testing.T, records []types.RecipeRecord) (*Presenter, *resultcache.MemoryStore) {
	t.Helper()
	cache := resultcache.NewMemoryStore()
	require.NoError(t, cache.Store(context.Background(), "sess", records))
	return New(cache, "sess", fallback), cache
}

func sampleRecords() []types.RecipeRecord {
	return []types.RecipeRecord{
		{
			RecipeID:                   11,
			Name:                       "Vegan Brownies",
			RecipeCategory:             "Dessert",
			RecipeIngredientParts:      []string{"Flour", "Cocoa"},
			RecipeIngredientQuantities: []string{"1 cup", "1/2 cup"},
			Keywords:                   []string{"Vegan", "Chocolate"},
			RecipeInstructions:         []string{"Mix.", "Bake."},
			Images:                     []string{"https://img.example.com/brownies.jpg"},
			AggregatedRating:           4.5,
			Similarity:                 0.9134,
		},
		{RecipeID: 12, Name: "Plain Cookies", Images: nil},
		{RecipeID: 13, Name: "Broken Image", Images: []string{"", "not a url", "javascript:alert(1)"}},
	}
}

func TestLoadPopulated(t *testing.T) {
	p, _ := loadedPresenter(t, sampleRecords())
	assert.Equal(t, StateIdle, p.State())

	view, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatePopulated, view.State)
	require.Len(t, view.Cards, 3)
	assert.Equal(t, "Vegan Brownies", view.Cards[0].Name)
	assert.Empty(t, view.Message)
}

func TestLoadReadsCacheOnce(t *testing.T) {
	p, cache := loadedPresenter(t, sampleRecords())
	_, err := p.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, cache.Store(context.Background(), "sess", []types.RecipeRecord{{RecipeID: 99}}))
	view, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Cards, 3, "second load served from memory")

	_, ok, _ := cache.TakeAndClear(context.Background(), "sess")
	assert.True(t, ok, "newer value left in cache")
}

func TestLoadEmpty(t *testing.T) {
	for name, records := range map[string][]types.RecipeRecord{"absent": nil, "empty list": {}} {
		t.Run(name, func(t *testing.T) {
			cache := resultcache.NewMemoryStore()
			if records != nil {
				require.NoError(t, cache.Store(context.Background(), "sess", records))
			}
			view, err := New(cache, "sess", fallback).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StateEmpty, view.State)
			assert.Equal(t, EmptyMessage, view.Message)
			assert.NotNil(t, view.Cards)
		})
	}
}

type failingStore struct{}

func (failingStore) Store(context.Context, string, []types.RecipeRecord) error { return nil }

func (failingStore) TakeAndClear(context.Context, string) ([]types.RecipeRecord, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func TestLoadCacheErrorIsEmpty(t *testing.T) {
	view, err := New(failingStore{}, "sess", fallback).Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateEmpty, view.State)
}

func TestImageFallback(t *testing.T) {
	p, _ := loadedPresenter(t, sampleRecords())
	view, _ := p.Load(context.Background())

	assert.Equal(t, "https://img.example.com/brownies.jpg", view.Cards[0].Image)
	assert.Equal(t, fallback, view.Cards[1].Image)
	assert.Equal(t, fallback, view.Cards[2].Image)
}

func TestResolveImage(t *testing.T) {
	cases := []struct {
		images []string
		want   string
	}{
		{nil, fallback},
		{[]string{""}, fallback},
		{[]string{"   "}, fallback},
		{[]string{"ftp://example.com/a.jpg"}, fallback},
		{[]string{"https://"}, fallback},
		{[]string{"//cdn.example.com/a.jpg"}, fallback},
		{[]string{"c(\"https://a.com/x.jpg\")"}, fallback},
		{[]string{"", "http://a.com/x.jpg"}, "http://a.com/x.jpg"},
		{[]string{"/images/local.png"}, "/images/local.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveImage(tc.images, fallback), "%q", tc.images)
	}
}

func TestSelectAndClose(t *testing.T) {
	p, _ := loadedPresenter(t, sampleRecords())

	_, err := p.Select(11)
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, _ = p.Load(context.Background())
	detail, err := p.Select(11)
	require.NoError(t, err)
	assert.Equal(t, StateDetailOpen, p.State())
	assert.Equal(t, []types.IngredientLine{{Part: "Flour", Quantity: "1 cup"}, {Part: "Cocoa", Quantity: "1/2 cup"}}, detail.Ingredients)
	assert.Equal(t, []string{"Mix.", "Bake."}, detail.Instructions)
	assert.Equal(t, "91.34%", detail.SimilarityPercent)
	assert.Equal(t, detail, p.View().Detail)

	_, err = p.Select(404)
	assert.ErrorIs(t, err, ErrUnknownRecipe)

	p.Close()
	assert.Equal(t, StatePopulated, p.State())
	assert.Nil(t, p.View().Detail)
	assert.Len(t, p.View().Cards, 3)
}

func TestSelectOnEmpty(t *testing.T) {
	p := New(resultcache.NewMemoryStore(), "sess", "")
	_, _ = p.Load(context.Background())

	_, err := p.Select(1)
	assert.ErrorIs(t, err, ErrNotLoaded)
	p.Close()
	assert.Equal(t, StateEmpty, p.State())
}

func TestDetails(t *testing.T) {
	p, _ := loadedPresenter(t, sampleRecords())
	_, _ = p.Load(context.Background())

	details := p.Details()
	require.Len(t, details, 3)
	assert.Equal(t, fallback, details[1].Image)
	assert.Empty(t, details[1].Ingredients)
	assert.Equal(t, "0.00%", details[1].SimilarityPercent)
}
