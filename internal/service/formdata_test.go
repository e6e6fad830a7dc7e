package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/mocks"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

func sampleMeta() *types.FormMetadata {
	return &types.FormMetadata{Categories: []string{"Dessert", "Breakfast"}}
}

func TestFormDataCachesWithinTTL(t *testing.T) {
	src := new(mocks.MockRecommender)
	src.On("FormData", mock.Anything).Return(sampleMeta(), nil).Once()

	svc := service.NewFormDataService(src, time.Hour, nil)
	for i := 0; i < 3; i++ {
		meta, err := svc.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Dessert", "Breakfast"}, meta.Categories)
	}
	src.AssertNumberOfCalls(t, "FormData", 1)
}

func TestFormDataConcurrentMissesShareOneCall(t *testing.T) {
	src := new(mocks.MockRecommender)
	release := make(chan time.Time)
	src.On("FormData", mock.Anything).WaitUntil(release).Return(sampleMeta(), nil)

	svc := service.NewFormDataService(src, time.Hour, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	src.AssertNumberOfCalls(t, "FormData", 1)
}

func TestFormDataExpiryAndStaleFallback(t *testing.T) {
	src := new(mocks.MockRecommender)
	src.On("FormData", mock.Anything).Return(sampleMeta(), nil).Once()
	src.On("FormData", mock.Anything).Return(nil, errors.New("service down")).Once()

	svc := service.NewFormDataService(src, time.Nanosecond, nil)
	_, err := svc.Get(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	meta, err := svc.Get(context.Background())
	require.NoError(t, err, "stale copy served")
	assert.Equal(t, sampleMeta(), meta)
	src.AssertNumberOfCalls(t, "FormData", 2)
}

func TestFormDataErrorWithoutCache(t *testing.T) {
	src := new(mocks.MockRecommender)
	src.On("FormData", mock.Anything).Return(nil, errors.New("service down"))

	svc := service.NewFormDataService(src, time.Hour, nil)
	_, err := svc.Get(context.Background())
	assert.Error(t, err)

	_, err = svc.Get(context.Background())
	assert.Error(t, err, "failures are not cached")
	src.AssertNumberOfCalls(t, "FormData", 2)
}
