package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// MockRecommender is a mock implementation of service.Recommender
type MockRecommender struct {
	mock.Mock
}

func (m *MockRecommender) Recommend(ctx context.Context, req types.SearchRequest) ([]types.RecipeRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeRecord), args.Error(1)
}

func (m *MockRecommender) FormData(ctx context.Context) (*types.FormMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormMetadata), args.Error(1)
}

// MockHistoryRecorder is a mock implementation of service.HistoryRecorder
type MockHistoryRecorder struct {
	mock.Mock
}

func (m *MockHistoryRecorder) Record(ctx context.Context, userID string, req types.SearchRequest, results []types.RecipeRecord) {
	m.Called(ctx, userID, req, results)
}

// MockSearchService is a mock implementation of service.ISearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Submit(ctx context.Context, sessionID, userID string, req types.SearchRequest) (*service.SearchOutcome, error) {
	args := m.Called(ctx, sessionID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutcome), args.Error(1)
}

// MockFormDataService is a mock implementation of service.IFormDataService
type MockFormDataService struct {
	mock.Mock
}

func (m *MockFormDataService) Get(ctx context.Context) (*types.FormMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FormMetadata), args.Error(1)
}

// MockHistoryService is a mock implementation of service.IHistoryService
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, requesterID, userID, dateQuery string) ([]history.Entry, error) {
	args := m.Called(ctx, requesterID, userID, dateQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Entry), args.Error(1)
}

func (m *MockHistoryService) Export(ctx context.Context, requesterID, entryID string) ([]byte, string, error) {
	args := m.Called(ctx, requesterID, entryID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockHistoryService) Replay(ctx context.Context, requesterID, entryID, sessionID string) (int, error) {
	args := m.Called(ctx, requesterID, entryID, sessionID)
	return args.Int(0), args.Error(1)
}
