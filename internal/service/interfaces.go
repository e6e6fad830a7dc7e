package service

import (
	"context"

	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/models"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Recommender is the part of the recommendation client the services depend on.
type Recommender interface {
	Recommend(ctx context.Context, req types.SearchRequest) ([]types.RecipeRecord, error)
	FormData(ctx context.Context) (*types.FormMetadata, error)
}

// HistoryRecorder persists completed searches without blocking the caller.
type HistoryRecorder interface {
	Record(ctx context.Context, userID string, req types.SearchRequest, results []types.RecipeRecord)
}

// ISearchService defines the interface for submitting searches
type ISearchService interface {
	Submit(ctx context.Context, sessionID, userID string, req types.SearchRequest) (*SearchOutcome, error)
}

// IFormDataService defines the interface for form metadata access
type IFormDataService interface {
	Get(ctx context.Context) (*types.FormMetadata, error)
}

// IHistoryService defines the interface for reading a user's search history
type IHistoryService interface {
	List(ctx context.Context, requesterID, userID, dateQuery string) ([]history.Entry, error)
	Export(ctx context.Context, requesterID, entryID string) ([]byte, string, error)
	Replay(ctx context.Context, requesterID, entryID, sessionID string) (int, error)
}

// IProfileService defines the interface for profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SyncFromToken(ctx context.Context, claims *types.TokenClaims) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req *types.UpdateProfileRequest) (*models.UserProfile, error)
}
