// Package history records completed searches against a user and serves them
// back for the dashboard. Recording is best-effort and never blocks a search.
package history

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// CollectionName is the MongoDB collection holding history entries.
const CollectionName = "SearchHistory"

// SearchData is stored opaquely: the request as submitted and the records it produced.
type SearchData struct {
	Request types.SearchRequest  `bson:"request" json:"request"`
	Results []types.RecipeRecord `bson:"results" json:"results"`
}

// Entry is one completed search. Entries are written once and never updated.
type Entry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       string             `bson:"userId" json:"userId"`
	SearchData   SearchData         `bson:"searchData" json:"searchData"`
	SearchDate   time.Time          `bson:"searchDate" json:"searchDate"`
	TotalResults int                `bson:"totalResults" json:"totalResults"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewEntry builds an entry whose TotalResults matches the embedded results.
func NewEntry(userID string, req types.SearchRequest, results []types.RecipeRecord, now time.Time) *Entry {
	if results == nil {
		results = []types.RecipeRecord{}
	}
	now = now.UTC().Truncate(time.Millisecond)
	return &Entry{
		UserID: userID,
		SearchData: SearchData{
			Request: req,
			Results: results,
		},
		SearchDate:   now,
		TotalResults: len(results),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
