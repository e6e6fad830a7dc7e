package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/query"
	"github.com/pageza/recipefinder/backend/internal/resultcache"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// SearchOutcome is what a submission reports back to the browser.
type SearchOutcome struct {
	TotalResults int    `json:"totalResults"`
	Warning      string `json:"warning,omitempty"`
}

// SearchService runs one recommendation round trip and hands the results to
// the result cache and the history recorder.
type SearchService struct {
	recommender Recommender
	cache       resultcache.Store
	recorder    HistoryRecorder
	logger      *zerolog.Logger
}

var _ ISearchService = (*SearchService)(nil)

// NewSearchService creates a new SearchService instance
func NewSearchService(recommender Recommender, cache resultcache.Store, recorder HistoryRecorder, logger *zerolog.Logger) *SearchService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SearchService{
		recommender: recommender,
		cache:       cache,
		recorder:    recorder,
		logger:      logger,
	}
}

// Submit sends req to the recommendation service. On success the records
// replace the session's cached result set and, for a known user, a history
// entry is recorded in the background. A transport failure writes nothing.
// A malformed response is reported as zero results with a warning.
func (s *SearchService) Submit(ctx context.Context, sessionID, userID string, req types.SearchRequest) (*SearchOutcome, error) {
	if sessionID == "" {
		return nil, apperr.Internal(resultcache.ErrNoSession).WithOp("search.Submit")
	}

	log := s.logger.With().
		Str("session", sessionID).
		Str("kind", string(req.Kind())).
		Str("query", query.Describe(req)).
		Logger()

	records, err := s.recommender.Recommend(ctx, req)
	if err != nil {
		if !apperr.Is(err, apperr.KindUnexpectedShape) {
			log.Error().Err(err).Msg("recommendation request failed")
			return nil, err
		}
		log.Warn().Err(err).Msg("recommendation response discarded")
		// Overwrite any unviewed earlier set so the results page shows nothing.
		if cerr := s.cache.Store(ctx, sessionID, []types.RecipeRecord{}); cerr != nil {
			log.Error().Err(cerr).Msg("failed to clear cached results")
		}
		return &SearchOutcome{Warning: apperr.MsgUnexpectedShape}, nil
	}

	if err := s.cache.Store(ctx, sessionID, records); err != nil {
		log.Error().Err(err).Msg("failed to cache results")
		return nil, apperr.Internal(err).WithOp("search.Submit")
	}

	if userID != "" && s.recorder != nil {
		s.recorder.Record(ctx, userID, req, records)
	}

	log.Info().Int("results", len(records)).Msg("search completed")
	return &SearchOutcome{TotalResults: len(records)}, nil
}
