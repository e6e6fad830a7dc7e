package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/pageza/recipefinder/backend/internal/types"
)

const formDataKey = "form-data"

// FormDataSource fetches form metadata from its origin.
type FormDataSource interface {
	FormData(ctx context.Context) (*types.FormMetadata, error)
}

// FormDataService caches form metadata for a TTL. Concurrent misses share a
// single upstream call, and a stale copy is served when a refresh fails.
type FormDataService struct {
	source FormDataSource
	ttl    time.Duration
	logger *zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	cached    *types.FormMetadata
	fetchedAt time.Time

	group singleflight.Group
}

var _ IFormDataService = (*FormDataService)(nil)

// NewFormDataService creates a new FormDataService instance
func NewFormDataService(source FormDataSource, ttl time.Duration, logger *zerolog.Logger) *FormDataService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FormDataService{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the cached metadata, loading it when missing or expired.
func (s *FormDataService) Get(ctx context.Context) (*types.FormMetadata, error) {
	if meta, fresh := s.snapshot(); fresh {
		return meta, nil
	}

	v, err, _ := s.group.Do(formDataKey, func() (any, error) {
		if meta, fresh := s.snapshot(); fresh {
			return meta, nil
		}
		// Shared by every waiter, so one caller going away must not fail the rest.
		meta, err := s.source.FormData(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cached, s.fetchedAt = meta, s.now()
		s.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		if stale, _ := s.snapshot(); stale != nil {
			s.logger.Warn().Err(err).Msg("form data refresh failed, serving stale copy")
			return stale, nil
		}
		return nil, err
	}
	return v.(*types.FormMetadata), nil
}

func (s *FormDataService) snapshot() (*types.FormMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return nil, false
	}
	return s.cached, s.ttl <= 0 || s.now().Sub(s.fetchedAt) < s.ttl
}
