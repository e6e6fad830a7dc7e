package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/resultcache"
)

// ArchiveLinker issues temporary download links for archived query images.
type ArchiveLinker interface {
	ArchiveURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// HistoryService serves the dashboard's view of past searches.
type HistoryService struct {
	repo     history.Repository
	cache    resultcache.Store
	location *time.Location
	links    ArchiveLinker
	linkTTL  time.Duration
	logger   *zerolog.Logger
}

var _ IHistoryService = (*HistoryService)(nil)

// NewHistoryService creates a new HistoryService instance. Dates are
// formatted for filtering in loc, UTC when nil.
func NewHistoryService(repo history.Repository, cache resultcache.Store, loc *time.Location, logger *zerolog.Logger) *HistoryService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &HistoryService{repo: repo, cache: cache, location: loc, logger: logger}
}

// WithArchiveLinks makes List attach a download link, valid for ttl, to every
// image query that was archived.
func (s *HistoryService) WithArchiveLinks(links ArchiveLinker, ttl time.Duration) *HistoryService {
	s.links = links
	s.linkTTL = ttl
	return s
}

// List returns userID's entries, newest first, keeping only those whose
// formatted search date contains dateQuery. A user may only list their own.
func (s *HistoryService) List(ctx context.Context, requesterID, userID, dateQuery string) ([]history.Entry, error) {
	if userID == "" {
		userID = requesterID
	}
	if userID != requesterID {
		return nil, apperr.Forbidden("cannot read another user's search history")
	}

	entries, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err).WithOp("history.List")
	}
	entries = history.FilterByDate(entries, dateQuery, s.location)
	s.attachArchiveLinks(ctx, entries)
	return entries, nil
}

func (s *HistoryService) attachArchiveLinks(ctx context.Context, entries []history.Entry) {
	if s.links == nil {
		return
	}
	for i := range entries {
		img := entries[i].SearchData.Request.Image
		if img == nil || img.ArchiveKey == "" {
			continue
		}
		url, err := s.links.ArchiveURL(ctx, img.ArchiveKey, s.linkTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", img.ArchiveKey).Msg("failed to link archived query image")
			continue
		}
		linked := *img
		linked.ArchiveURL = url
		entries[i].SearchData.Request.Image = &linked
	}
}

// Export returns the pretty-printed search data of one entry and its download name.
func (s *HistoryService) Export(ctx context.Context, requesterID, entryID string) ([]byte, string, error) {
	entry, err := s.owned(ctx, requesterID, entryID)
	if err != nil {
		return nil, "", err
	}
	data, filename, err := history.Export(entry)
	if err != nil {
		return nil, "", apperr.Internal(err).WithOp("history.Export")
	}
	return data, filename, nil
}

// Replay puts an entry's stored results back into the session's result
// cache so the results page shows them again.
func (s *HistoryService) Replay(ctx context.Context, requesterID, entryID, sessionID string) (int, error) {
	entry, err := s.owned(ctx, requesterID, entryID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Store(ctx, sessionID, entry.SearchData.Results); err != nil {
		return 0, apperr.Internal(err).WithOp("history.Replay")
	}
	s.logger.Debug().Str("entry", entryID).Int("results", len(entry.SearchData.Results)).Msg("history entry replayed")
	return len(entry.SearchData.Results), nil
}

func (s *HistoryService) owned(ctx context.Context, requesterID, entryID string) (*history.Entry, error) {
	entry, err := s.repo.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, apperr.NotFound("search history entry not found")
		}
		return nil, apperr.Internal(err).WithOp("history.Get")
	}
	// Someone else's entry is reported as missing.
	if entry.UserID != requesterID {
		return nil, apperr.NotFound("search history entry not found")
	}
	return entry, nil
}
