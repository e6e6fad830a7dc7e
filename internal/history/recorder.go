package history

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Job is one search waiting to be recorded.
type Job struct {
	UserID  string
	Request types.SearchRequest
	Results []types.RecipeRecord
}

// ImageArchiver stores the original bytes of an image query and returns
// the object key that the history entry keeps instead.
type ImageArchiver interface {
	ArchiveQueryImage(ctx context.Context, userID string, img *types.ImageQuery) (string, error)
}

// ErrorSink receives failures from detached history work.
type ErrorSink func(job Job, err error)

// LogSink reports history failures to logger.
func LogSink(logger *zerolog.Logger) ErrorSink {
	return func(job Job, err error) {
		logger.Error().
			Err(err).
			Str("user_id", job.UserID).
			Int("results", len(job.Results)).
			Msg("failed to record search history")
	}
}

// Persister archives image queries and inserts the entry.
type Persister struct {
	repo    Repository
	archive ImageArchiver
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewPersister creates a Persister. archive may be nil, in which case image
// bytes are dropped and only the image metadata is recorded.
func NewPersister(repo Repository, archive ImageArchiver, logger *zerolog.Logger) *Persister {
	return &Persister{repo: repo, archive: archive, logger: logger, now: time.Now}
}

// Persist writes job as a new entry.
func (p *Persister) Persist(ctx context.Context, job Job) (*Entry, error) {
	req := job.Request
	if req.Image != nil {
		img := *req.Image
		if p.archive != nil && len(img.ImageBytes) > 0 && img.ArchiveKey == "" {
			key, err := p.archive.ArchiveQueryImage(ctx, job.UserID, &img)
			if err != nil {
				p.logger.Warn().Err(err).Str("user_id", job.UserID).Msg("failed to archive query image")
			} else {
				img.ArchiveKey = key
			}
		}
		img.ImageBytes = nil
		req.Image = &img
	}

	entry := NewEntry(job.UserID, req, job.Results, p.now())
	if err := p.repo.Insert(ctx, entry); err != nil {
		return nil, apperr.HistoryWrite(err).WithOp("history.Persist")
	}
	p.logger.Debug().Str("user_id", job.UserID).Str("entry_id", entry.ID.Hex()).Int("total_results", entry.TotalResults).Msg("search recorded")
	return entry, nil
}

// Dispatcher hands a job off for recording without waiting for it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}

// InlineDispatcher records jobs on detached goroutines in this process.
type InlineDispatcher struct {
	persister *Persister
	timeout   time.Duration
	sink      ErrorSink
	wg        sync.WaitGroup
}

var _ Dispatcher = (*InlineDispatcher)(nil)

func NewInlineDispatcher(p *Persister, timeout time.Duration, sink ErrorSink) *InlineDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &InlineDispatcher{persister: p, timeout: timeout, sink: sink}
}

// Dispatch starts the write and returns immediately. The write outlives
// cancellation of ctx but not the dispatcher's timeout.
func (d *InlineDispatcher) Dispatch(ctx context.Context, job Job) error {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		wctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if _, err := d.persister.Persist(wctx, job); err != nil && d.sink != nil {
			d.sink(job, err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched write has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// Recorder is the entry point used by the search flow.
type Recorder struct {
	dispatcher Dispatcher
	sink       ErrorSink
}

func NewRecorder(dispatcher Dispatcher, sink ErrorSink) *Recorder {
	return &Recorder{dispatcher: dispatcher, sink: sink}
}

// Record schedules the search for persistence. It never fails the caller:
// anonymous searches are skipped and dispatch errors go to the sink.
func (r *Recorder) Record(ctx context.Context, userID string, req types.SearchRequest, results []types.RecipeRecord) {
	if userID == "" {
		return
	}
	job := Job{UserID: userID, Request: req, Results: results}
	if err := r.dispatcher.Dispatch(ctx, job); err != nil && r.sink != nil {
		r.sink(job, apperr.HistoryWrite(err).WithOp("history.Record"))
	}
}
