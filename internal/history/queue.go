package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// TaskRecordSearch is the asynq task type for queued history writes.
const TaskRecordSearch = "history.record"

// RecordSearchPayload is the queued form of a Job. Image bytes travel
// separately because they are not part of the request's JSON form.
type RecordSearchPayload struct {
	UserID    string               `json:"userId"`
	Request   types.SearchRequest  `json:"request"`
	Results   []types.RecipeRecord `json:"results"`
	ImageData []byte               `json:"imageData,omitempty"`
}

func NewRecordSearchTask(job Job) (*asynq.Task, error) {
	payload := RecordSearchPayload{
		UserID:  job.UserID,
		Request: job.Request,
		Results: job.Results,
	}
	if job.Request.Image != nil {
		payload.ImageData = job.Request.Image.ImageBytes
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecordSearch, data, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}

func ParseRecordSearchPayload(task *asynq.Task) (Job, error) {
	var payload RecordSearchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return Job{}, err
	}
	job := Job{UserID: payload.UserID, Request: payload.Request, Results: payload.Results}
	if job.Request.Image != nil {
		img := *job.Request.Image
		img.ImageBytes = payload.ImageData
		job.Request.Image = &img
	}
	return job, nil
}

// RedisClientOpt builds asynq connection options from a redis URL.
func RedisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return asynq.RedisClientOpt{
		Network:   opt.Network,
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands jobs to the history worker through asynq. The
// enqueue runs on a detached goroutine so a slow or unreachable Redis never
// holds up the search that produced the job.
type QueueDispatcher struct {
	client  Enqueuer
	queue   string
	timeout time.Duration
	sink    ErrorSink
	wg      sync.WaitGroup
}

var _ Dispatcher = (*QueueDispatcher)(nil)

func NewQueueDispatcher(client Enqueuer, queue string, timeout time.Duration, sink ErrorSink) *QueueDispatcher {
	if queue == "" {
		queue = "default"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &QueueDispatcher{client: client, queue: queue, timeout: timeout, sink: sink}
}

// Dispatch builds the task and returns; only an unencodable job is reported
// to the caller. Enqueue failures go to the sink.
func (d *QueueDispatcher) Dispatch(ctx context.Context, job Job) error {
	task, err := NewRecordSearchTask(job)
	if err != nil {
		return fmt.Errorf("failed to build history task: %w", err)
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ectx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if _, err := d.client.EnqueueContext(ectx, task, asynq.Queue(d.queue)); err != nil && d.sink != nil {
			d.sink(job, apperr.HistoryWrite(fmt.Errorf("failed to enqueue history task: %w", err)).WithOp("history.Enqueue"))
		}
	}()
	return nil
}

// Wait blocks until every pending enqueue has finished.
func (d *QueueDispatcher) Wait() {
	d.wg.Wait()
}

// TaskHandler processes queued history writes with p. Failures are
// reported to sink and returned so asynq can retry.
func TaskHandler(p *Persister, sink ErrorSink) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		job, err := ParseRecordSearchPayload(task)
		if err != nil {
			return fmt.Errorf("bad history payload: %v: %w", err, asynq.SkipRetry)
		}
		if _, err := p.Persist(ctx, job); err != nil {
			if sink != nil {
				sink(job, err)
			}
			return err
		}
		return nil
	}
}

// AsynqLogger routes asynq's internal logging through zerolog.
type AsynqLogger struct {
	log *zerolog.Logger
}

var _ asynq.Logger = (*AsynqLogger)(nil)

func NewAsynqLogger(log *zerolog.Logger) *AsynqLogger {
	return &AsynqLogger{log: log}
}

func (l *AsynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *AsynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
