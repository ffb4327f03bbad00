package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slotwise/booking-api/util"
)

// CancellationMailJob is the job type enqueued when a booking is canceled.
const CancellationMailJob = "cancellation-mail"

const (
	jobsKey     = "queue:jobs"
	popTimeout  = time.Second
	localBuffer = 64
)

// ErrQueueFull is returned by Enqueue when the in-process fallback buffer
// has no room left.
var ErrQueueFull = errors.New("job queue is full")

// Job is a unit of deferred work. Payload is the job-type specific body.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewJob marshals the payload into a typed job.
func NewJob(jobType string, payload interface{}) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	return Job{Type: jobType, Payload: data}, nil
}

// Handler processes one job payload. A returned error is reported on the
// queue's error channel; there is no retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Queue is a deferred-job queue backed by a Redis list. Without a Redis
// client it degrades to an in-process channel, which keeps single-node
// deployments and tests working.
type Queue struct {
	rdb      *redis.Client
	local    chan Job
	handlers map[string]Handler
	errs     chan error
}

// New creates a queue. rdb may be nil.
func New(rdb *redis.Client) *Queue {
	return &Queue{
		rdb:      rdb,
		local:    make(chan Job, localBuffer),
		handlers: make(map[string]Handler),
		errs:     make(chan error, localBuffer),
	}
}

// Handle registers the handler for a job type. Register before Run.
func (q *Queue) Handle(jobType string, h Handler) {
	q.handlers[jobType] = h
}

// Errors exposes handler and transport failures for observation. The
// channel is buffered; unread errors beyond the buffer are dropped.
func (q *Queue) Errors() <-chan error {
	return q.errs
}

// Enqueue submits a job. The submission is synchronous; processing is not.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if q.rdb != nil {
		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		return q.rdb.LPush(ctx, jobsKey, data).Err()
	}

	select {
	case q.local <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run consumes jobs until the context is canceled. Meant to run on its own
// goroutine, decoupled from the request path.
func (q *Queue) Run(ctx context.Context) {
	log := util.Logger()
	log.WithField("redis", q.rdb != nil).Info("job queue worker started")

	for {
		if ctx.Err() != nil {
			log.Info("job queue worker stopped")
			return
		}
		if q.rdb != nil {
			q.popRedis(ctx)
			continue
		}
		select {
		case <-ctx.Done():
			log.Info("job queue worker stopped")
			return
		case job := <-q.local:
			q.dispatch(ctx, job)
		}
	}
}

func (q *Queue) popRedis(ctx context.Context) {
	res, err := q.rdb.BRPop(ctx, popTimeout, jobsKey).Result()
	if err == redis.Nil || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		q.report(fmt.Errorf("queue pop failed: %w", err))
		// Avoid a hot loop while Redis is down.
		time.Sleep(popTimeout)
		return
	}
	// BRPop returns [key, value].
	if len(res) != 2 {
		return
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		q.report(fmt.Errorf("malformed job discarded: %w", err))
		return
	}
	q.dispatch(ctx, job)
}

func (q *Queue) dispatch(ctx context.Context, job Job) {
	h, ok := q.handlers[job.Type]
	if !ok {
		q.report(fmt.Errorf("no handler for job type %q", job.Type))
		return
	}
	if err := h(ctx, job.Payload); err != nil {
		q.report(fmt.Errorf("%s job failed: %w", job.Type, err))
	}
}

func (q *Queue) report(err error) {
	util.Logger().Error(err)
	select {
	case q.errs <- err:
	default:
	}
}
