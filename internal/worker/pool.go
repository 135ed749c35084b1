package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frota/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportEmail = "jobs:report_email"

	JobHoursEmail = "hours_email"

	maxAttempts = 3
)

// retryBaseDelay is the wait before the second attempt; it doubles after that.
var retryBaseDelay = time.Second

// Job is the envelope of every queued task.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	// Requeued counts how many times the job came back from the DLQ.
	Requeued int `json:"requeued,omitempty"`
}

// Processor handles the payload of one job type. Returning a permanent error
// sends the job straight to the DLQ without further attempts.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Dispatcher enqueues jobs into Redis lists; the pool pops them with BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueHoursEmail queues a worked-hours PDF for e-mail delivery.
func (d *Dispatcher) EnqueueHoursEmail(ctx context.Context, job dto.HoursEmailJob) error {
	return d.enqueue(ctx, QueueReportEmail, JobHoursEmail, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	log.Debug().Str("queue", queue).Str("type", jobType).Msg("job enqueued")
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming the report queue.
// processors maps a Job.Type to its handler.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, processors map[string]Processor) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, processors)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, processors map[string]Processor) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// waits up to 5s, then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueReportEmail).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, processors, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, processors map[string]Processor, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	attempts, err := runJob(ctx, processors, job)
	if err == nil {
		log.Info().Str("type", job.Type).Int("attempts", attempts).Msg("job done")
		return
	}
	log.Error().Err(err).Str("type", job.Type).Int("attempts", attempts).Msg("job failed")
	SendToDLQ(ctx, rdb, queue, job, err.Error(), attempts, !isPermanent(err))
}

// runJob runs the job's processor with retries and returns how many attempts
// were made.
func runJob(ctx context.Context, processors map[string]Processor, job Job) (int, error) {
	proc, ok := processors[job.Type]
	if !ok {
		return 0, Permanent(fmt.Errorf("no processor for job type %q", job.Type))
	}
	attempts := 0
	err := withRetry(ctx, maxAttempts, func(int) error {
		attempts++
		return proc.Process(ctx, job.Payload)
	})
	return attempts, err
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediately, then retryBaseDelay, 2×retryBaseDelay, ...). A permanent
// error stops it early.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if isPermanent(err) {
			return err
		}
	}
	return lastErr
}
