package worker

// dlq.go: jobs that fail every attempt are parked in dlq:{queue} for
// inspection. Retryable entries can be pushed back by the DLQ monitor.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      string          `json:"failed_at"` // RFC 3339, UTC
	Attempts      int             `json:"attempts"`
	Requeued      int             `json:"requeued"`
	// Retryable is false for jobs that can never succeed (bad payload,
	// dataset deleted, hours unavailable).
	Retryable bool `json:"retryable"`
}

// Job rebuilds the queue envelope of a parked job.
func (e DLQEntry) Job() Job {
	return Job{Type: e.JobType, Payload: e.Payload, Requeued: e.Requeued}
}

// SendToDLQ parks a failed job. Errors are logged, never returned: the job
// has already failed and there is nowhere else to put it.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string, attempts int, retryable bool) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       job.Type,
		Payload:       job.Payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC().Format(time.RFC3339),
		Attempts:      attempts,
		Requeued:      job.Requeued,
		Retryable:     retryable,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", attempts).
		Bool("retryable", retryable).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of parked jobs of a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
