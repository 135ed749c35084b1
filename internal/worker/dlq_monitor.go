package worker

// dlq_monitor.go
// Background goroutine that reports the DLQ size and pushes retryable jobs
// back to their queue once the mail relay breaker is closed again.

import (
	"context"
	"encoding/json"
	"time"

	"frota/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	monitorTickInterval = 60 * time.Second
	requeueBatchSize    = 10
	maxRequeues         = 3
)

type DLQMonitorConfig struct {
	RDB      *redis.Client
	CB       *infra.CircuitBreaker
	Queue    string
	Interval time.Duration
}

// StartDLQMonitor ticks until ctx is cancelled.
func StartDLQMonitor(ctx context.Context, cfg DLQMonitorConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = monitorTickInterval
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		log.Info().Str("queue", cfg.Queue).Msg("dlq_monitor: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_monitor: shutting down")
				return
			case <-ticker.C:
				requeued, err := requeueDLQ(ctx, cfg)
				if err != nil {
					log.Error().Err(err).Msg("dlq_monitor: requeue failed")
				}
				if requeued > 0 {
					log.Info().Int("requeued", requeued).Str("queue", cfg.Queue).Msg("dlq_monitor: jobs requeued")
				}
			}
		}
	}()
}

// requeueDLQ looks at up to requeueBatchSize parked jobs. Retryable ones that
// have not been requeued too often go back to their queue; the rest are put
// back in the DLQ. Nothing happens while the breaker is not closed.
func requeueDLQ(ctx context.Context, cfg DLQMonitorConfig) (int, error) {
	n, err := DLQLength(ctx, cfg.RDB, cfg.Queue)
	if err != nil || n == 0 {
		return 0, err
	}
	state := cfg.CB.State()
	log.Info().Int64("parked", n).Str("breaker", state.String()).Msg("dlq_monitor: dead letter queue not empty")
	if state != infra.CBClosed {
		return 0, nil
	}

	key := DLQPrefix + cfg.Queue
	requeued := 0
	for i := int64(0); i < n && i < requeueBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, key).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return requeued, err
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || !entry.Retryable || entry.Requeued >= maxRequeues {
			if err := cfg.RDB.LPush(ctx, key, raw).Err(); err != nil {
				return requeued, err
			}
			continue
		}

		job := entry.Job()
		job.Requeued++
		encoded, err := json.Marshal(job)
		if err != nil {
			return requeued, err
		}
		if err := cfg.RDB.LPush(ctx, entry.OriginalQueue, encoded).Err(); err != nil {
			// put it back so it is not lost
			_ = cfg.RDB.RPush(ctx, key, raw).Err()
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}
