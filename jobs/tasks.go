// Package jobs hosts the background worker and its task definitions.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionPurge removes expired session audit rows from postgres.
	// Redis entries expire on their own TTL; the postgres mirror does not.
	TaskSessionPurge = "sessions:purge"
)

// NewSessionPurgeTask constructs an Asynq task.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// NewSessionPurgeHandler builds the handler deleting expired session rows.
func NewSessionPurgeHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now().UTC())
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("purged expired sessions", slog.Int64("rows", tag.RowsAffected()))
		}
		return nil
	}
}
