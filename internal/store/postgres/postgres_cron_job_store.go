package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/pgk/parser"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
)

const cronJobColumns = `id, user_id, message, schedule, last_run, created_at`

type PostgresCronJobStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresCronJobStore(db *sql.DB, logger zerolog.Logger) *PostgresCronJobStore {
	return &PostgresCronJobStore{
		db:     db,
		logger: logger.With().Str("component", "cron_job_store").Logger(),
	}
}

func (r *PostgresCronJobStore) Create(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error) {
	schedule = strings.TrimSpace(schedule)
	if err := parser.Validate(schedule); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidSchedule, err)
	}

	query := `
		INSERT INTO cron_jobs (user_id, message, schedule)
		VALUES ($1, $2, $3)
		RETURNING ` + cronJobColumns

	job, err := scanCronJob(r.db.QueryRowContext(ctx, query, ownerID, message, schedule))
	if err != nil {
		if sqlState(err) == foreignKeyViolation {
			return nil, fmt.Errorf("%w: user %d", store.ErrOwnerNotFound, ownerID)
		}
		return nil, fmt.Errorf("%w: failed to insert cron job: %w", store.ErrStorage, err)
	}
	return job, nil
}

func (r *PostgresCronJobStore) ListByOwner(ctx context.Context, ownerID int64) ([]types.CronJob, error) {
	query := `
		SELECT ` + cronJobColumns + `
		FROM cron_jobs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	return r.queryJobs(ctx, query, ownerID)
}

func (r *PostgresCronJobStore) ListAll(ctx context.Context) ([]types.CronJob, error) {
	query := `SELECT ` + cronJobColumns + ` FROM cron_jobs ORDER BY id`
	return r.queryJobs(ctx, query)
}

func (r *PostgresCronJobStore) ListDue(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
	// SQL narrows the candidates; the schedule decides whether an occurrence
	// actually fell between the anchor and asOf.
	query := `
		SELECT ` + cronJobColumns + `
		FROM cron_jobs
		WHERE last_run IS NULL OR last_run < $1
		ORDER BY id`

	candidates, err := r.queryJobs(ctx, query, asOf)
	if err != nil {
		return nil, err
	}

	due := make([]types.CronJob, 0, len(candidates))
	for _, job := range candidates {
		ok, err := parser.IsDue(job.Schedule, job.Anchor(), asOf)
		if err != nil {
			r.logger.Warn().Err(err).Int64("job_id", job.ID).Msg("skipping job with unusable schedule")
			continue
		}
		if ok {
			due = append(due, job)
		}
	}
	return due, nil
}

func (r *PostgresCronJobStore) MarkRun(ctx context.Context, jobID int64, runAt time.Time) error {
	query := `
	UPDATE cron_jobs
	SET last_run = GREATEST(COALESCE(last_run, $1), $1)
	WHERE id = $2;
	`
	res, err := r.db.ExecContext(ctx, query, runAt, jobID)
	if err != nil {
		return fmt.Errorf("%w: failed to mark job %d as run: %w", store.ErrStorage, jobID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: cron job %d", store.ErrNotFound, jobID)
	}
	return nil
}

func (r *PostgresCronJobStore) Close() error {
	return r.db.Close()
}

func (r *PostgresCronJobStore) queryJobs(ctx context.Context, query string, args ...any) ([]types.CronJob, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch cron jobs: %w", store.ErrStorage, err)
	}
	defer rows.Close()

	jobs := make([]types.CronJob, 0)
	for rows.Next() {
		job, err := scanCronJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan cron job: %w", store.ErrStorage, err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	return jobs, nil
}

func scanCronJob(row rowScanner) (*types.CronJob, error) {
	var job types.CronJob
	var lastRun sql.NullTime
	if err := row.Scan(&job.ID, &job.UserID, &job.Message, &job.Schedule, &lastRun, &job.CreatedAt); err != nil {
		return nil, err
	}
	if lastRun.Valid {
		t := lastRun.Time
		job.LastRun = &t
	}
	return &job, nil
}
