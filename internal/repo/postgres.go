package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
)

var (
	ErrJobNotFound    = errors.New("analysis job not found")
	ErrReportNotReady = errors.New("analysis report not ready")
)

// Job lifecycle states.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
	if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Job is one analysis run as stored in analysis_jobs. Params and the
// report stay opaque JSON here; the engine owns their shapes.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Params      json.RawMessage `json:"params"`
	Status      string          `json:"status"`
	TotalChunks int             `json:"totalChunks"`
	DoneChunks  int             `json:"doneChunks"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
	return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	if !ok && err == nil { return errors.New("advisory unlock returned false") }
	return err
}

func (r *Repository) CreateJob(ctx context.Context, params json.RawMessage) (uuid.UUID, error) {
	id := uuid.New()
	const q = `INSERT INTO analysis_jobs(id, params, status) VALUES($1, $2, $3)`
	if _, err := r.db.Pool.Exec(ctx, q, id, params, StatusQueued); err != nil { return uuid.Nil, err }
	return id, nil
}

func (r *Repository) MarkRunning(ctx context.Context, id uuid.UUID, totalChunks int) error {
	const q = `UPDATE analysis_jobs SET status=$2, total_chunks=$3, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, StatusRunning, totalChunks)
	if err != nil { return err }
	if tag.RowsAffected() == 0 { return ErrJobNotFound }
	return nil
}

// SaveChunk stores one chunk result and bumps the progress counter in a
// single batch so a status poll never sees the counter ahead of the data.
func (r *Repository) SaveChunk(ctx context.Context, id uuid.UUID, idx int, payload json.RawMessage) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO analysis_chunks(job_id, idx, payload) VALUES($1,$2,$3)
		ON CONFLICT (job_id, idx) DO UPDATE SET payload=EXCLUDED.payload`, id, idx, payload)
	batch.Queue(`UPDATE analysis_jobs SET done_chunks=done_chunks+1, updated_at=now() WHERE id=$1`, id)
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < 2; i++ { if _, err := br.Exec(); err != nil { return err } }
	return nil
}

func (r *Repository) ChunkPayloads(ctx context.Context, id uuid.UUID) ([]json.RawMessage, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT payload FROM analysis_chunks WHERE job_id=$1 ORDER BY idx`, id)
	if err != nil { return nil, err }
	defer rows.Close()
	var out []json.RawMessage
	for rows.Next() {
		var p json.RawMessage
		if err := rows.Scan(&p); err != nil { return nil, err }
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) SaveReport(ctx context.Context, id uuid.UUID, report json.RawMessage) error {
	const q = `UPDATE analysis_jobs SET status=$2, report=$3, error='', updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, StatusDone, report)
	if err != nil { return err }
	if tag.RowsAffected() == 0 { return ErrJobNotFound }
	return nil
}

func (r *Repository) FailJob(ctx context.Context, id uuid.UUID, errStr string) error {
	const q = `UPDATE analysis_jobs SET status=$2, error=$3, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, StatusFailed, errStr)
	if err != nil { return err }
	if tag.RowsAffected() == 0 { return ErrJobNotFound }
	return nil
}

func (r *Repository) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	const q = `SELECT id, params, status, total_chunks, done_chunks, COALESCE(error,''), created_at, updated_at
		FROM analysis_jobs WHERE id=$1`
	j := &Job{}
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&j.ID, &j.Params, &j.Status, &j.TotalChunks, &j.DoneChunks, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) { return nil, ErrJobNotFound }
	if err != nil { return nil, err }
	return j, nil
}

func (r *Repository) GetReport(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	const q = `SELECT status, report FROM analysis_jobs WHERE id=$1`
	var status string
	var report json.RawMessage
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&status, &report)
	if errors.Is(err, pgx.ErrNoRows) { return nil, ErrJobNotFound }
	if err != nil { return nil, err }
	if status != StatusDone || report == nil { return nil, ErrReportNotReady }
	return report, nil
}

// DeleteFinishedBefore drops done and failed jobs last touched before the
// cutoff. Chunk rows go with them via the FK cascade.
func (r *Repository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM analysis_jobs WHERE status IN ($1,$2) AND updated_at < $3`
	tag, err := r.db.Pool.Exec(ctx, q, StatusDone, StatusFailed, cutoff)
	if err != nil { return 0, err }
	return tag.RowsAffected(), nil
}
