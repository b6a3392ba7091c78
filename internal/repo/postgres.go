/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package repo

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

// ErrNoRuns is returned by GetLastRun when nothing was recorded yet.
var ErrNoRuns = errors.New("repo: no report runs")

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
    id              BIGSERIAL PRIMARY KEY,
    run_id          TEXT NOT NULL,
    trigger         TEXT NOT NULL,
    period_days     INT NOT NULL,
    started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at     TIMESTAMPTZ,
    tickets_fetched INT NOT NULL DEFAULT 0,
    success         BOOLEAN NOT NULL DEFAULT false,
    error           TEXT NOT NULL DEFAULT '',
    summary         JSONB
);
CREATE INDEX IF NOT EXISTS report_runs_started_idx ON report_runs(started_at DESC);`

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func Open(ctx context.Context, dsn string, log zerolog.Logger) (*DB, error) {
    pool, err := pgxpool.New(ctx, dsn)
    if err != nil { return nil, err }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil {
        pool.Close()
        return nil, err
    }
    return &DB{Pool: pool, log: log}, nil
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) EnsureSchema(ctx context.Context) error {
    _, err := r.db.Pool.Exec(ctx, schema)
    return err
}

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

// Report runs
func (r *Repository) StartReportRun(ctx context.Context, runID, trigger string, periodDays int) (int64, error) {
    const q = `INSERT INTO report_runs(run_id, trigger, period_days) VALUES($1, $2, $3) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, runID, trigger, periodDays).Scan(&id); err != nil { return 0, err }
    return id, nil
}

// FinishReportRun closes a run; summary is stored as JSONB and may be nil.
func (r *Repository) FinishReportRun(ctx context.Context, id int64, ticketsFetched int, success bool, errStr string, summary any) error {
    var raw []byte
    if summary != nil {
        b, err := json.Marshal(summary)
        if err != nil { return err }
        raw = b
    }
    const q = `UPDATE report_runs SET finished_at=now(), tickets_fetched=$2, success=$3, error=$4, summary=$5 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, ticketsFetched, success, errStr, raw)
    return err
}

type LastRun struct {
    RunID          string          `json:"run_id"`
    Trigger        string          `json:"trigger"`
    PeriodDays     int             `json:"period_days"`
    StartedAt      time.Time       `json:"started_at"`
    FinishedAt     *time.Time      `json:"finished_at"`
    TicketsFetched int             `json:"tickets_fetched"`
    Success        bool            `json:"success"`
    Error          string          `json:"error"`
    Summary        json.RawMessage `json:"summary,omitempty"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT run_id, trigger, period_days, started_at, finished_at,
        tickets_fetched, success, error, summary
        FROM report_runs ORDER BY id DESC LIMIT 1`
    lr := &LastRun{}
    var summary []byte
    err := r.db.Pool.QueryRow(ctx, q).Scan(&lr.RunID, &lr.Trigger, &lr.PeriodDays, &lr.StartedAt, &lr.FinishedAt,
        &lr.TicketsFetched, &lr.Success, &lr.Error, &summary)
    if errors.Is(err, pgx.ErrNoRows) { return nil, ErrNoRuns }
    if err != nil { return nil, err }
    if len(summary) > 0 { lr.Summary = json.RawMessage(summary) }
    return lr, nil
}
