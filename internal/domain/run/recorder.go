// Package run records one row per agent invocation so operators can audit
// what the agent was asked and what it answered.
package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/peterholko-pingidentity/action-agent/pkg/uuid"
)

// ErrRunNotFound is returned by Get when no run exists under the given id.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Request sources.
const (
	SourceHTTP     = "http"
	SourceEnvelope = "envelope"
	SourceA2A      = "a2a"
)

// Run is one recorded agent invocation.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Requester   string     `json:"requester,omitempty"`
	RequestID   string     `json:"request_id,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	Input       string     `json:"input"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
	Status      string     `json:"status"`
	LatencyMS   int64      `json:"latency_ms,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StartInput captures what is known when an invocation begins.
type StartInput struct {
	Source    string
	Requester string
	RequestID string
	SessionID string
	Input     string
}

// Recorder persists runs to SQLite.
type Recorder struct {
	db *sql.DB
}

// NewRecorder wraps an open database handle. Migrations must already be
// applied.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Start inserts a new run in 'running' state and returns it.
func (r *Recorder) Start(ctx context.Context, in StartInput) (*Run, error) {
	id := uuid.NewV7().String()
	now := time.Now().UTC()
	run := &Run{
		ID:        id,
		Source:    in.Source,
		Requester: in.Requester,
		RequestID: in.RequestID,
		SessionID: in.SessionID,
		Input:     in.Input,
		Status:    StatusRunning,
		StartedAt: now,
		CreatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run (id, source, requester, request_id, session_id, input, status, started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, nullable(run.Requester), nullable(run.RequestID),
		nullable(run.SessionID), run.Input, run.Status, run.StartedAt, run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("run: insert: %w", err)
	}
	return run, nil
}

// Finish finalizes a run: success when execErr is nil, failed otherwise.
func (r *Recorder) Finish(ctx context.Context, id, output string, execErr error, latency time.Duration) error {
	status := StatusSuccess
	errText := sql.NullString{}
	if execErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: execErr.Error(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE run SET output = ?, error = ?, status = ?, latency_ms = ?, completed_at = ?
		WHERE id = ?`,
		nullable(output), errText, status, latency.Milliseconds(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("run: finish %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("run: finish %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Get returns one run by id.
func (r *Recorder) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("run: get %s: %w", id, err)
	}
	return run, nil
}

// List returns runs newest-first plus the total count. limit defaults to 20
// and is capped at 100.
func (r *Recorder) List(ctx context.Context, limit, offset int) ([]*Run, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("run: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("run: list: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("run: list scan: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("run: list rows: %w", err)
	}
	return runs, total, nil
}

const selectColumns = `
	SELECT id, source, requester, request_id, session_id, input, output, error,
	       status, latency_ms, started_at, completed_at, created_at
	FROM run`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run         Run
		requester   sql.NullString
		requestID   sql.NullString
		sessionID   sql.NullString
		output      sql.NullString
		errText     sql.NullString
		latency     sql.NullInt64
		completedAt sql.NullTime
	)
	err := s.Scan(&run.ID, &run.Source, &requester, &requestID, &sessionID,
		&run.Input, &output, &errText, &run.Status, &latency, &run.StartedAt,
		&completedAt, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Requester = requester.String
	run.RequestID = requestID.String
	run.SessionID = sessionID.String
	run.Output = output.String
	run.Error = errText.String
	run.LatencyMS = latency.Int64
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
