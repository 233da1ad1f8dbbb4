package analyses

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles analysis database operations
// Database: analytics.db (analyses table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "analyses").Logger(),
		now: time.Now,
	}
}

// Create stores a completed analysis and returns it with its id.
func (r *Repository) Create(projectID string, t Type, params Parameters, results Results) (*Analysis, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis parameters: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis results: %w", err)
	}

	a := &Analysis{
		ID:         uuid.NewString(),
		ProjectID:  projectID,
		Type:       t,
		Status:     StatusCompleted,
		Parameters: params,
		Results:    results,
		CreatedAt:  r.now().UTC().Truncate(time.Second),
	}

	_, err = r.db.Exec(`
		INSERT INTO analyses (id, project_id, analysis_type, parameters, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProjectID, string(a.Type), string(paramsJSON), string(resultsJSON), a.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert analysis: %w", err)
	}

	r.log.Debug().Str("analysis_id", a.ID).Str("type", string(t)).Msg("Analysis stored")
	return a, nil
}

// Get returns an analysis by id, or ErrNotFound.
func (r *Repository) Get(id string) (*Analysis, error) {
	row := r.db.QueryRow(`
		SELECT id, project_id, analysis_type, parameters, results, created_at
		FROM analyses WHERE id = ?
	`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return a, nil
}

// ListByProject returns a project's analyses newest first, optionally
// filtered by type (empty means all).
func (r *Repository) ListByProject(projectID string, t Type) ([]Analysis, error) {
	query := `
		SELECT id, project_id, analysis_type, parameters, results, created_at
		FROM analyses WHERE project_id = ?`
	args := []interface{}{projectID}
	if t != "" {
		query += ` AND analysis_type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(s scanner) (*Analysis, error) {
	var (
		a           Analysis
		t           string
		paramsJSON  string
		resultsJSON string
		createdAt   int64
	)
	if err := s.Scan(&a.ID, &a.ProjectID, &t, &paramsJSON, &resultsJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paramsJSON), &a.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &a.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	a.Type = Type(t)
	a.Status = StatusCompleted
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &a, nil
}
