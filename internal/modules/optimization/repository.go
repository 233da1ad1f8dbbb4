package optimization

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request is the persisted input of an optimization run.
type Request struct {
	Constraints      BusinessConstraints `json:"constraints"`
	Industry         string              `json:"industry"`
	SelectedChannels []string            `json:"selected_channels"`
}

// Record is a stored optimization run.
type Record struct {
	ID        string              `json:"id"`
	ProjectID string              `json:"project_id"`
	Industry  string              `json:"industry"`
	Request   Request             `json:"request"`
	Result    *OptimizationResult `json:"result"`
	CreatedAt time.Time           `json:"created_at"`
}

// Repository stores optimization runs.
// Database: analytics.db (optimizations table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new optimization repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "optimization").Logger(),
	}
}

// Save stores a run for a project and returns the record.
func (r *Repository) Save(projectID string, req Request, result *OptimizationResult) (*Record, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal optimization request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal optimization result: %w", err)
	}

	rec := &Record{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Industry:  req.Industry,
		Request:   req,
		Result:    result,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err = r.db.Exec(`
		INSERT INTO optimizations (id, project_id, industry, request, result, expected_roi, risk_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, projectID, req.Industry, string(reqJSON), string(resultJSON),
		result.ExpectedROI, result.RiskScore, rec.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert optimization: %w", err)
	}

	r.log.Debug().Str("id", rec.ID).Str("project_id", projectID).Msg("Optimization saved")
	return rec, nil
}

// ListByProject returns the most recent runs of a project, newest first.
func (r *Repository) ListByProject(projectID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`
		SELECT id, project_id, industry, request, result, created_at
		FROM optimizations
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimizations: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating optimizations: %w", err)
	}
	return records, nil
}

// Latest returns the newest run of a project, or nil when there is none.
func (r *Repository) Latest(projectID string) (*Record, error) {
	records, err := r.ListByProject(projectID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var reqJSON, resultJSON string
	var createdAt int64
	if err := s.Scan(&rec.ID, &rec.ProjectID, &rec.Industry, &reqJSON, &resultJSON, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan optimization: %w", err)
	}
	if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization request: %w", err)
	}
	rec.Result = &OptimizationResult{}
	if err := json.Unmarshal([]byte(resultJSON), rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization result: %w", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rec, nil
}
