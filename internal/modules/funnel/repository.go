package funnel

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Listing limits for ListByProject
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// Repository stores simulation runs.
// Database: analytics.db (sales_simulations table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new simulation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "sales_simulations").Logger(),
		now: time.Now,
	}
}

// Save stores a simulation for a project.
func (r *Repository) Save(projectID, name string, in Input, out *Output) (*Simulation, error) {
	inJSON, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal simulation input: %w", err)
	}
	outJSON, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal simulation result: %w", err)
	}

	sim := &Simulation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Input:     in,
		Result:    *out,
		CreatedAt: r.now().UTC().Truncate(time.Second),
	}
	if sim.Name == "" {
		sim.Name = "Simulation " + sim.CreatedAt.Format("2006-01-02 15:04")
	}

	_, err = r.db.Exec(`
		INSERT INTO sales_simulations (id, project_id, name, input, result, required_budget, breakeven_month, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sim.ID, projectID, sim.Name, string(inJSON), string(outJSON),
		out.RequiredBudget, out.BreakevenMonth, sim.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert simulation: %w", err)
	}

	r.log.Debug().Str("simulation_id", sim.ID).Str("project_id", projectID).Msg("Simulation saved")
	return sim, nil
}

// Get returns a simulation by id, or ErrNotFound.
func (r *Repository) Get(id string) (*Simulation, error) {
	row := r.db.QueryRow(`
		SELECT id, project_id, name, input, result, created_at
		FROM sales_simulations WHERE id = ?
	`, id)
	sim, err := scanSimulation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation %s: %w", id, err)
	}
	return sim, nil
}

// ListByProject returns a project's simulations newest first. limit is
// clamped to [1, MaxListLimit], with DefaultListLimit for non-positive values.
func (r *Repository) ListByProject(projectID string, limit int) ([]Simulation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.Query(`
		SELECT id, project_id, name, input, result, created_at
		FROM sales_simulations
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	defer rows.Close()

	out := []Simulation{}
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		out = append(out, *sim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating simulations: %w", err)
	}
	return out, nil
}

// Latest returns the newest simulation of a project, or nil when there is none.
func (r *Repository) Latest(projectID string) (*Simulation, error) {
	list, err := r.ListByProject(projectID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSimulation(s scanner) (*Simulation, error) {
	var (
		sim       Simulation
		inJSON    string
		outJSON   string
		createdAt int64
	)
	if err := s.Scan(&sim.ID, &sim.ProjectID, &sim.Name, &inJSON, &outJSON, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inJSON), &sim.Input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation input: %w", err)
	}
	if err := json.Unmarshal([]byte(outJSON), &sim.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulation result: %w", err)
	}
	sim.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sim, nil
}
