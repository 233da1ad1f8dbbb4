package projects

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles project database operations
// Database: analytics.db (projects table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewRepository creates a new project repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "projects").Logger(),
		now: time.Now,
	}
}

const projectColumns = `id, name, description, industry_type, target_area, latitude, longitude, radius_km, created_at, updated_at`

// Create inserts a new project with a random id.
func (r *Repository) Create(req CreateRequest) (*Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.now().UTC().Truncate(time.Second)
	p := &Project{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		IndustryType: strings.ToLower(strings.TrimSpace(req.IndustryType)),
		TargetArea:   req.TargetArea,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusKm:     DefaultRadiusKm,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.RadiusKm != nil {
		p.RadiusKm = *req.RadiusKm
	}

	_, err := r.db.Exec(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.IndustryType, p.TargetArea,
		nullFloat(p.Latitude), nullFloat(p.Longitude), p.RadiusKm,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}

	r.log.Info().Str("project_id", p.ID).Str("industry", p.IndustryType).Msg("Project created")
	return p, nil
}

// Get returns a project by id, or ErrNotFound.
func (r *Repository) Get(id string) (*Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return p, nil
}

// Exists reports whether a project id exists.
func (r *Repository) Exists(id string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check project %s: %w", id, err)
	}
	return true, nil
}

// List returns projects newest first.
func (r *Repository) List(limit, offset int) ([]Project, error) {
	limit = ClampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(`
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// Count returns the number of projects.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// Update applies a partial update and returns the new state.
func (r *Repository) Update(id string, req UpdateRequest) (*Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.IndustryType != nil {
		p.IndustryType = strings.ToLower(strings.TrimSpace(*req.IndustryType))
	}
	if req.TargetArea != nil {
		p.TargetArea = *req.TargetArea
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.RadiusKm != nil {
		p.RadiusKm = *req.RadiusKm
	}
	p.UpdatedAt = r.now().UTC().Truncate(time.Second)

	_, err = r.db.Exec(`
		UPDATE projects
		SET name = ?, description = ?, industry_type = ?, target_area = ?,
		    latitude = ?, longitude = ?, radius_km = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, p.IndustryType, p.TargetArea,
		nullFloat(p.Latitude), nullFloat(p.Longitude), p.RadiusKm, p.UpdatedAt.Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", id, err)
	}
	return p, nil
}

// Delete removes a project and, through the foreign keys, everything attached to it.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	r.log.Info().Str("project_id", id).Msg("Project deleted")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var lat, lng sql.NullFloat64
	var createdAt, updatedAt int64
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.IndustryType, &p.TargetArea,
		&lat, &lng, &p.RadiusKm, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lng.Valid {
		p.Longitude = &lng.Float64
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
