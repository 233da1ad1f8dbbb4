package reports

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository stores reports and their latest export.
// Database: analytics.db (reports table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new report repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "reports").Logger(),
	}
}

// Create stores a new report and assigns its id.
func (r *Repository) Create(rep *Report) error {
	contentJSON, err := json.Marshal(rep.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal report content: %w", err)
	}
	chartsJSON, err := json.Marshal(rep.ChartsData)
	if err != nil {
		return fmt.Errorf("failed to marshal charts data: %w", err)
	}

	rep.ID = uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO reports (id, project_id, template, title, content, charts_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rep.ID, rep.ProjectID, string(rep.Template), rep.Title,
		string(contentJSON), string(chartsJSON), rep.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	r.log.Debug().Str("report_id", rep.ID).Str("project_id", rep.ProjectID).Msg("Report stored")
	return nil
}

// Get returns a report by id, or ErrNotFound.
func (r *Repository) Get(id string) (*Report, error) {
	var (
		rep         Report
		tmpl        string
		contentJSON string
		chartsJSON  string
		format      sql.NullString
		exportedAt  sql.NullInt64
		createdAt   int64
	)
	err := r.db.QueryRow(`
		SELECT id, project_id, template, title, content, charts_data, export_format, exported_at, created_at
		FROM reports WHERE id = ?
	`, id).Scan(&rep.ID, &rep.ProjectID, &tmpl, &rep.Title, &contentJSON, &chartsJSON,
		&format, &exportedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(contentJSON), &rep.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report content: %w", err)
	}
	if err := json.Unmarshal([]byte(chartsJSON), &rep.ChartsData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal charts data: %w", err)
	}
	rep.Template = Template(tmpl)
	rep.ExportFormat = Format(format.String)
	rep.ExportedAt = unixPtr(exportedAt)
	rep.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &rep, nil
}

// ListByProject returns report summaries of a project, newest first.
func (r *Repository) ListByProject(projectID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT id, template, title, export_format, exported_at, created_at
		FROM reports
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			s          Summary
			tmpl       string
			format     sql.NullString
			exportedAt sql.NullInt64
			createdAt  int64
		)
		if err := rows.Scan(&s.ID, &tmpl, &s.Title, &format, &exportedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		s.Template = Template(tmpl)
		s.ExportFormat = Format(format.String)
		s.ExportedAt = unixPtr(exportedAt)
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return out, nil
}

// SaveExport replaces the stored export of a report.
func (r *Repository) SaveExport(e *Export, at time.Time) error {
	res, err := r.db.Exec(`
		UPDATE reports SET export_format = ?, export_data = ?, exported_at = ?
		WHERE id = ?
	`, string(e.Format), e.Data, at.Unix(), e.ReportID)
	if err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check export update: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetExport returns the stored export of a report. ErrNotExported when the
// report exists but was never exported.
func (r *Repository) GetExport(id string) (*Export, error) {
	var (
		projectID string
		format    sql.NullString
		data      []byte
	)
	err := r.db.QueryRow(`
		SELECT project_id, export_format, export_data FROM reports WHERE id = ?
	`, id).Scan(&projectID, &format, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export %s: %w", id, err)
	}
	if !format.Valid || format.String == "" {
		return nil, ErrNotExported
	}
	return &Export{ReportID: id, ProjectID: projectID, Format: Format(format.String), Data: data}, nil
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
