package reports

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service generates, stores and exports reports.
type Service struct {
	sources Sources
	repo    *Repository
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a new report service
func NewService(sources Sources, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		sources: sources,
		repo:    repo,
		log:     log.With().Str("service", "reports").Logger(),
		now:     time.Now,
	}
}

// Generate builds a report for a project and stores it. An empty template
// means executive_summary; an empty title is derived from the project name.
func (s *Service) Generate(req GenerateRequest) (*Report, error) {
	if req.Template == "" {
		req.Template = TemplateExecutiveSummary
	}
	tmpl, ok := LookupTemplate(req.Template)
	if !ok {
		return nil, ErrUnknownTemplate
	}

	data, err := s.sources.load(req.ProjectID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	content, charts := build(data, tmpl, now)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle(data.project, tmpl)
	}

	rep := &Report{
		ProjectID:  req.ProjectID,
		Template:   tmpl.ID,
		Title:      title,
		Content:    content,
		ChartsData: charts,
		CreatedAt:  now,
	}
	if err := s.repo.Create(rep); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("report_id", rep.ID).
		Str("project_id", rep.ProjectID).
		Str("template", string(rep.Template)).
		Msg("Report generated")
	return rep, nil
}

// Get returns a stored report.
func (s *Service) Get(id string) (*Report, error) {
	return s.repo.Get(id)
}

// ListByProject returns a project's reports, newest first.
func (s *Service) ListByProject(projectID string, limit int) ([]Summary, error) {
	return s.repo.ListByProject(projectID, limit)
}

// Export renders a report and stores the result for later download.
func (s *Service) Export(id string, format Format) (*Export, error) {
	rep, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	export, err := Render(rep, format)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveExport(export, s.now().UTC()); err != nil {
		return nil, err
	}
	s.log.Info().Str("report_id", id).Str("format", string(format)).Int("bytes", len(export.Data)).Msg("Report exported")
	return export, nil
}

// Download returns the last stored export of a report.
func (s *Service) Download(id string) (*Export, error) {
	return s.repo.GetExport(id)
}
