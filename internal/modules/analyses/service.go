package analyses

import (
	"fmt"

	"github.com/aristath/mvt-analytics/internal/modules/projects"
	"github.com/rs/zerolog"
)

// ProjectSource looks up projects; Get returns projects.ErrNotFound for unknown ids.
type ProjectSource interface {
	Get(id string) (*projects.Project, error)
}

// Service runs analyses against stored projects.
type Service struct {
	repo     *Repository
	projects ProjectSource
	log      zerolog.Logger
}

// NewService creates an analysis service
func NewService(repo *Repository, projects ProjectSource, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		log:      log.With().Str("service", "analyses").Logger(),
	}
}

// Run computes and stores an analysis for the request's project.
func (s *Service) Run(req Request) (*Analysis, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}

	project, err := s.projects.Get(req.ProjectID)
	if err != nil {
		return nil, err
	}

	results, err := Generate(req.Type, project.IndustryType, project.RadiusKm)
	if err != nil {
		return nil, err
	}

	params := Parameters{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKm:  project.RadiusKm,
		Industry:  project.IndustryType,
	}
	if params.Latitude == nil {
		params.Latitude = project.Latitude
	}
	if params.Longitude == nil {
		params.Longitude = project.Longitude
	}

	a, err := s.repo.Create(project.ID, req.Type, params, results)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("analysis_id", a.ID).
		Str("project_id", project.ID).
		Str("type", string(req.Type)).
		Msg("Analysis completed")
	return a, nil
}

// Get returns a stored analysis.
func (s *Service) Get(id string) (*Analysis, error) {
	return s.repo.Get(id)
}

// ListByProject returns a project's analyses, optionally filtered by type.
func (s *Service) ListByProject(projectID string, t Type) ([]Analysis, error) {
	return s.repo.ListByProject(projectID, t)
}
