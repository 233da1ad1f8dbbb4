package testing

import (
	"database/sql"
	"testing"
	"time"
)

// ProjectFixture is the minimal row needed by tables referencing projects.
type ProjectFixture struct {
	ID       string
	Name     string
	Industry string
	RadiusKm float64
}

// NewProjectFixtures returns a small set of projects across industries.
func NewProjectFixtures() []ProjectFixture {
	return []ProjectFixture{
		{ID: "11111111-1111-4111-8111-111111111111", Name: "Shibuya Salon", Industry: "beauty", RadiusKm: 1.0},
		{ID: "22222222-2222-4222-8222-222222222222", Name: "Ramen Corner", Industry: "restaurant", RadiusKm: 2.0},
		{ID: "33333333-3333-4333-8333-333333333333", Name: "Family Clinic", Industry: "healthcare", RadiusKm: 3.0},
	}
}

// InsertProject writes a project row directly, bypassing the projects module.
func InsertProject(t *testing.T, db *sql.DB, p ProjectFixture) {
	t.Helper()
	if p.RadiusKm == 0 {
		p.RadiusKm = 1.0
	}
	now := time.Now().Unix()
	_, err := db.Exec(`
		INSERT INTO projects (id, name, description, industry_type, target_area, radius_km, created_at, updated_at)
		VALUES (?, ?, '', ?, '', ?, ?, ?)
	`, p.ID, p.Name, p.Industry, p.RadiusKm, now, now)
	if err != nil {
		t.Fatalf("Failed to insert project fixture %s: %v", p.ID, err)
	}
}

// InsertProjects writes every fixture and returns them.
func InsertProjects(t *testing.T, db *sql.DB) []ProjectFixture {
	t.Helper()
	fixtures := NewProjectFixtures()
	for _, p := range fixtures {
		InsertProject(t, db, p)
	}
	return fixtures
}
