// Package projects manages the businesses that analyses, simulations,
// optimizations and reports are attached to.
package projects

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a project id does not exist.
var ErrNotFound = errors.New("project not found")

// DefaultRadiusKm is the catchment radius used when none is given.
const DefaultRadiusKm = 1.0

// List paging bounds
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Project is a business location under analysis.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IndustryType string    `json:"industry_type"`
	TargetArea   string    `json:"target_area"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	RadiusKm     float64   `json:"radius_km"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the input of Create.
type CreateRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	IndustryType string   `json:"industry_type"`
	TargetArea   string   `json:"target_area"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusKm     *float64 `json:"radius_km"`
}

// UpdateRequest holds the fields to change; nil fields are left untouched.
type UpdateRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	IndustryType *string  `json:"industry_type"`
	TargetArea   *string  `json:"target_area"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusKm     *float64 `json:"radius_km"`
}

// ValidationError describes an invalid create or update request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks a create request.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(r.IndustryType) == "" {
		return &ValidationError{Field: "industry_type", Message: "is required"}
	}
	return validateLocation(r.Latitude, r.Longitude, r.RadiusKm)
}

// Validate checks an update request.
func (r UpdateRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if r.IndustryType != nil && strings.TrimSpace(*r.IndustryType) == "" {
		return &ValidationError{Field: "industry_type", Message: "cannot be empty"}
	}
	return validateLocation(r.Latitude, r.Longitude, r.RadiusKm)
}

func validateLocation(lat, lng, radius *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return &ValidationError{Field: "latitude", Message: "must be within [-90, 90]"}
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		return &ValidationError{Field: "longitude", Message: "must be within [-180, 180]"}
	}
	if radius != nil && *radius <= 0 {
		return &ValidationError{Field: "radius_km", Message: "must be positive"}
	}
	return nil
}

// ClampLimit applies the list paging bounds.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
