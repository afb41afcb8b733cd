// Package resume defines the resume snapshot and merges accepted changes into it.
package resume

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/davidbz/markl/internal/domain"
)

// PersonalInfo holds contact details.
type PersonalInfo struct {
	FullName string `json:"fullName"           validate:"required"`
	Email    string `json:"email,omitempty"    validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"  validate:"omitempty,url"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Experience is one position.
type Experience struct {
	Company      string   `json:"company"                validate:"required"`
	Position     string   `json:"position"               validate:"required"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Education is one degree or program.
type Education struct {
	Institution string `json:"institution"         validate:"required"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

// Project is a portfolio entry.
type Project struct {
	Name         string   `json:"name"                   validate:"required"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"          validate:"omitempty,url"`
}

// Resume is the structured resume snapshot suggestions are applied to.
type Resume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary,omitempty"`
	Skills       []string     `json:"skills,omitempty"`
	Experience   []Experience `json:"experience,omitempty" validate:"dive"`
	Education    []Education  `json:"education,omitempty"  validate:"dive"`
	Projects     []Project    `json:"projects,omitempty"   validate:"dive"`
}

//nolint:gochecknoglobals // validator caches struct metadata
var validate = validator.New()

// Export serializes a resume as indented JSON.
func Export(r *Resume) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export resume: %w", err)
	}
	return data, nil
}

// Import parses and validates a resume document.
func Import(data []byte) (*Resume, error) {
	var r Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &domain.ValidationError{Field: "resume", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if err := validate.Struct(&r); err != nil {
		return nil, &domain.ValidationError{Field: "resume", Message: err.Error()}
	}

	return &r, nil
}

// Apply writes each change's new value at its field path in the snapshot.
// Both "experience[0].description" and "experience.0.description" address the same field.
// Changes on domain.FallbackField are skipped.
func Apply(snapshot []byte, changes []domain.FieldChange) ([]byte, error) {
	if len(bytes.TrimSpace(snapshot)) == 0 {
		snapshot = []byte("{}")
	}
	if !gjson.ValidBytes(snapshot) {
		return nil, &domain.ValidationError{Field: "resume", Message: "resume snapshot is not valid JSON"}
	}

	out := snapshot
	for _, change := range changes {
		if change.Field == domain.FallbackField {
			continue
		}

		path := domain.NormalizeFieldPath(change.Field)
		if path == "" {
			return nil, &domain.ValidationError{Field: "field", Message: "suggestion field path is empty"}
		}

		var err error
		out, err = sjson.SetBytes(out, path, change.To)
		if err != nil {
			return nil, fmt.Errorf("failed to apply change to %s: %w", change.Field, err)
		}
	}

	return out, nil
}
