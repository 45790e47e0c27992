// Package entity defines the domain entities for the jobs feature.
package entity

import "time"

// JobType is the employment type of a posting.
type JobType string

const (
	JobTypePartTime  JobType = "Part-Time"
	JobTypeFullTime  JobType = "Full-Time"
	JobTypeFreelance JobType = "Freelance"
	JobTypeContract  JobType = "Contract"
)

// DefaultLogoColor is used when a posting does not choose a color.
const DefaultLogoColor = "bg-blue-500"

// Job is a posting created by a company identity.
type Job struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Rate        string
	Amount      float64
	Type        JobType
	Tags        []string
	LogoColor   string
	Description string

	// PostedBy is the identity id of the company that created the posting.
	PostedBy string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether identityID created the posting.
func (j *Job) OwnedBy(identityID string) bool {
	return identityID != "" && j.PostedBy == identityID
}
