package dto

import (
	"time"

	"workzone_backend/internal/feature/jobs/domain/entity"
)

// JobResponse is the JSON view of a job posting.
type JobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Rate        string    `json:"rate"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Tags        []string  `json:"tags"`
	LogoColor   string    `json:"logoColor"`
	Description string    `json:"description"`
	PostedBy    string    `json:"postedBy"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobListResponse is the body of GET /api/jobs.
type JobListResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Jobs    []JobResponse `json:"jobs"`
}

// JobEnvelope wraps a single job.
type JobEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Job     JobResponse `json:"job"`
}

// NewJobResponse converts an entity to its JSON view.
func NewJobResponse(j *entity.Job) JobResponse {
	tags := j.Tags
	if tags == nil {
		tags = []string{}
	}
	return JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Rate:        j.Rate,
		Amount:      j.Amount,
		Type:        string(j.Type),
		Tags:        tags,
		LogoColor:   j.LogoColor,
		Description: j.Description,
		PostedBy:    j.PostedBy,
		IsActive:    j.Active,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// NewJobListResponse converts a slice of entities.
func NewJobListResponse(jobs []entity.Job) JobListResponse {
	out := make([]JobResponse, len(jobs))
	for i := range jobs {
		out[i] = NewJobResponse(&jobs[i])
	}
	return JobListResponse{Success: true, Count: len(out), Jobs: out}
}
