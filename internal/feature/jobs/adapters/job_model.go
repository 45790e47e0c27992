package adapters

import (
	"time"

	"workzone_backend/internal/feature/jobs/domain/entity"
)

// JobModel is the GORM model for the jobs table.
type JobModel struct {
	ID          string   `gorm:"primaryKey;size:36"`
	Title       string   `gorm:"size:100;not null"`
	Company     string   `gorm:"size:255;not null"`
	Location    string   `gorm:"size:255;not null"`
	Rate        string   `gorm:"size:64;not null"`
	Amount      float64  `gorm:"type:numeric(12,2);not null"`
	Type        string   `gorm:"size:16;not null"`
	Tags        []string `gorm:"serializer:json;type:text;not null"`
	LogoColor   string   `gorm:"size:32;not null"`
	Description string   `gorm:"type:text;not null"`
	PostedBy    string   `gorm:"size:36;index;not null"`
	IsActive    bool     `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (JobModel) TableName() string {
	return "jobs"
}

// ToEntity converts the GORM model to a domain entity.
func (m *JobModel) ToEntity() entity.Job {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return entity.Job{
		ID:          m.ID,
		Title:       m.Title,
		Company:     m.Company,
		Location:    m.Location,
		Rate:        m.Rate,
		Amount:      m.Amount,
		Type:        entity.JobType(m.Type),
		Tags:        tags,
		LogoColor:   m.LogoColor,
		Description: m.Description,
		PostedBy:    m.PostedBy,
		Active:      m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// JobModelFromEntity converts a domain entity to the GORM model.
func JobModelFromEntity(j *entity.Job) *JobModel {
	tags := j.Tags
	if tags == nil {
		tags = []string{}
	}
	return &JobModel{
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
