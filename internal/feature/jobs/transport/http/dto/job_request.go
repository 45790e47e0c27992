// Package dto は求人APIのリクエスト・レスポンスの形を定義します。
package dto

import "workzone_backend/internal/feature/jobs/usecase"

// CreateJobRequest is the body of POST /api/jobs.
// postedBy is ignored if sent; the caller always becomes the poster.
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Rate        string   `json:"rate"`
	Amount      float64  `json:"amount"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags"`
	LogoColor   string   `json:"logoColor"`
	Description string   `json:"description"`
}

// ToInput converts the request to the usecase input.
func (r CreateJobRequest) ToInput() usecase.JobInput {
	return usecase.JobInput{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Rate:        r.Rate,
		Amount:      r.Amount,
		Type:        r.Type,
		Tags:        r.Tags,
		LogoColor:   r.LogoColor,
		Description: r.Description,
	}
}

// UpdateJobRequest is the body of PUT /api/jobs/:id. Omitted fields stay unchanged.
type UpdateJobRequest struct {
	Title       *string   `json:"title"`
	Company     *string   `json:"company"`
	Location    *string   `json:"location"`
	Rate        *string   `json:"rate"`
	Amount      *float64  `json:"amount"`
	Type        *string   `json:"type"`
	Tags        *[]string `json:"tags"`
	LogoColor   *string   `json:"logoColor"`
	Description *string   `json:"description"`
	IsActive    *bool     `json:"isActive"`
}

// ToPatch converts the request to the usecase patch.
func (r UpdateJobRequest) ToPatch() usecase.JobPatch {
	return usecase.JobPatch{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Rate:        r.Rate,
		Amount:      r.Amount,
		Type:        r.Type,
		Tags:        r.Tags,
		LogoColor:   r.LogoColor,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}
