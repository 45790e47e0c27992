// Package usecase implements the business logic for job postings.
package usecase

import "errors"

// ErrJobNotFound is returned when no job matches the id.
var ErrJobNotFound = errors.New("job not found")
