// Package app provides application use cases.
package app

import "context"

// HealthUsecase defines the health check use case.
type HealthUsecase interface {
	Handle(ctx context.Context) (HealthResult, error)
}

// HealthResult represents the health check response.
type HealthResult struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}

// Health statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Pinger checks database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService implements HealthUsecase.
type HealthService struct {
	Version string
	DB      Pinger
}

// Handle returns the current health status. A failed ping is reported in
// the result, not as an error.
func (s HealthService) Handle(ctx context.Context) (HealthResult, error) {
	result := HealthResult{
		Status:  StatusOK,
		Version: s.Version,
	}
	if s.DB == nil {
		return result, nil
	}
	if err := s.DB.Ping(ctx); err != nil {
		result.Status = StatusUnavailable
		result.Database = "unreachable"
		return result, nil
	}
	result.Database = "ok"
	return result, nil
}
