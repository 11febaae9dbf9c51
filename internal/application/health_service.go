package application

import (
	"context"
	"errors"

	"github.com/lanecast/lanecast/internal/lane"
	"github.com/lanecast/lanecast/internal/port/driven"
)

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	db       driven.EventRepository
	schedule *ScheduleService
}

// NewHealthService creates a new health check service.
func NewHealthService(db driven.EventRepository, schedule *ScheduleService) *HealthService {
	return &HealthService{
		db:       db,
		schedule: schedule,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status   string          // "ok" if all components are healthy, "degraded" otherwise
	DB       ComponentHealth // database health
	Schedule ComponentHealth // published schedule presence ("ok" or "none")
}

// Check performs health checks on all dependencies. A missing schedule
// before the first rebuild is reported but does not degrade the overall
// status.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
	}

	if err := s.db.Ping(ctx); err != nil {
		status.DB = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
	} else {
		status.DB = ComponentHealth{
			Status: "ok",
		}
	}

	if _, err := s.schedule.Current(); err != nil {
		if errors.Is(err, lane.ErrNoSchedule) {
			status.Schedule = ComponentHealth{Status: "none"}
		} else {
			status.Schedule = ComponentHealth{
				Status: "error",
				Error:  err.Error(),
			}
			status.Status = "degraded"
		}
	} else {
		status.Schedule = ComponentHealth{
			Status: "ok",
		}
	}

	return status
}
