package health

import (
	"context"
	"database/sql"
)

// Service encapsulates health-related checks.
type Service struct {
	DB *sql.DB
}

// NewService constructs a new health service. db may be nil when the
// process runs on in-memory repositories.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports process health. When a database is configured it is
// pinged and included in the payload.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	status := map[string]any{"ok": true}
	if s.DB == nil {
		return status, true
	}
	if err := s.DB.PingContext(ctx); err != nil {
		status["ok"] = false
		status["database"] = "down"
		return status, false
	}
	status["database"] = "up"
	return status, true
}
