package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB      Pinger
	Store   string
	Timeout time.Duration
}

// Report is the health payload.
type Report struct {
	OK       bool   `json:"ok"`
	Store    string `json:"store,omitempty"`
	Database string `json:"database,omitempty"`
}

// NewService constructs a new health service. db may be nil when no database is in use.
func NewService(db Pinger, store string) *Service {
	return &Service{DB: db, Store: store, Timeout: 2 * time.Second}
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Store: s.Store}
	if s.DB == nil {
		return report
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(pingCtx); err != nil {
		report.OK = false
		report.Database = "unreachable"
		return report
	}
	report.Database = "ok"
	return report
}
