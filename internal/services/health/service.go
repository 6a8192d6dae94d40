package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// CredentialCheck reports whether the provider credential is currently set.
type CredentialCheck func() bool

// Status is the health payload.
type Status struct {
	OK                   bool   `json:"ok"`
	Database             string `json:"database"`
	Provider             string `json:"provider"`
	Model                string `json:"model"`
	CredentialConfigured bool   `json:"credentialConfigured"`
	Sessions             int    `json:"sessions"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB         *sql.DB
	Provider   string
	Model      string
	Credential CredentialCheck
	Sessions   func() int
}

// NewService constructs a new health service.
func NewService(db *sql.DB, provider, model string, credential CredentialCheck, sessions func() int) *Service {
	return &Service{DB: db, Provider: provider, Model: model, Credential: credential, Sessions: sessions}
}

// Status reports process health. A missing credential does not make the
// process unhealthy; enhancement requests fail with a configuration error
// until it is set.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", Provider: s.Provider, Model: s.Model}
	if s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			st.OK = false
			st.Database = "unreachable"
		} else {
			st.Database = "ok"
		}
	}
	if s.Credential != nil {
		st.CredentialConfigured = s.Credential()
	}
	if s.Sessions != nil {
		st.Sessions = s.Sessions()
	}
	return st
}
