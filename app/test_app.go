package app

import (
	"go-wallet-ledger/config"
	"time"
)

// TestApp is an in-memory application for HTTP tests.
type TestApp struct {
	*App
	Config *config.Config
}

// NewTestApp builds an App on memory stores with no cache or broker.
// Handles in admins get the admin role at login.
func NewTestApp(admins ...string) (*TestApp, error) {
	cfg := &config.Config{}
	cfg.Store.Driver = "memory"
	cfg.JWT.SecretKey = "test-secret"
	cfg.Bcrypt.Cost = 4
	cfg.Ledger.MaxRetries = 50
	cfg.Ledger.AttemptTimeout = 2 * time.Second
	cfg.Ledger.BackoffInitial = time.Millisecond
	cfg.Ledger.BackoffMax = 5 * time.Millisecond
	cfg.Admin.Handles = admins

	a, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	return &TestApp{App: a, Config: cfg}, nil
}
