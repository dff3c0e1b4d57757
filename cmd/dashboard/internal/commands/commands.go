package commands

import (
	"context"
	"fmt"
	"time"

	"visitr/internal/dashboard"
	"visitr/internal/pkg/logger"
	"visitr/internal/platform/config"
)

type Globals struct {
	Server   string        `help:"API base URL" default:"http://localhost:5000" env:"VISITR_SERVER"`
	Email    string        `help:"Organization login email" required:"" env:"VISITR_EMAIL"`
	Password string        `help:"Organization password" required:"" env:"VISITR_PASSWORD"`
	Timeout  time.Duration `help:"HTTP request timeout" default:"10s"`
	Debug    bool          `help:"Enable debug logging."`
}

// connect logs in and returns the API client with its session.
func (g *Globals) connect(ctx context.Context) (*dashboard.Client, *dashboard.Session, error) {
	level := "warn"
	if g.Debug {
		level = "debug"
	}
	logger.Init(config.LoggingConfig{Level: level, Format: "text", Output: "stderr"}, "dashboard")

	client := dashboard.NewClient(g.Server, g.Timeout)
	session := dashboard.NewSession(client)
	if err := session.Load(ctx, g.Email, g.Password); err != nil {
		return nil, nil, fmt.Errorf("login failed: %w", err)
	}
	return client, session, nil
}
