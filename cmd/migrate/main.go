package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"visitr/internal/engine/orgs"
	apperrors "visitr/internal/pkg/errors"
	"visitr/internal/pkg/logger"
	"visitr/internal/platform/auth"
	"visitr/internal/platform/config"
	"visitr/internal/platform/database"
)

var demoOrganization = orgs.RegisterInput{
	Name:          "Demo Organization",
	Email:         "demo@organization.com",
	Password:      "demo123",
	ContactPerson: "John Demo",
	Phone:         "+1234567890",
	Address:       "123 Demo Street, Demo City, DC 12345",
	Locations: []string{
		"Reception",
		"Main Office",
		"Conference Room A",
		"Conference Room B",
		"IT Department",
		"HR Department",
	},
	StaffMembers: []string{
		"John Smith - Manager",
		"Jane Doe - HR Director",
		"Mike Johnson - IT Lead",
		"Sarah Wilson - Operations",
		"Reception Staff",
	},
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "migrations", "Directory with sqlite migration files")
	seedDemo := flag.Bool("seed-demo", false, "Create the demo organization after migrating")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging, "migrate")

	if err := run(context.Background(), cfg, *dir, *seedDemo); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}

func run(ctx context.Context, cfg *config.Config, dir string, seedDemo bool) error {
	stores, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer stores.Close(ctx)

	applied, err := stores.Migrate(ctx, dir)
	if err != nil {
		return err
	}
	log.Info().Strs("applied", applied).Str("database", stores.Driver).Msg("Migration completed successfully")

	if !seedDemo {
		return nil
	}

	orgSvc := orgs.NewService(stores.Organizations, nil, auth.NewTokenService(cfg.JWT),
		cfg.App.ClientURL, cfg.Visits.DefaultMinVisitMinutes)

	org, err := orgSvc.Register(ctx, demoOrganization)
	if err != nil {
		if apperrors.As(err).Status == http.StatusConflict {
			log.Info().Str("email", demoOrganization.Email).Msg("demo organization already exists")
			return nil
		}
		return err
	}

	log.Info().
		Str("organization_id", org.ID).
		Str("email", demoOrganization.Email).
		Str("password", demoOrganization.Password).
		Msg("demo organization created")
	return nil
}
