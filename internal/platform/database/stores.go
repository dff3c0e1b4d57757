package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"visitr/internal/platform/config"
	"visitr/internal/platform/models"
	"visitr/internal/platform/repositories"
	"visitr/internal/platform/repositories/mongostore"
)

type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetByEmail(ctx context.Context, email string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateQRCode(ctx context.Context, id, qrCodeURL string, at time.Time) error
	Ping(ctx context.Context) error
}

type GuestStore interface {
	Create(ctx context.Context, guest *models.Guest) error
	GetByID(ctx context.Context, orgID, id string) (*models.Guest, error)
	GetSignedInByCode(ctx context.Context, orgID, code string) (*models.Guest, error)
	SignOut(ctx context.Context, orgID, id string, at time.Time) (bool, error)
	AssignIDCard(ctx context.Context, orgID, id, cardNumber string, at time.Time) (bool, error)
	Extend(ctx context.Context, orgID, id string, minutes int, at time.Time) (int, bool, error)
	List(ctx context.Context, filter models.GuestFilter) ([]*models.Guest, int64, error)
	ListBySignIn(ctx context.Context, orgID string, r models.DateRange) ([]*models.Guest, error)
	Recent(ctx context.Context, orgID string, limit int) ([]*models.Guest, error)
	Stats(ctx context.Context, orgID string, dayStart, dayEnd time.Time) (*models.DashboardStats, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*models.Guest, error)
	MarkSecurityNotified(ctx context.Context, id string, at time.Time) error
}

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Driver        string
	Organizations OrganizationStore
	Guests        GuestStore

	sqlDB       *sql.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
}

// Open connects to the backend named by cfg.Driver, sqlite or mongo.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Stores, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := NewSQLite(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Stores{
			Driver:        "sqlite",
			Organizations: repositories.NewOrganizationRepository(db),
			Guests:        repositories.NewGuestRepository(db),
			sqlDB:         db,
		}, nil

	case "mongo":
		client, db, err := NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:        "mongo",
			Organizations: mongostore.NewOrganizationRepository(db),
			Guests:        mongostore.NewGuestRepository(db),
			mongoClient:   client,
			mongoDB:       db,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// Migrate applies the sqlite migrations in dir, or creates the mongo indexes.
func (s *Stores) Migrate(ctx context.Context, dir string) ([]string, error) {
	if s.mongoDB != nil {
		if err := mongostore.EnsureIndexes(ctx, s.mongoDB); err != nil {
			return nil, err
		}
		return []string{"mongo indexes"}, nil
	}
	return RunMigrations(ctx, s.sqlDB, dir)
}

func (s *Stores) Close(ctx context.Context) error {
	if s.mongoClient != nil {
		return s.mongoClient.Disconnect(ctx)
	}
	return s.sqlDB.Close()
}
