package repositories

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitr/internal/platform/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	// every new connection would get its own empty in-memory database
	db.SetMaxOpenConns(1)

	schema, err := os.ReadFile("../../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedOrg(t *testing.T, repo *OrganizationRepository, id, email string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		ID:                   id,
		Name:                 "Org " + id,
		Email:                email,
		Password:             "hash",
		ContactPerson:        "Pat",
		Phone:                "+15550000000",
		Address:              "1 Main St",
		Locations:            []string{"Reception", "Main Office"},
		StaffMembers:         []string{"Reception Staff"},
		MinGuestVisitMinutes: 15,
		IsActive:             true,
		CreatedAt:            t0,
		UpdatedAt:            t0,
	}
	require.NoError(t, repo.Create(context.Background(), org))
	return org
}

func newGuest(id, orgID, code string, signIn time.Time, expected int) *models.Guest {
	return &models.Guest{
		ID:               id,
		GuestName:        "Guest " + id,
		GuestPhone:       "+15551234567",
		GuestCode:        code,
		OrganizationID:   orgID,
		Location:         "Reception",
		PersonToSee:      "Reception Staff",
		SignInTime:       signIn,
		ExpectedDuration: expected,
		MinVisitDuration: 15,
		Status:           models.StatusSignedIn,
		CreatedAt:        signIn,
		UpdatedAt:        signIn,
	}
}

func TestOrganizationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrganizationRepository(db)
	ctx := context.Background()

	org := seedOrg(t, repo, "org1", "front@acme.com")

	got, err := repo.GetByEmail(ctx, "front@acme.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, org.ID, got.ID)
	assert.Equal(t, []string{"Reception", "Main Office"}, got.Locations)
	assert.Equal(t, t0, got.CreatedAt)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.QRCodeURL)

	dup := *org
	dup.ID = "org2"
	assert.ErrorIs(t, repo.Create(ctx, &dup), models.ErrDuplicateKey)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	got.Name = "Acme Renamed"
	got.MinGuestVisitMinutes = 30
	got.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.UpdateQRCode(ctx, "org1", "data:image/png;base64,AAAA", t0.Add(2*time.Hour)))

	got, err = repo.GetByID(ctx, "org1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", got.Name)
	assert.Equal(t, 30, got.MinGuestVisitMinutes)
	require.NotNil(t, got.QRCodeURL)
	assert.Equal(t, "data:image/png;base64,AAAA", *got.QRCodeURL)
}

func TestGuestRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, NewOrganizationRepository(db), "org1", "a@acme.com")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	g := newGuest("g1", "org1", "123456", t0, 30)
	g.GuestEmail = models.StringPtr("guest@example.com")
	require.NoError(t, repo.Create(ctx, g))

	dup := newGuest("g2", "org1", "123456", t0, 30)
	assert.ErrorIs(t, repo.Create(ctx, dup), models.ErrDuplicateKey)

	got, err := repo.GetSignedInByCode(ctx, "org1", "123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "g1", got.ID)
	assert.Equal(t, "guest@example.com", models.StringValue(got.GuestEmail))
	assert.Nil(t, got.Purpose)
	assert.Nil(t, got.SignOutTime)
	assert.Equal(t, t0, got.SignInTime)

	other, err := repo.GetByID(ctx, "org-other", "g1")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestGuestRepository_ConditionalUpdates(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, NewOrganizationRepository(db), "org1", "a@acme.com")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newGuest("g1", "org1", "111111", t0, 30)))

	total, ok, err := repo.Extend(ctx, "org1", "g1", 15, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 45, total)

	ok, err = repo.AssignIDCard(ctx, "org1", "g1", "C-1", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SignOut(ctx, "org1", "g1", t0.Add(20*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	// a second sign-out matches nothing
	ok, err = repo.SignOut(ctx, "org1", "g1", t0.Add(21*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.Extend(ctx, "org1", "g1", 15, t0.Add(22*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, "org1", "g1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSignedOut, got.Status)
	assert.Equal(t, 45, got.ExpectedDuration)
	assert.True(t, got.IDCardAssigned)
	assert.Equal(t, "C-1", models.StringValue(got.IDCardNumber))
	require.NotNil(t, got.SignOutTime)
	assert.Equal(t, t0.Add(20*time.Minute), *got.SignOutTime)

	signedIn, err := repo.GetSignedInByCode(ctx, "org1", "111111")
	require.NoError(t, err)
	assert.Nil(t, signedIn)
}

func TestGuestRepository_ListAndStats(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, NewOrganizationRepository(db), "org1", "a@acme.com")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newGuest("g1", "org1", "100001", t0, 10)))
	require.NoError(t, repo.Create(ctx, newGuest("g2", "org1", "100002", t0.Add(time.Minute), 60)))
	require.NoError(t, repo.Create(ctx, newGuest("g3", "org1", "100003", t0.Add(2*time.Minute), 60)))
	_, err := repo.SignOut(ctx, "org1", "g3", t0.Add(30*time.Minute))
	require.NoError(t, err)
	_, err = repo.AssignIDCard(ctx, "org1", "g2", "C-2", t0)
	require.NoError(t, err)

	now := t0.Add(30 * time.Minute)

	guests, total, err := repo.List(ctx, models.GuestFilter{OrganizationID: "org1", Limit: 2, Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, guests, 2)
	assert.Equal(t, "g3", guests[0].ID)
	assert.Equal(t, "g2", guests[1].ID)

	guests, total, err = repo.List(ctx, models.GuestFilter{OrganizationID: "org1", Status: models.StatusSignedIn, Limit: 10, Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, guests, 2)

	guests, total, err = repo.List(ctx, models.GuestFilter{OrganizationID: "org1", Status: models.StatusExpired, Limit: 10, Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, guests, 1)
	assert.Equal(t, "g1", guests[0].ID)

	stats, err := repo.Stats(ctx, "org1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{
		TotalGuests:          3,
		ActiveGuests:         2,
		TodayGuests:          3,
		PendingIDAssignments: 1,
	}, stats)

	recent, err := repo.Recent(ctx, "org1", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "g3", recent[0].ID)
}

func TestGuestRepository_ListBySignIn(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, NewOrganizationRepository(db), "org1", "a@acme.com")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newGuest("before", "org1", "200001", day.Add(-time.Second), 30)))
	require.NoError(t, repo.Create(ctx, newGuest("start", "org1", "200002", day, 30)))
	require.NoError(t, repo.Create(ctx, newGuest("end", "org1", "200003", day.Add(48*time.Hour-time.Second), 30)))
	require.NoError(t, repo.Create(ctx, newGuest("after", "org1", "200004", day.Add(48*time.Hour), 30)))

	guests, err := repo.ListBySignIn(ctx, "org1", models.DateRange{From: day, Until: day.Add(48 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, "end", guests[0].ID)
	assert.Equal(t, "start", guests[1].ID)

	all, err := repo.ListBySignIn(ctx, "org1", models.DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestGuestRepository_Overdue(t *testing.T) {
	db := setupTestDB(t)
	seedOrg(t, NewOrganizationRepository(db), "org1", "a@acme.com")
	repo := NewGuestRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newGuest("late", "org1", "300001", t0, 10)))
	require.NoError(t, repo.Create(ctx, newGuest("ontime", "org1", "300002", t0, 120)))

	now := t0.Add(30 * time.Minute)
	overdue, err := repo.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)

	require.NoError(t, repo.MarkSecurityNotified(ctx, "late", now))

	overdue, err = repo.ListOverdue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	got, err := repo.GetByID(ctx, "org1", "late")
	require.NoError(t, err)
	assert.True(t, got.SecurityNotified)
	assert.Equal(t, models.StatusSignedIn, got.Status)
}
