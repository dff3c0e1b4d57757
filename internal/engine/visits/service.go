package visits

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "visitr/internal/pkg/errors"
	"visitr/internal/pkg/validator"
	"visitr/internal/platform/config"
	"visitr/internal/platform/models"
)

const (
	MinExpectedDuration = 5
	MaxExpectedDuration = 480
	// MaxVisitDuration caps the expected duration reachable through extensions.
	MaxVisitDuration = 3 * 24 * 60

	defaultPageSize     = 50
	defaultActivitySize = 10
)

// GuestRepository is the storage contract shared by the sqlite and mongo
// backends. Lookups return nil, nil when nothing matches; conditional updates
// report whether a signed-in guest was matched.
type GuestRepository interface {
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
}

type OrganizationFinder interface {
	GetByID(ctx context.Context, id string) (*models.Organization, error)
}

type Service struct {
	guests       GuestRepository
	orgs         OrganizationFinder
	codeAttempts int
	newCode      CodeGenerator
	now          func() time.Time
}

func NewService(guests GuestRepository, orgs OrganizationFinder, cfg config.VisitsConfig) *Service {
	attempts := cfg.CodeAttempts
	if attempts <= 0 {
		attempts = defaultCodeAttempts
	}
	return &Service{
		guests:       guests,
		orgs:         orgs,
		codeAttempts: attempts,
		newCode:      GenerateGuestCode,
		now:          time.Now,
	}
}

type RegisterInput struct {
	GuestName        string `json:"guestName"`
	GuestPhone       string `json:"guestPhone"`
	GuestEmail       string `json:"guestEmail"`
	OrganizationID   string `json:"organizationId"`
	Location         string `json:"location"`
	PersonToSee      string `json:"personToSee"`
	Purpose          string `json:"purpose"`
	ExpectedDuration int    `json:"expectedDuration"`
}

func (in *RegisterInput) normalize() {
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.GuestPhone = strings.TrimSpace(in.GuestPhone)
	in.GuestEmail = strings.ToLower(strings.TrimSpace(in.GuestEmail))
	in.OrganizationID = strings.TrimSpace(in.OrganizationID)
	in.Location = strings.TrimSpace(in.Location)
	in.PersonToSee = strings.TrimSpace(in.PersonToSee)
	in.Purpose = strings.TrimSpace(in.Purpose)
}

func (in *RegisterInput) validate() error {
	if in.GuestName == "" || in.GuestPhone == "" || in.OrganizationID == "" ||
		in.Location == "" || in.PersonToSee == "" || in.ExpectedDuration == 0 {
		return apperrors.BadRequest("All required fields must be provided")
	}
	if len([]rune(in.GuestName)) > 100 {
		return apperrors.BadRequest("Guest name cannot exceed 100 characters")
	}
	if len([]rune(in.Purpose)) > 200 {
		return apperrors.BadRequest("Purpose cannot exceed 200 characters")
	}
	if in.ExpectedDuration < MinExpectedDuration {
		return apperrors.BadRequest("Expected duration must be at least 5 minutes")
	}
	if in.ExpectedDuration > MaxExpectedDuration {
		return apperrors.BadRequest("Expected duration cannot exceed 8 hours")
	}
	if err := validator.ValidateContact(in.GuestEmail, in.GuestPhone); err != nil {
		return apperrors.BadRequest(err.Error())
	}
	return nil
}

// Register signs a guest in for an active organization and returns the
// stored visit, including its guest code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Guest, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, in.OrganizationID)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if org == nil || !org.IsActive {
		return nil, apperrors.NotFound("Organization not found or inactive")
	}

	now := s.now()
	guest := &models.Guest{
		GuestName:        in.GuestName,
		GuestPhone:       in.GuestPhone,
		GuestEmail:       models.StringPtr(in.GuestEmail),
		OrganizationID:   org.ID,
		Location:         in.Location,
		PersonToSee:      in.PersonToSee,
		Purpose:          models.StringPtr(in.Purpose),
		SignInTime:       now,
		ExpectedDuration: in.ExpectedDuration,
		MinVisitDuration: org.MinGuestVisitMinutes,
		Status:           models.StatusSignedIn,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// The unique index on guest codes arbitrates concurrent registrations.
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		guest.ID = uuid.NewString()
		guest.GuestCode = s.newCode()

		err := s.guests.Create(ctx, guest)
		if err == nil {
			return guest, nil
		}
		if !errors.Is(err, models.ErrDuplicateKey) {
			return nil, apperrors.Internal("Internal server error", err)
		}
	}

	return nil, apperrors.Internal("Unable to generate unique guest code. Please try again.", nil)
}

type SignOutResult struct {
	GuestCode     string    `json:"guestCode"`
	SignOutTime   time.Time `json:"signOutTime"`
	VisitDuration int       `json:"visitDuration"`
}

// SelfSignOut ends a visit from the guest's side. The minimum stay recorded
// on the visit must have elapsed.
func (s *Service) SelfSignOut(ctx context.Context, orgID, guestCode string) (*SignOutResult, error) {
	orgID = strings.TrimSpace(orgID)
	guestCode = strings.TrimSpace(guestCode)
	if orgID == "" || guestCode == "" {
		return nil, apperrors.BadRequest("Guest code and organization ID are required")
	}

	guest, err := s.guests.GetSignedInByCode(ctx, orgID, guestCode)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if guest == nil {
		return nil, apperrors.NotFound("Guest not found or already signed out")
	}

	now := s.now()
	if !HasMinimumVisitTimePassed(guest.SignInTime, guest.MinVisitDuration, now) {
		return nil, apperrors.BadRequest(fmt.Sprintf("Minimum visit time of %d minutes has not passed", guest.MinVisitDuration))
	}

	ok, err := s.guests.SignOut(ctx, orgID, guest.ID, now)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if !ok {
		return nil, apperrors.NotFound("Guest not found or already signed out")
	}

	return &SignOutResult{
		GuestCode:     guest.GuestCode,
		SignOutTime:   now,
		VisitDuration: VisitDuration(guest.SignInTime, &now, now),
	}, nil
}

// AdminSignOut ends a visit on behalf of the organization. There is no
// minimum stay; a guest who is already signed out is reported as not found.
func (s *Service) AdminSignOut(ctx context.Context, orgID, guestID string) error {
	ok, err := s.guests.SignOut(ctx, orgID, guestID, s.now())
	if err != nil {
		return apperrors.Internal("Internal server error", err)
	}
	if ok {
		return nil
	}

	guest, err := s.guests.GetByID(ctx, orgID, guestID)
	if err != nil {
		return apperrors.Internal("Internal server error", err)
	}
	if guest == nil {
		return apperrors.NotFound("Guest not found")
	}
	return apperrors.NotFound("Guest is not currently signed in")
}

func (s *Service) AssignIDCard(ctx context.Context, orgID, guestID, cardNumber string) error {
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return apperrors.BadRequest("ID card number is required")
	}

	ok, err := s.guests.AssignIDCard(ctx, orgID, guestID, cardNumber, s.now())
	if err != nil {
		return apperrors.Internal("Internal server error", err)
	}
	if !ok {
		return apperrors.NotFound("Guest not found")
	}
	return nil
}

// Extend adds minutes to a signed-in guest's expected duration and returns
// the new total.
func (s *Service) Extend(ctx context.Context, orgID, guestID string, minutes int) (int, error) {
	if minutes <= 0 {
		return 0, apperrors.BadRequest("Additional minutes must be a positive number")
	}
	if minutes > MaxExpectedDuration {
		return 0, apperrors.BadRequest("Additional minutes cannot exceed 480 per extension")
	}

	guest, err := s.guests.GetByID(ctx, orgID, guestID)
	if err != nil {
		return 0, apperrors.Internal("Internal server error", err)
	}
	if guest == nil {
		return 0, apperrors.NotFound("Guest not found")
	}
	if guest.Status != models.StatusSignedIn {
		return 0, apperrors.BadRequest("Can only extend visit for signed-in guests")
	}
	if guest.ExpectedDuration+minutes > MaxVisitDuration {
		return 0, apperrors.BadRequest("Visit cannot be extended beyond 72 hours in total")
	}

	total, ok, err := s.guests.Extend(ctx, orgID, guestID, minutes, s.now())
	if err != nil {
		return 0, apperrors.Internal("Internal server error", err)
	}
	if !ok {
		// signed out between the read and the update
		return 0, apperrors.BadRequest("Can only extend visit for signed-in guests")
	}
	return total, nil
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type GuestPage struct {
	Guests     []*models.Guest `json:"guests"`
	Pagination Pagination      `json:"pagination"`
}

func validStatusFilter(status string) bool {
	switch status {
	case "", models.StatusSignedIn, models.StatusSignedOut, models.StatusExpired:
		return true
	}
	return false
}

// List pages through an organization's guests, newest first. The expired
// filter selects signed-in guests whose expected end has passed.
func (s *Service) List(ctx context.Context, orgID, status string, page, limit int) (*GuestPage, error) {
	if !validStatusFilter(status) {
		return nil, apperrors.BadRequest("Invalid status filter")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	guests, total, err := s.guests.List(ctx, models.GuestFilter{
		OrganizationID: orgID,
		Status:         status,
		Offset:         (page - 1) * limit,
		Limit:          limit,
		Now:            s.now(),
	})
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if guests == nil {
		guests = []*models.Guest{}
	}

	return &GuestPage{
		Guests: guests,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

func (s *Service) Stats(ctx context.Context, orgID string) (*models.DashboardStats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := s.guests.Stats(ctx, orgID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	return stats, nil
}

// Recent returns the latest visits for the activity feed.
func (s *Service) Recent(ctx context.Context, orgID string, limit int) ([]*models.Guest, error) {
	if limit < 1 {
		limit = defaultActivitySize
	}

	guests, err := s.guests.Recent(ctx, orgID, limit)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if guests == nil {
		guests = []*models.Guest{}
	}
	return guests, nil
}
