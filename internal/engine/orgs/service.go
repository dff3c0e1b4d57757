package orgs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "visitr/internal/pkg/errors"
	"visitr/internal/pkg/validator"
	"visitr/internal/platform/auth"
	"visitr/internal/platform/models"
)

const (
	DefaultMinVisitMinutes = 15
	MinVisitMinutesFloor   = 5
	MinVisitMinutesCeiling = 480

	minPasswordLength = 6
	maxNameLength     = 100
)

var (
	DefaultLocations    = []string{"Reception", "Main Office"}
	DefaultStaffMembers = []string{"Reception Staff"}
)

type Repository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	GetByEmail(ctx context.Context, email string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	UpdateQRCode(ctx context.Context, id, qrCodeURL string, at time.Time) error
}

type Service struct {
	repo       Repository
	cache      *Cache
	tokens     *auth.TokenService
	clientURL  string
	defaultMin int
	now        func() time.Time
}

func NewService(repo Repository, cache *Cache, tokens *auth.TokenService, clientURL string, defaultMinVisit int) *Service {
	if defaultMinVisit <= 0 {
		defaultMinVisit = DefaultMinVisitMinutes
	}
	if cache == nil {
		cache = NewCache(0)
	}
	return &Service{
		repo:       repo,
		cache:      cache,
		tokens:     tokens,
		clientURL:  clientURL,
		defaultMin: defaultMinVisit,
		now:        time.Now,
	}
}

func validateMinVisit(minutes int) error {
	if minutes < MinVisitMinutesFloor {
		return apperrors.BadRequest("Minimum visit time cannot be less than 5 minutes")
	}
	if minutes > MinVisitMinutesCeiling {
		return apperrors.BadRequest("Minimum visit time cannot exceed 8 hours")
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type RegisterInput struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	Password             string   `json:"password"`
	ContactPerson        string   `json:"contactPerson"`
	Phone                string   `json:"phone"`
	Address              string   `json:"address"`
	Locations            []string `json:"locations"`
	StaffMembers         []string `json:"staffMembers"`
	MinGuestVisitMinutes *int     `json:"minGuestVisitMinutes"`
}

// Register creates an active organization. Missing locations, staff and
// minimum visit settings fall back to defaults.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Organization, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if in.Name == "" || in.Email == "" || in.Password == "" || in.ContactPerson == "" || in.Phone == "" || in.Address == "" {
		return nil, apperrors.BadRequest("All required fields must be provided")
	}
	if len([]rune(in.Name)) > maxNameLength {
		return nil, apperrors.BadRequest("Organization name cannot exceed 100 characters")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.BadRequest("Password must be at least 6 characters")
	}
	if err := validator.ValidateContact(in.Email, in.Phone); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}

	minVisit := s.defaultMin
	if in.MinGuestVisitMinutes != nil {
		minVisit = *in.MinGuestVisitMinutes
	}
	if err := validateMinVisit(minVisit); err != nil {
		return nil, err
	}

	locations := cleanList(in.Locations)
	if in.Locations == nil {
		locations = append([]string(nil), DefaultLocations...)
	}
	staff := cleanList(in.StaffMembers)
	if in.StaffMembers == nil {
		staff = append([]string(nil), DefaultStaffMembers...)
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("Organization with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}

	now := s.now()
	org := &models.Organization{
		ID:                   uuid.NewString(),
		Name:                 in.Name,
		Email:                in.Email,
		Password:             hash,
		ContactPerson:        in.ContactPerson,
		Phone:                in.Phone,
		Address:              in.Address,
		Locations:            locations,
		StaffMembers:         staff,
		MinGuestVisitMinutes: minVisit,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Create(ctx, org); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, apperrors.Conflict("Organization with this email already exists")
		}
		return nil, apperrors.Internal("Internal server error", err)
	}

	log.Info().Str("organization_id", org.ID).Msg("organization registered")
	return org, nil
}

type LoginResult struct {
	Token        string               `json:"token"`
	Organization *models.Organization `json:"organization"`
	ExpiresIn    string               `json:"expiresIn"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.BadRequest("Email and password are required")
	}

	org, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if org == nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if !org.IsActive {
		return nil, apperrors.Unauthorized("Organization account is deactivated")
	}
	if !auth.CheckPassword(org.Password, password) {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.tokens.GenerateToken(org.ID)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}

	return &LoginResult{Token: token, Organization: org, ExpiresIn: s.tokens.ExpiresIn()}, nil
}

// GetByID returns the organization, cached or from the store, or nil when
// it does not exist.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	if org, ok := s.cache.Get(id); ok {
		return org, nil
	}

	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(org)
	return org, nil
}

// GetPublic backs the guest sign-in form and hides inactive organizations.
func (s *Service) GetPublic(ctx context.Context, id string) (*models.Organization, error) {
	org, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if org == nil || !org.IsActive {
		return nil, apperrors.NotFound("Organization not found or inactive")
	}
	return org, nil
}

// UpdateInput holds optional profile changes. Nil or empty fields are left
// untouched.
type UpdateInput struct {
	Name                 string   `json:"name"`
	ContactPerson        string   `json:"contactPerson"`
	Phone                string   `json:"phone"`
	Address              string   `json:"address"`
	Locations            []string `json:"locations"`
	StaffMembers         []string `json:"staffMembers"`
	MinGuestVisitMinutes *int     `json:"minGuestVisitMinutes"`
}

func (s *Service) UpdateProfile(ctx context.Context, orgID string, in UpdateInput) (*models.Organization, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if org == nil {
		return nil, apperrors.NotFound("Organization not found")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if len([]rune(name)) > maxNameLength {
			return nil, apperrors.BadRequest("Organization name cannot exceed 100 characters")
		}
		org.Name = name
	}
	if contact := strings.TrimSpace(in.ContactPerson); contact != "" {
		org.ContactPerson = contact
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if !validator.IsPhone(phone) {
			return nil, apperrors.BadRequest(validator.ErrInvalidPhone.Error())
		}
		org.Phone = phone
	}
	if address := strings.TrimSpace(in.Address); address != "" {
		org.Address = address
	}
	if in.Locations != nil {
		org.Locations = cleanList(in.Locations)
	}
	if in.StaffMembers != nil {
		org.StaffMembers = cleanList(in.StaffMembers)
	}
	if in.MinGuestVisitMinutes != nil {
		if err := validateMinVisit(*in.MinGuestVisitMinutes); err != nil {
			return nil, err
		}
		org.MinGuestVisitMinutes = *in.MinGuestVisitMinutes
	}
	org.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	s.cache.Invalidate(orgID)
	return org, nil
}

// GenerateQR renders a fresh sign-in QR code for the organization and
// stores it as a data URL.
func (s *Service) GenerateQR(ctx context.Context, org *models.Organization) (string, error) {
	dataURL, err := GenerateQRDataURL(SignInURL(s.clientURL, org.ID, org.Name), DisplayQRSize)
	if err != nil {
		return "", apperrors.Internal("Failed to generate QR code", err)
	}

	if err := s.repo.UpdateQRCode(ctx, org.ID, dataURL, s.now()); err != nil {
		return "", apperrors.Internal("Failed to generate QR code", err)
	}
	s.cache.Invalidate(org.ID)
	return dataURL, nil
}

// CurrentQR returns the stored QR data URL, or nil if none was generated.
func (s *Service) CurrentQR(ctx context.Context, orgID string) (*string, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.Internal("Internal server error", err)
	}
	if org == nil {
		return nil, apperrors.NotFound("Organization not found")
	}
	return org.QRCodeURL, nil
}

// PrintableQR renders a high resolution PNG for printing.
func (s *Service) PrintableQR(org *models.Organization) ([]byte, error) {
	png, err := GenerateQRCode(SignInURL(s.clientURL, org.ID, org.Name), PrintQRSize)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate QR code", err)
	}
	return png, nil
}
