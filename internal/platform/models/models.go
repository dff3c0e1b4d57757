package models

import (
	"errors"
	"time"
)

// Guest visit states. StatusExpired is display-only and never stored.
const (
	StatusSignedIn  = "signed-in"
	StatusSignedOut = "signed-out"
	StatusExpired   = "expired"
)

var ErrDuplicateKey = errors.New("duplicate key")

type Organization struct {
	ID                   string    `json:"_id" bson:"_id"`
	Name                 string    `json:"name" bson:"name"`
	Email                string    `json:"email" bson:"email"`
	Password             string    `json:"-" bson:"password"`
	ContactPerson        string    `json:"contactPerson" bson:"contactPerson"`
	Phone                string    `json:"phone" bson:"phone"`
	Address              string    `json:"address" bson:"address"`
	Locations            []string  `json:"locations" bson:"locations"`
	StaffMembers         []string  `json:"staffMembers" bson:"staffMembers"`
	MinGuestVisitMinutes int       `json:"minGuestVisitMinutes" bson:"minGuestVisitMinutes"`
	QRCodeURL            *string   `json:"qrCodeUrl" bson:"qrCodeUrl"`
	IsActive             bool      `json:"isActive" bson:"isActive"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Guest struct {
	ID               string     `json:"_id" bson:"_id"`
	GuestName        string     `json:"guestName" bson:"guestName"`
	GuestPhone       string     `json:"guestPhone" bson:"guestPhone"`
	GuestEmail       *string    `json:"guestEmail" bson:"guestEmail"`
	GuestCode        string     `json:"guestCode" bson:"guestCode"`
	OrganizationID   string     `json:"organizationId" bson:"organizationId"`
	Location         string     `json:"location" bson:"location"`
	PersonToSee      string     `json:"personToSee" bson:"personToSee"`
	Purpose          *string    `json:"purpose,omitempty" bson:"purpose"`
	SignInTime       time.Time  `json:"signInTime" bson:"signInTime"`
	SignOutTime      *time.Time `json:"signOutTime" bson:"signOutTime"`
	ExpectedDuration int        `json:"expectedDuration" bson:"expectedDuration"`
	MinVisitDuration int        `json:"minVisitDuration" bson:"minVisitDuration"`
	IDCardNumber     *string    `json:"idCardNumber" bson:"idCardNumber"`
	IDCardAssigned   bool       `json:"idCardAssigned" bson:"idCardAssigned"`
	Status           string     `json:"status" bson:"status"`
	SecurityNotified bool       `json:"securityNotified" bson:"securityNotified"`
	CreatedAt        time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// GuestFilter narrows guest listings for one organization.
type GuestFilter struct {
	OrganizationID string
	Status         string
	Offset         int
	Limit          int
	// Now is the reference time for the derived expired status.
	Now time.Time
}

// DateRange bounds a sign-in time query. Zero values mean unbounded.
type DateRange struct {
	From  time.Time
	Until time.Time
}

type DashboardStats struct {
	TotalGuests          int64 `json:"totalGuests"`
	ActiveGuests         int64 `json:"activeGuests"`
	TodayGuests          int64 `json:"todayGuests"`
	PendingIDAssignments int64 `json:"pendingIdAssignments"`
}

// StringPtr returns nil for empty strings so optional fields stay unset.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
