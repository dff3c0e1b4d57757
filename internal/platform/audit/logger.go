// Package audit records operator actions on guests and organization settings.
package audit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apiContext "visitr/internal/api/context"
	"visitr/internal/api/middleware"
)

const (
	ActionGuestSignOut   = "guest.sign_out"
	ActionGuestAssignID  = "guest.assign_id"
	ActionGuestExtend    = "guest.extend"
	ActionGuestExport    = "guest.export"
	ActionProfileUpdate  = "organization.update_profile"
	ActionQRCodeGenerate = "organization.generate_qr"
)

type Entry struct {
	ID             string                 `json:"id"`
	OrganizationID string                 `json:"organization_id"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	IPAddress      string                 `json:"ip_address"`
	UserAgent      string                 `json:"user_agent"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewEntry builds an entry for the organization authenticated on r.
func NewEntry(r *http.Request, action, resourceType, resourceID string, metadata map[string]interface{}) *Entry {
	e := &Entry{
		ID:           "audit_" + uuid.NewString(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IPAddress:    middleware.ClientIP(r),
		UserAgent:    r.UserAgent(),
		CreatedAt:    time.Now(),
	}
	if org := apiContext.OrganizationFrom(r.Context()); org != nil {
		e.OrganizationID = org.ID
	}
	return e
}

func (e *Entry) write(logger zerolog.Logger) {
	logger.Info().
		Str("audit_id", e.ID).
		Str("organization_id", e.OrganizationID).
		Str("action", e.Action).
		Str("resource_type", e.ResourceType).
		Str("resource_id", e.ResourceID).
		Fields(e.Metadata).
		Str("ip_address", e.IPAddress).
		Str("user_agent", e.UserAgent).
		Time("created_at", e.CreatedAt).
		Msg("audit")
}

// Log writes an audit entry to the global logger.
func Log(r *http.Request, action, resourceType, resourceID string, metadata map[string]interface{}) {
	NewEntry(r, action, resourceType, resourceID, metadata).write(log.Logger)
}
