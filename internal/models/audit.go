package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditAdPublished   = "ad_published"
	AuditAdUpdated     = "ad_updated"
	AuditWizardExpired = "wizard_expired"
)

type AuditLog struct {
	ID          uuid.UUID  `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"` // user/system
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"` // ad/wizard
	EntityID    string     `json:"entity_id,omitempty"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
