package events

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated EventType = "lead_created"
	EventLeadUpdated EventType = "lead_updated"
	EventLeadDeleted EventType = "lead_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LeadID    string      `json:"lead_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	OwnerID      string              `json:"owner_id"`
	City         domain.City         `json:"city"`
	PropertyType domain.PropertyType `json:"property_type"`
	Source       domain.Source       `json:"source"`
}

// LeadUpdatedPayload payload.
type LeadUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// LeadDeletedPayload payload.
type LeadDeletedPayload struct {
	OwnerID string            `json:"owner_id"`
	Status  domain.LeadStatus `json:"status"`
}
