package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CreateLeadRequest payload.
type CreateLeadRequest struct {
	FullName     string              `json:"full_name"`
	Phone        string              `json:"phone"`
	Email        *string             `json:"email"`
	City         domain.City         `json:"city"`
	PropertyType domain.PropertyType `json:"property_type"`
	Bhk          *domain.Bhk         `json:"bhk"`
	Purpose      domain.Purpose      `json:"purpose"`
	BudgetMin    *int64              `json:"budget_min"`
	BudgetMax    *int64              `json:"budget_max"`
	Timeline     domain.Timeline     `json:"timeline"`
	Source       domain.Source       `json:"source"`
	Status       domain.LeadStatus   `json:"status"`
	Notes        *string             `json:"notes"`
	Tags         []string            `json:"tags"`
}

// UpdateLeadRequest payload. Absent fields are untouched; empty strings
// clear the clearable optionals. ExpectedUpdatedAt is the optimistic
// concurrency token previously returned as updated_at.
type UpdateLeadRequest struct {
	FullName          *string              `json:"full_name"`
	Phone             *string              `json:"phone"`
	Email             *string              `json:"email"`
	City              *domain.City         `json:"city"`
	PropertyType      *domain.PropertyType `json:"property_type"`
	Bhk               *domain.Bhk          `json:"bhk"`
	Purpose           *domain.Purpose      `json:"purpose"`
	BudgetMin         *int64               `json:"budget_min"`
	BudgetMax         *int64               `json:"budget_max"`
	Timeline          *domain.Timeline     `json:"timeline"`
	Source            *domain.Source       `json:"source"`
	Status            *domain.LeadStatus   `json:"status"`
	Notes             *string              `json:"notes"`
	Tags              []string             `json:"tags"`
	ExpectedUpdatedAt *time.Time           `json:"expected_updated_at"`
}

// LeadResponse represents a lead on the wire.
type LeadResponse struct {
	ID           string              `json:"id"`
	OwnerID      string              `json:"owner_id"`
	FullName     string              `json:"full_name"`
	Phone        string              `json:"phone"`
	Email        *string             `json:"email"`
	City         domain.City         `json:"city"`
	PropertyType domain.PropertyType `json:"property_type"`
	Bhk          *domain.Bhk         `json:"bhk"`
	Purpose      domain.Purpose      `json:"purpose"`
	BudgetMin    *int64              `json:"budget_min"`
	BudgetMax    *int64              `json:"budget_max"`
	Timeline     domain.Timeline     `json:"timeline"`
	Source       domain.Source       `json:"source"`
	Status       domain.LeadStatus   `json:"status"`
	Notes        *string             `json:"notes"`
	Tags         []string            `json:"tags"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// PageMeta carries offset pagination metadata.
type PageMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// LeadListResponse wraps a page of leads.
type LeadListResponse struct {
	Data []LeadResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

// LeadHistoryResponse represents one audit entry.
type LeadHistoryResponse struct {
	ID        string                        `json:"id"`
	Action    domain.ChangeAction           `json:"action"`
	ChangedBy string                        `json:"changed_by"`
	Changes   map[string]domain.FieldChange `json:"changes,omitempty"`
	Snapshot  map[string]any                `json:"snapshot,omitempty"`
	CreatedAt time.Time                     `json:"created_at"`
}

// LeadWithHistoryResponse bundles a lead and its audit trail.
type LeadWithHistoryResponse struct {
	Lead    LeadResponse          `json:"lead"`
	History []LeadHistoryResponse `json:"history"`
}
