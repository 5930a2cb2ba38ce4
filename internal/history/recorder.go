package history

import (
	"reflect"

	"github.com/spec-kit/lead-service/internal/domain"
)

// DiffableFields is the fixed, schema-derived list of fields the diff engine
// operates over. System fields (id, ownerId, createdAt, updatedAt) are never
// diffed so they can never leak into an audit entry.
var DiffableFields = []string{
	"fullName",
	"phone",
	"email",
	"city",
	"propertyType",
	"bhk",
	"purpose",
	"budgetMin",
	"budgetMax",
	"timeline",
	"source",
	"status",
	"notes",
	"tags",
}

// Created builds the audit entry for a freshly persisted lead.
func Created(lead *domain.Lead, actor string) *domain.LeadHistory {
	return &domain.LeadHistory{
		LeadID:    lead.ID,
		ChangedBy: actor,
		Action:    domain.ActionCreated,
		Snapshot:  lead.Snapshot(),
	}
}

// Deleted builds the audit entry carrying the final snapshot of a removed lead.
func Deleted(lead *domain.Lead, actor string) *domain.LeadHistory {
	return &domain.LeadHistory{
		LeadID:    lead.ID,
		ChangedBy: actor,
		Action:    domain.ActionDeleted,
		Snapshot:  lead.Snapshot(),
	}
}

// Updated builds the audit entry for an accepted update. Callers must only
// invoke it with a non-empty change map; no-op updates emit no entry.
func Updated(leadID, actor string, changes map[string]domain.FieldChange) *domain.LeadHistory {
	return &domain.LeadHistory{
		LeadID:    leadID,
		ChangedBy: actor,
		Action:    domain.ActionUpdated,
		Changes:   changes,
	}
}

// Diff compares previous and next over the touched fields only and returns
// the map of fields whose values actually differ. Fields outside the patch
// are never inspected, and an identical resubmission yields an empty map.
func Diff(previous, next *domain.Lead, touched []string) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)
	for _, field := range touched {
		if !diffable(field) {
			continue
		}
		oldVal := fieldValue(previous, field)
		newVal := fieldValue(next, field)
		if !reflect.DeepEqual(oldVal, newVal) {
			changes[field] = domain.FieldChange{Old: oldVal, New: newVal}
		}
	}
	return changes
}

func diffable(field string) bool {
	for _, candidate := range DiffableFields {
		if candidate == field {
			return true
		}
	}
	return false
}

func fieldValue(lead *domain.Lead, field string) any {
	switch field {
	case "fullName":
		return lead.FullName
	case "phone":
		return lead.Phone
	case "email":
		return deref(lead.Email)
	case "city":
		return string(lead.City)
	case "propertyType":
		return string(lead.PropertyType)
	case "bhk":
		if lead.Bhk == nil {
			return nil
		}
		return string(*lead.Bhk)
	case "purpose":
		return string(lead.Purpose)
	case "budgetMin":
		return derefInt(lead.BudgetMin)
	case "budgetMax":
		return derefInt(lead.BudgetMax)
	case "timeline":
		return string(lead.Timeline)
	case "source":
		return string(lead.Source)
	case "status":
		return string(lead.Status)
	case "notes":
		return deref(lead.Notes)
	case "tags":
		return append([]string{}, lead.Tags...)
	default:
		return nil
	}
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
