package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/history"
	"github.com/spec-kit/lead-service/internal/repository"
	"github.com/spec-kit/lead-service/internal/validation"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// LeadService coordinates the lead lifecycle: validation, the optimistic
// concurrency check, persistence, and the audit trail.
type LeadService struct {
	leads      repository.LeadRepository
	history    repository.LeadHistoryRepository
	dispatcher events.Dispatcher
}

// LeadDependencies bundles collaborators for the lead service.
type LeadDependencies struct {
	LeadRepo    repository.LeadRepository
	HistoryRepo repository.LeadHistoryRepository
	Dispatcher  events.Dispatcher
}

// LeadCreateInput describes lead creation payload.
type LeadCreateInput struct {
	FullName     string
	Phone        string
	Email        *string
	City         domain.City
	PropertyType domain.PropertyType
	Bhk          *domain.Bhk
	Purpose      domain.Purpose
	BudgetMin    *int64
	BudgetMax    *int64
	Timeline     domain.Timeline
	Source       domain.Source
	Status       domain.LeadStatus
	Notes        *string
	Tags         []string
}

// LeadUpdateInput describes a partial update. Nil fields are untouched; for
// the clearable optionals (email, bhk, notes) an explicit empty string
// clears the stored value. ExpectedUpdatedAt is the optional concurrency
// token; when absent the update proceeds unconditionally.
type LeadUpdateInput struct {
	FullName          *string
	Phone             *string
	Email             *string
	City              *domain.City
	PropertyType      *domain.PropertyType
	Bhk               *domain.Bhk
	Purpose           *domain.Purpose
	BudgetMin         *int64
	BudgetMax         *int64
	Timeline          *domain.Timeline
	Source            *domain.Source
	Status            *domain.LeadStatus
	Notes             *string
	Tags              []string
	ExpectedUpdatedAt *time.Time
}

// LeadListInput describes listing filters and pagination.
type LeadListInput struct {
	Search       *string
	City         *domain.City
	PropertyType *domain.PropertyType
	Status       *domain.LeadStatus
	Timeline     *domain.Timeline
	OwnerID      *string
	Page         int
	PageSize     int
}

// LeadListResult carries one page plus the pre-pagination total.
type LeadListResult struct {
	Leads    []domain.Lead
	Total    int
	Page     int
	PageSize int
}

// DefaultPageSize applies when a listing request does not set one.
const DefaultPageSize = 10

// NewLeadService constructs the service.
func NewLeadService(deps LeadDependencies) *LeadService {
	return &LeadService{
		leads:      deps.LeadRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create validates and persists a new lead owned by actor, then records the
// created audit entry.
func (s *LeadService) Create(ctx context.Context, actor string, input LeadCreateInput) (*domain.Lead, error) {
	lead := &domain.Lead{
		OwnerID:      actor,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Email:        normalizeOptional(input.Email),
		City:         input.City,
		PropertyType: input.PropertyType,
		Bhk:          input.Bhk,
		Purpose:      input.Purpose,
		BudgetMin:    input.BudgetMin,
		BudgetMax:    input.BudgetMax,
		Timeline:     input.Timeline,
		Source:       input.Source,
		Status:       input.Status,
		Notes:        normalizeOptional(input.Notes),
		Tags:         normalizeTags(input.Tags),
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}

	if violations := validation.Validate(lead); len(violations) > 0 {
		return nil, validationFailure(violations)
	}

	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	if err := s.history.Create(ctx, history.Created(lead, actor)); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventLeadCreated,
		LeadID: lead.ID,
		Actor:  actor,
		Payload: events.LeadCreatedPayload{
			OwnerID:      lead.OwnerID,
			City:         lead.City,
			PropertyType: lead.PropertyType,
			Source:       lead.Source,
		},
	})
	return lead, nil
}

// Update applies a partial patch to a lead. The merged candidate is
// re-validated in full, the version token (when supplied) is enforced as one
// atomic conditional write at the storage boundary, and an audit entry is
// recorded only when at least one field actually changed.
func (s *LeadService) Update(ctx context.Context, actor, id string, input LeadUpdateInput) (*domain.Lead, error) {
	current, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	candidate := current.Clone()
	touched := applyPatch(candidate, input)

	if violations := validation.Validate(candidate); len(violations) > 0 {
		return nil, validationFailure(violations)
	}

	changes := history.Diff(current, candidate, touched)
	if len(changes) == 0 {
		// Identical resubmission: nothing to write, no audit entry. The
		// token is still enforced so a stale writer never sees success.
		if input.ExpectedUpdatedAt != nil && current.UpdatedAt.After(*input.ExpectedUpdatedAt) {
			return nil, mapStoreError(repository.ErrVersionConflict, id)
		}
		return current, nil
	}

	if err := s.leads.Update(ctx, candidate, input.ExpectedUpdatedAt); err != nil {
		return nil, mapStoreError(err, id)
	}
	if err := s.history.Create(ctx, history.Updated(candidate.ID, actor, changes)); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventLeadUpdated,
		LeadID:  candidate.ID,
		Actor:   actor,
		Payload: events.LeadUpdatedPayload{ChangedFields: changedFields(changes)},
	})
	return candidate, nil
}

// Delete removes a lead and records a deleted audit entry carrying the final
// snapshot.
func (s *LeadService) Delete(ctx context.Context, actor, id string) (*domain.Lead, error) {
	if _, err := s.getOwned(ctx, actor, id); err != nil {
		return nil, err
	}

	removed, err := s.leads.Delete(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	if err := s.history.Create(ctx, history.Deleted(removed, actor)); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventLeadDeleted,
		LeadID: removed.ID,
		Actor:  actor,
		Payload: events.LeadDeletedPayload{
			OwnerID: removed.OwnerID,
			Status:  removed.Status,
		},
	})
	return removed, nil
}

// Get fetches a single lead.
func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	return lead, nil
}

// GetWithHistory fetches a lead plus its audit trail, newest entries first.
func (s *LeadService) GetWithHistory(ctx context.Context, id string, limit, offset int) (*domain.Lead, []domain.LeadHistory, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.history.ListByLead(ctx, id, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return lead, entries, nil
}

// List returns a page of leads ordered by updated_at descending together
// with the total match count.
func (s *LeadService) List(ctx context.Context, input LeadListInput) (*LeadListResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	leads, total, err := s.leads.ListWithFilter(ctx, repository.LeadFilter{
		Search:       input.Search,
		City:         input.City,
		PropertyType: input.PropertyType,
		Status:       input.Status,
		Timeline:     input.Timeline,
		OwnerID:      input.OwnerID,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}
	return &LeadListResult{Leads: leads, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *LeadService) getOwned(ctx context.Context, actor, id string) (*domain.Lead, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	if lead.OwnerID != actor {
		return nil, apperrors.NewForbidden("actor does not own this lead")
	}
	return lead, nil
}

func (s *LeadService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// applyPatch merges input into lead and returns the names of the fields the
// patch touched, in the diff engine's field vocabulary.
func applyPatch(lead *domain.Lead, input LeadUpdateInput) []string {
	var touched []string

	if input.FullName != nil {
		lead.FullName = strings.TrimSpace(*input.FullName)
		touched = append(touched, "fullName")
	}
	if input.Phone != nil {
		lead.Phone = strings.TrimSpace(*input.Phone)
		touched = append(touched, "phone")
	}
	if input.Email != nil {
		lead.Email = normalizeOptional(input.Email)
		touched = append(touched, "email")
	}
	if input.City != nil {
		lead.City = *input.City
		touched = append(touched, "city")
	}
	if input.PropertyType != nil {
		lead.PropertyType = *input.PropertyType
		touched = append(touched, "propertyType")
	}
	if input.Bhk != nil {
		if *input.Bhk == "" {
			lead.Bhk = nil
		} else {
			bhk := *input.Bhk
			lead.Bhk = &bhk
		}
		touched = append(touched, "bhk")
	}
	if input.Purpose != nil {
		lead.Purpose = *input.Purpose
		touched = append(touched, "purpose")
	}
	if input.BudgetMin != nil {
		min := *input.BudgetMin
		lead.BudgetMin = &min
		touched = append(touched, "budgetMin")
	}
	if input.BudgetMax != nil {
		max := *input.BudgetMax
		lead.BudgetMax = &max
		touched = append(touched, "budgetMax")
	}
	if input.Timeline != nil {
		lead.Timeline = *input.Timeline
		touched = append(touched, "timeline")
	}
	if input.Source != nil {
		lead.Source = *input.Source
		touched = append(touched, "source")
	}
	if input.Status != nil {
		lead.Status = *input.Status
		touched = append(touched, "status")
	}
	if input.Notes != nil {
		lead.Notes = normalizeOptional(input.Notes)
		touched = append(touched, "notes")
	}
	if input.Tags != nil {
		lead.Tags = normalizeTags(input.Tags)
		touched = append(touched, "tags")
	}
	return touched
}

// validationFailure maps violations to the API error taxonomy. A single
// cross-field violation surfaces as its specialized error; everything else
// surfaces as one VALIDATION_FAILED carrying all violations.
func validationFailure(violations []validation.FieldError) error {
	details := map[string]any{"fields": violations}
	if len(violations) == 1 {
		switch violations[0].Code {
		case validation.CodeBudgetRange:
			return apperrors.NewBudgetRangeError(details)
		case validation.CodeBhkRequired:
			return apperrors.NewBhkRequiredError(details)
		}
	}
	return apperrors.NewValidationError("lead validation failed", details)
}

func mapStoreError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return apperrors.NewNotFound("lead", map[string]any{"id": id})
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("lead was modified by another writer; refresh and retry", map[string]any{"id": id})
	default:
		return err
	}
}

func normalizeOptional(p *string) *string {
	if p == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeTags trims, drops empties and duplicates, and preserves insertion
// order for display.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func changedFields(changes map[string]domain.FieldChange) []string {
	fields := make([]string, 0, len(changes))
	for _, field := range history.DiffableFields {
		if _, ok := changes[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}
