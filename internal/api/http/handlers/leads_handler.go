package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lead-service/internal/api/dto"
	"github.com/spec-kit/lead-service/internal/domain"
	"github.com/spec-kit/lead-service/internal/service"
	apperrors "github.com/spec-kit/lead-service/pkg/util"
)

// ActorLocalKey is the fiber locals key under which the actor middleware
// stores the acting principal's id.
const ActorLocalKey = "actor_id"

// LeadsHandler manages lead endpoints.
type LeadsHandler struct {
	service *service.LeadService
}

// NewLeadsHandler constructs handler.
func NewLeadsHandler(leadService *service.LeadService) *LeadsHandler {
	return &LeadsHandler{service: leadService}
}

// CreateLead POST /leads.
func (h *LeadsHandler) CreateLead(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.Create(c.UserContext(), actor, service.LeadCreateInput{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Email:        req.Email,
		City:         req.City,
		PropertyType: req.PropertyType,
		Bhk:          req.Bhk,
		Purpose:      req.Purpose,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
		Timeline:     req.Timeline,
		Source:       req.Source,
		Status:       req.Status,
		Notes:        req.Notes,
		Tags:         req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": leadResponse(lead)})
}

// ListLeads GET /leads.
func (h *LeadsHandler) ListLeads(c *fiber.Ctx) error {
	input := parseLeadListQuery(c)
	result, err := h.service.List(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.LeadResponse, 0, len(result.Leads))
	for i := range result.Leads {
		items = append(items, leadResponse(&result.Leads[i]))
	}
	return c.JSON(dto.LeadListResponse{
		Data: items,
		Meta: dto.PageMeta{
			Page:     result.Page,
			PageSize: result.PageSize,
			Total:    result.Total,
		},
	})
}

// GetLead GET /leads/:id.
func (h *LeadsHandler) GetLead(c *fiber.Ctx) error {
	lead, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// GetLeadHistory GET /leads/:id/history.
func (h *LeadsHandler) GetLeadHistory(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 100)
	offset := parseInt(c.Query("offset"), 0)
	lead, entries, err := h.service.GetWithHistory(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	historyItems := make([]dto.LeadHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		historyItems = append(historyItems, dto.LeadHistoryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			ChangedBy: entry.ChangedBy,
			Changes:   entry.Changes,
			Snapshot:  entry.Snapshot,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.LeadWithHistoryResponse{
		Lead:    leadResponse(lead),
		History: historyItems,
	}})
}

// UpdateLead PATCH /leads/:id.
func (h *LeadsHandler) UpdateLead(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	lead, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.LeadUpdateInput{
		FullName:          req.FullName,
		Phone:             req.Phone,
		Email:             req.Email,
		City:              req.City,
		PropertyType:      req.PropertyType,
		Bhk:               req.Bhk,
		Purpose:           req.Purpose,
		BudgetMin:         req.BudgetMin,
		BudgetMax:         req.BudgetMax,
		Timeline:          req.Timeline,
		Source:            req.Source,
		Status:            req.Status,
		Notes:             req.Notes,
		Tags:              req.Tags,
		ExpectedUpdatedAt: req.ExpectedUpdatedAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(lead)})
}

// DeleteLead DELETE /leads/:id.
func (h *LeadsHandler) DeleteLead(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	removed, err := h.service.Delete(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": leadResponse(removed)})
}

func actorFromContext(c *fiber.Ctx) (string, error) {
	actor, _ := c.Locals(ActorLocalKey).(string)
	if actor == "" {
		return "", apperrors.NewUnauthorized("actor identity required")
	}
	return actor, nil
}

func parseLeadListQuery(c *fiber.Ctx) service.LeadListInput {
	input := service.LeadListInput{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), service.DefaultPageSize),
	}
	if q := c.Query("q"); q != "" {
		input.Search = &q
	}
	if v := c.Query("city"); v != "" {
		city := domain.City(v)
		input.City = &city
	}
	if v := c.Query("property_type"); v != "" {
		pt := domain.PropertyType(v)
		input.PropertyType = &pt
	}
	if v := c.Query("status"); v != "" {
		status := domain.LeadStatus(v)
		input.Status = &status
	}
	if v := c.Query("timeline"); v != "" {
		timeline := domain.Timeline(v)
		input.Timeline = &timeline
	}
	if v := c.Query("owner_id"); v != "" {
		input.OwnerID = &v
	}
	return input
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func leadResponse(lead *domain.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:           lead.ID,
		OwnerID:      lead.OwnerID,
		FullName:     lead.FullName,
		Phone:        lead.Phone,
		Email:        lead.Email,
		City:         lead.City,
		PropertyType: lead.PropertyType,
		Bhk:          lead.Bhk,
		Purpose:      lead.Purpose,
		BudgetMin:    lead.BudgetMin,
		BudgetMax:    lead.BudgetMax,
		Timeline:     lead.Timeline,
		Source:       lead.Source,
		Status:       lead.Status,
		Notes:        lead.Notes,
		Tags:         lead.Tags,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
}
