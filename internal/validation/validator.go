package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/lead-service/internal/domain"
)

// Violation codes used by the API error mapping.
const (
	CodeRequired      = "required"
	CodeInvalid       = "invalid"
	CodeBudgetRange   = "budget_range"
	CodeBhkRequired   = "bhk_required"
	CodeBhkNotAllowed = "bhk_not_allowed"
)

// Fixed messages for the cross-field rules, kept stable for API consumers.
const (
	MsgBudgetRange   = "budgetMin cannot exceed budgetMax"
	MsgBhkRequired   = "bhk is required for Apartment and Villa property types"
	MsgBhkNotAllowed = "bhk must be empty for non-residential property types"
)

// FieldError describes one violation found on a candidate lead.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a candidate lead against field-shape rules and then the
// cross-field rules, in a fixed order so the violation list is deterministic.
// It returns every violation found, not just the first.
func Validate(lead *domain.Lead) []FieldError {
	var violations []FieldError

	if strings.TrimSpace(lead.OwnerID) == "" {
		violations = append(violations, FieldError{"ownerId", CodeRequired, "is required"})
	}

	name := strings.TrimSpace(lead.FullName)
	if name == "" {
		violations = append(violations, FieldError{"fullName", CodeRequired, "is required"})
	} else if utf8.RuneCountInString(name) < 2 {
		violations = append(violations, FieldError{"fullName", CodeInvalid, "must have at least 2 characters"})
	}

	if strings.TrimSpace(lead.Phone) == "" {
		violations = append(violations, FieldError{"phone", CodeRequired, "is required"})
	} else if !isValidPhone(lead.Phone) {
		violations = append(violations, FieldError{"phone", CodeInvalid, "must be 10 to 15 digits"})
	}

	if lead.Email != nil && *lead.Email != "" {
		if _, err := mail.ParseAddress(*lead.Email); err != nil {
			violations = append(violations, FieldError{"email", CodeInvalid, "is not a valid email address"})
		}
	}

	if lead.City == "" {
		violations = append(violations, FieldError{"city", CodeRequired, "is required"})
	} else if !contains(domain.ValidCities, lead.City) {
		violations = append(violations, FieldError{"city", CodeInvalid, enumMessage(domain.ValidCities)})
	}

	if lead.PropertyType == "" {
		violations = append(violations, FieldError{"propertyType", CodeRequired, "is required"})
	} else if !contains(domain.ValidPropertyTypes, lead.PropertyType) {
		violations = append(violations, FieldError{"propertyType", CodeInvalid, enumMessage(domain.ValidPropertyTypes)})
	}

	if lead.Bhk != nil && !contains(domain.ValidBhks, *lead.Bhk) {
		violations = append(violations, FieldError{"bhk", CodeInvalid, enumMessage(domain.ValidBhks)})
	}

	if lead.Purpose == "" {
		violations = append(violations, FieldError{"purpose", CodeRequired, "is required"})
	} else if !contains(domain.ValidPurposes, lead.Purpose) {
		violations = append(violations, FieldError{"purpose", CodeInvalid, enumMessage(domain.ValidPurposes)})
	}

	if lead.BudgetMin != nil && *lead.BudgetMin < 0 {
		violations = append(violations, FieldError{"budgetMin", CodeInvalid, "must not be negative"})
	}
	if lead.BudgetMax != nil && *lead.BudgetMax < 0 {
		violations = append(violations, FieldError{"budgetMax", CodeInvalid, "must not be negative"})
	}

	if lead.Timeline == "" {
		violations = append(violations, FieldError{"timeline", CodeRequired, "is required"})
	} else if !contains(domain.ValidTimelines, lead.Timeline) {
		violations = append(violations, FieldError{"timeline", CodeInvalid, enumMessage(domain.ValidTimelines)})
	}

	if lead.Source == "" {
		violations = append(violations, FieldError{"source", CodeRequired, "is required"})
	} else if !contains(domain.ValidSources, lead.Source) {
		violations = append(violations, FieldError{"source", CodeInvalid, enumMessage(domain.ValidSources)})
	}

	if lead.Status != "" && !contains(domain.ValidStatuses, lead.Status) {
		violations = append(violations, FieldError{"status", CodeInvalid, enumMessage(domain.ValidStatuses)})
	}

	// Cross-field rules run after the shape checks: budget range first,
	// then the BHK rule.
	if lead.BudgetMin != nil && lead.BudgetMax != nil && *lead.BudgetMin > *lead.BudgetMax {
		violations = append(violations, FieldError{"budgetMin", CodeBudgetRange, MsgBudgetRange})
	}

	if lead.PropertyType.IsResidential() {
		if lead.Bhk == nil || *lead.Bhk == "" {
			violations = append(violations, FieldError{"bhk", CodeBhkRequired, MsgBhkRequired})
		}
	} else if lead.PropertyType != "" && lead.Bhk != nil && *lead.Bhk != "" {
		// Providing a BHK on a non-residential type is rejected outright
		// rather than silently dropped.
		violations = append(violations, FieldError{"bhk", CodeBhkNotAllowed, MsgBhkNotAllowed})
	}

	return violations
}

func isValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
		digits++
	}
	return digits >= 10 && digits <= 15
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func enumMessage[T ~string](values []T) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, string(v))
	}
	return "must be one of " + strings.Join(parts, ", ")
}
