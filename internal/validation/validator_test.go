package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lead-service/internal/domain"
)

func validLead() *domain.Lead {
	bhk := domain.BhkTwo
	return &domain.Lead{
		OwnerID:      "u1",
		FullName:     "A B",
		Phone:        "1234567890",
		City:         domain.CityMohali,
		PropertyType: domain.PropertyTypeApartment,
		Bhk:          &bhk,
		Purpose:      domain.PurposeBuy,
		Timeline:     domain.TimelineExploring,
		Source:       domain.SourceWebsite,
		Status:       domain.LeadStatusNew,
	}
}

func TestValidate_AcceptsValidLead(t *testing.T) {
	assert.Empty(t, Validate(validLead()))
}

func TestValidate_RequiredFields(t *testing.T) {
	violations := Validate(&domain.Lead{})

	fields := make(map[string]string)
	for _, v := range violations {
		fields[v.Field] = v.Code
	}
	for _, field := range []string{"ownerId", "fullName", "phone", "city", "propertyType", "purpose", "timeline", "source"} {
		assert.Equal(t, CodeRequired, fields[field], "expected required violation for %s", field)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	lead := validLead()
	lead.FullName = "A"
	lead.Phone = "123"

	violations := Validate(lead)
	require.Len(t, violations, 2)
	assert.Equal(t, "fullName", violations[0].Field)
	assert.Equal(t, "phone", violations[1].Field)
}

func TestValidate_FullNameLengthCountsRunes(t *testing.T) {
	lead := validLead()
	lead.FullName = "é"

	violations := Validate(lead)
	require.Len(t, violations, 1)
	assert.Equal(t, "fullName", violations[0].Field)
	assert.Equal(t, CodeInvalid, violations[0].Code)

	lead.FullName = "éé"
	assert.Empty(t, Validate(lead))
}

func TestValidate_PhoneShape(t *testing.T) {
	cases := map[string]bool{
		"1234567890":       true,
		"123456789012345":  true,
		"123456789":        false,
		"1234567890123456": false,
		"12345abcde":       false,
		"+911234567890":    false,
	}
	for phone, ok := range cases {
		lead := validLead()
		lead.Phone = phone
		violations := Validate(lead)
		if ok {
			assert.Empty(t, violations, "phone %q should be valid", phone)
		} else {
			assert.NotEmpty(t, violations, "phone %q should be rejected", phone)
		}
	}
}

func TestValidate_EmailOptionalButChecked(t *testing.T) {
	lead := validLead()
	email := "not-an-email"
	lead.Email = &email
	violations := Validate(lead)
	require.Len(t, violations, 1)
	assert.Equal(t, "email", violations[0].Field)

	email = "person@example.com"
	assert.Empty(t, Validate(lead))
}

func TestValidate_BudgetRange(t *testing.T) {
	lead := validLead()
	min := int64(900000)
	max := int64(500000)
	lead.BudgetMin = &min
	lead.BudgetMax = &max

	violations := Validate(lead)
	require.Len(t, violations, 1)
	assert.Equal(t, CodeBudgetRange, violations[0].Code)
	assert.Equal(t, MsgBudgetRange, violations[0].Message)
}

func TestValidate_BudgetSingleBoundUnconstrained(t *testing.T) {
	lead := validLead()
	min := int64(900000)
	lead.BudgetMin = &min
	assert.Empty(t, Validate(lead))
}

func TestValidate_NegativeBudgetRejected(t *testing.T) {
	lead := validLead()
	min := int64(-1)
	lead.BudgetMin = &min
	violations := Validate(lead)
	require.Len(t, violations, 1)
	assert.Equal(t, "budgetMin", violations[0].Field)
}

func TestValidate_BhkRequiredForResidential(t *testing.T) {
	for _, pt := range []domain.PropertyType{domain.PropertyTypeApartment, domain.PropertyTypeVilla} {
		lead := validLead()
		lead.PropertyType = pt
		lead.Bhk = nil

		violations := Validate(lead)
		require.Len(t, violations, 1, "property type %s", pt)
		assert.Equal(t, CodeBhkRequired, violations[0].Code)
		assert.Equal(t, MsgBhkRequired, violations[0].Message)
	}
}

func TestValidate_BhkRejectedForNonResidential(t *testing.T) {
	for _, pt := range []domain.PropertyType{domain.PropertyTypePlot, domain.PropertyTypeOffice, domain.PropertyTypeRetail} {
		lead := validLead()
		lead.PropertyType = pt

		violations := Validate(lead)
		require.Len(t, violations, 1, "property type %s", pt)
		assert.Equal(t, CodeBhkNotAllowed, violations[0].Code)

		lead.Bhk = nil
		assert.Empty(t, Validate(lead), "property type %s without bhk", pt)
	}
}

func TestValidate_CrossFieldRuleOrder(t *testing.T) {
	lead := validLead()
	lead.Bhk = nil
	min := int64(10)
	max := int64(5)
	lead.BudgetMin = &min
	lead.BudgetMax = &max

	violations := Validate(lead)
	require.Len(t, violations, 2)
	assert.Equal(t, CodeBudgetRange, violations[0].Code)
	assert.Equal(t, CodeBhkRequired, violations[1].Code)
}

func TestValidate_EnumMembership(t *testing.T) {
	lead := validLead()
	lead.City = "Atlantis"
	lead.Status = "Unknown"

	violations := Validate(lead)
	require.Len(t, violations, 2)
	assert.Equal(t, "city", violations[0].Field)
	assert.Equal(t, "status", violations[1].Field)
}
