package domain

import "time"

// LeadStatus enumerates pipeline states for leads.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusLost      LeadStatus = "Lost"
	LeadStatusWon       LeadStatus = "Won"
)

// City enumerates serviced locations.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityKharar     City = "Kharar"
	CityOther      City = "Other"
)

// PropertyType enumerates the kind of property a lead is interested in.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypePlot      PropertyType = "Plot"
	PropertyTypeOffice    PropertyType = "Office"
	PropertyTypeRetail    PropertyType = "Retail"
)

// IsResidential reports whether the property type requires a BHK category.
func (p PropertyType) IsResidential() bool {
	return p == PropertyTypeApartment || p == PropertyTypeVilla
}

// Bhk enumerates bedroom-count categories for residential units.
type Bhk string

const (
	BhkStudio Bhk = "Studio"
	BhkOne    Bhk = "ONE"
	BhkTwo    Bhk = "TWO"
	BhkThree  Bhk = "THREE"
	BhkFour   Bhk = "FOUR"
)

// Purpose enumerates the intent behind an enquiry.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

// Timeline enumerates how soon a lead intends to transact.
type Timeline string

const (
	TimelineZeroToThree Timeline = "0-3m"
	TimelineThreeToSix  Timeline = "3-6m"
	TimelineSixPlus     Timeline = ">6m"
	TimelineExploring   Timeline = "Exploring"
)

// Source enumerates acquisition channels.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

// Lead is the aggregate for prospective buyer records. UpdatedAt doubles as
// the optimistic-concurrency token and strictly increases on every accepted
// mutation of the same id.
type Lead struct {
	ID           string
	OwnerID      string
	FullName     string
	Phone        string
	Email        *string
	City         City
	PropertyType PropertyType
	Bhk          *Bhk
	Purpose      Purpose
	BudgetMin    *int64
	BudgetMax    *int64
	Timeline     Timeline
	Source       Source
	Status       LeadStatus
	Notes        *string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy safe to mutate independently.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	out := *l
	out.Email = clonePtr(l.Email)
	out.Bhk = clonePtr(l.Bhk)
	out.BudgetMin = clonePtr(l.BudgetMin)
	out.BudgetMax = clonePtr(l.BudgetMax)
	out.Notes = clonePtr(l.Notes)
	if l.Tags != nil {
		out.Tags = append([]string(nil), l.Tags...)
	}
	return &out
}

// Snapshot renders the lead as a JSON-ready map, used for created and
// deleted audit entries.
func (l *Lead) Snapshot() map[string]any {
	snap := map[string]any{
		"id":           l.ID,
		"ownerId":      l.OwnerID,
		"fullName":     l.FullName,
		"phone":        l.Phone,
		"email":        ptrValue(l.Email),
		"city":         l.City,
		"propertyType": l.PropertyType,
		"bhk":          ptrValue(l.Bhk),
		"purpose":      l.Purpose,
		"budgetMin":    ptrValue(l.BudgetMin),
		"budgetMax":    ptrValue(l.BudgetMax),
		"timeline":     l.Timeline,
		"source":       l.Source,
		"status":       l.Status,
		"notes":        ptrValue(l.Notes),
		"tags":         append([]string{}, l.Tags...),
		"createdAt":    l.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":    l.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	return snap
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrValue[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// ValidCities lists accepted city values.
var ValidCities = []City{CityChandigarh, CityMohali, CityZirakpur, CityPanchkula, CityKharar, CityOther}

// ValidPropertyTypes lists accepted property types.
var ValidPropertyTypes = []PropertyType{PropertyTypeApartment, PropertyTypeVilla, PropertyTypePlot, PropertyTypeOffice, PropertyTypeRetail}

// ValidBhks lists accepted BHK categories.
var ValidBhks = []Bhk{BhkStudio, BhkOne, BhkTwo, BhkThree, BhkFour}

// ValidPurposes lists accepted purposes.
var ValidPurposes = []Purpose{PurposeBuy, PurposeRent}

// ValidTimelines lists accepted timelines.
var ValidTimelines = []Timeline{TimelineZeroToThree, TimelineThreeToSix, TimelineSixPlus, TimelineExploring}

// ValidSources lists accepted sources.
var ValidSources = []Source{SourceWebsite, SourceReferral, SourceWalkIn, SourceCall, SourceOther}

// ValidStatuses lists accepted pipeline statuses.
var ValidStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost, LeadStatusWon}
