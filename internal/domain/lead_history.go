package domain

import "time"

// ChangeAction tags what kind of mutation a history entry records.
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// FieldChange captures the before/after values of one field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// LeadHistory is an immutable, append-only audit trail entry. Created and
// deleted entries carry a full snapshot; updated entries carry a map of
// changed field name to old/new values.
type LeadHistory struct {
	ID        string
	LeadID    string
	ChangedBy string
	Action    ChangeAction
	Changes   map[string]FieldChange
	Snapshot  map[string]any
	CreatedAt time.Time
}
