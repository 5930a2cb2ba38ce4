package repository

import "errors"

// Sentinel errors shared by all store implementations. The service layer
// maps them onto the API error taxonomy.
var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrVersionConflict = errors.New("lead was modified by another writer")
)
