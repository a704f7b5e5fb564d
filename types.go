package quill

import (
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Document is the canonical stored shape of a record. Localized fields
// hold a map from locale code to value; everything else holds the value
// directly. Exactly one row per ID exists in the primary table.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Status     Status         `json:"_status,omitempty"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Event is the payload published on the signal channel when a document
// changes.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"documentID"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	EventDocumentCreated    = "document.created"
	EventDocumentDuplicated = "document.duplicated"
)
