// Package ingest accepts batches of logged training sets, persists the valid
// ones, and runs record detection over what was persisted.
package ingest

import (
	"github.com/builtbymaxim/pulselift/internal/models"
	"github.com/google/uuid"
)

// Outcome status values for one submitted set.
const (
	StatusSaved    = "saved"
	StatusRejected = "rejected"
)

// SetOutcome reports what happened to one entry of a batch, by its position
// in the submitted payload, so the client can show which sets saved.
type SetOutcome struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Result holds the outcome of one ingest call.
type Result struct {
	SessionID    uuid.UUID                  `json:"session_id"`
	SetsReceived int                        `json:"sets_received"`
	SetsInserted int64                      `json:"sets_inserted"`
	SetsSkipped  int64                      `json:"sets_skipped"`
	SetsRejected int                        `json:"sets_rejected"`
	Outcomes     []SetOutcome               `json:"outcomes"`
	Sets         []models.LoggedSetRow      `json:"sets"`
	Records      []models.RecordImprovement `json:"records"`
}
