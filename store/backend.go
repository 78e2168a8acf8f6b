package store

import (
	"context"
	"time"

	"github.com/voicelane/frontdesk/core"
)

// SessionData is the full read-back of one session, used by offline
// reporting.
type SessionData struct {
	Session     core.SessionRecord     `json:"session"`
	LatestState *core.StateSnapshot    `json:"latest_state,omitempty"`
	Transcripts []core.TranscriptEntry `json:"transcripts"`
	Metrics     []core.Metric          `json:"metrics"`
	Transfers   []core.AgentTransfer   `json:"agent_transfers"`
}

// Backend is the storage engine behind the write-behind layer. Implementations
// own the schema and must make Init idempotent (safe against an already
// initialized store, including the treatment catalog seed).
//
// Batch inserts receive the items of one drained queue and must write them as
// a single grouped operation so enqueue order survives into the store.
type Backend interface {
	// Init establishes the schema and seeds the treatment catalog.
	Init(ctx context.Context) error

	// Session lifecycle (immediate writes).
	CreateSession(ctx context.Context, rec core.SessionRecord) error
	EndSession(ctx context.Context, sessionID string, endTime time.Time, durationSeconds int) error

	// Batched writes, one grouped multi-row operation per call.
	InsertTranscripts(ctx context.Context, batch []core.TranscriptEntry) error
	InsertMetrics(ctx context.Context, batch []core.Metric) error
	UpsertStateSnapshots(ctx context.Context, batch []core.StateSnapshot) error
	InsertTransfers(ctx context.Context, batch []core.AgentTransfer) error

	// Read-back for offline reporting. Returns core.ErrNotFound when the
	// session does not exist.
	SessionData(ctx context.Context, sessionID string) (*SessionData, error)

	// Patient master data. FindPatient returns core.ErrNotFound on a miss and
	// bumps the patient's last-visit timestamp on a hit.
	FindPatient(ctx context.Context, phone, dateOfBirth string) (*core.Patient, error)
	CreatePatient(ctx context.Context, p core.Patient) error
	AppointmentHistory(ctx context.Context, patientID string, limit int) ([]core.Appointment, error)
	CreateAppointment(ctx context.Context, a core.Appointment) error

	// Treatment catalog lookups. Name and category filters are optional; an
	// empty query lists the whole catalog.
	Treatments(ctx context.Context, name, category string) ([]core.Treatment, error)
	TreatmentPricing(ctx context.Context, treatmentID string) (*core.Treatment, error)
	SearchTreatments(ctx context.Context, keyword string) ([]core.Treatment, error)

	Close() error
}
