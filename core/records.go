package core

import "time"

// SessionStatus tracks the lifecycle of a live interaction record.
type SessionStatus string

const (
	// SessionActive marks a session that is still in progress.
	SessionActive SessionStatus = "active"
	// SessionCompleted marks a session that ended normally.
	SessionCompleted SessionStatus = "completed"
)

// Transcript roles. RoleFunctionCall records tool invocations made on behalf
// of the caller so they survive into the durable transcript.
const (
	RoleUser         = "user"
	RoleAssistant    = "assistant"
	RoleSystem       = "system"
	RoleFunctionCall = "function_call"
)

// SessionRecord is the durable record of one end-to-end interaction, created
// on connect and closed out once on disconnect. EndTime and DurationSeconds
// stay nil until the session completes.
type SessionRecord struct {
	ID              string        `json:"id"`
	RoomID          string        `json:"room_id"`
	ParticipantID   string        `json:"participant_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	DurationSeconds *int          `json:"duration_seconds,omitempty"`
	Status          SessionStatus `json:"status"`
}

// TranscriptEntry is one utterance or system event in a session's transcript.
// Entries are append-only; ordering is by timestamp and insertion order
// within a flush batch.
type TranscriptEntry struct {
	SessionID string         `json:"session_id"`
	AgentName string         `json:"agent_name"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	MessageID string         `json:"message_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Metric is one numeric observation tied to a session. Metrics pass through a
// sampling filter before they are queued, so not every observation is
// guaranteed to be persisted.
type Metric struct {
	SessionID string         `json:"session_id"`
	Type      string         `json:"metric_type"`
	Name      string         `json:"metric_name"`
	Value     float64        `json:"value"`
	Unit      string         `json:"unit,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AgentTransfer records one handoff of conversational authority between two
// dialogue agents. Append-only audit data.
type AgentTransfer struct {
	SessionID string    `json:"session_id"`
	FromAgent string    `json:"from_agent"`
	ToAgent   string    `json:"to_agent"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StateSnapshot is a denormalized copy of everything collected from the
// caller at a point in time. The latest snapshot per session is
// authoritative; writes use upsert semantics keyed by SessionID.
type StateSnapshot struct {
	SessionID       string    `json:"session_id"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CustomerPhone   string    `json:"customer_phone,omitempty"`
	BookingDateTime string    `json:"booking_date_time,omitempty"`
	BookingReason   string    `json:"booking_reason,omitempty"`
	DateOfBirth     string    `json:"date_of_birth,omitempty"`
	Email           string    `json:"email,omitempty"`
	PatientID       string    `json:"patient_id,omitempty"`
	Intent          string    `json:"intent,omitempty"`
	Snapshot        string    `json:"data_snapshot,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Patient is a minimal master-data record. Phone numbers are unique.
type Patient struct {
	ID               string     `json:"patient_id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	DateOfBirth      string     `json:"date_of_birth,omitempty"`
	Email            string     `json:"email,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	RegisteredAt     time.Time  `json:"registration_date"`
	LastVisit        *time.Time `json:"last_visit,omitempty"`
	Status           string     `json:"status"`
}

// Appointment is one scheduled visit for a patient.
type Appointment struct {
	ID                 string    `json:"appointment_id"`
	PatientID          string    `json:"patient_id"`
	Date               string    `json:"appointment_date"` // YYYY-MM-DD
	Time               string    `json:"appointment_time"` // HH:MM
	TreatmentType      string    `json:"treatment_type,omitempty"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes,omitempty"`
	EstimatedCostRange string    `json:"estimated_cost_range,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Treatment is one entry of the static treatment and pricing catalog seeded
// at schema initialization.
type Treatment struct {
	ID              string `json:"treatment_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceRangeMin   int    `json:"price_range_min"`
	PriceRangeMax   int    `json:"price_range_max"`
	DurationMinutes int    `json:"duration_minutes"`
	Category        string `json:"category"`
}
