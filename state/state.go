// Package state holds the single in-memory source of truth for one
// interaction: everything collected from the caller so far, the active and
// previous dialogue agent, and handles to the write-behind store and the
// metrics ring. The in-memory copy is always the most current; the durable
// copy may lag by up to one flush interval.
package state

import (
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/store"
)

// Unknown is the sentinel rendered for fields the caller has not provided
// yet.
const Unknown = "unknown"

// CallerState is the mutable record of one live interaction. Every field
// mutation bumps an in-memory counter and enqueues a full-state snapshot;
// neither step blocks or fails. Created at interaction start, discarded at
// interaction end; its final snapshot remains durable.
type CallerState struct {
	mu sync.RWMutex

	customerName    string
	customerPhone   string
	bookingDateTime string
	bookingReason   string
	dateOfBirth     string
	email           string
	patientID       string
	intent          string

	currentAgent string
	prevAgent    string

	sessionID string
	store     *store.WriteBehind
	ring      *metrics.Ring
	recording bool
}

// Option customizes CallerState construction.
type Option func(*CallerState)

// WithStore attaches the write-behind store snapshots are queued into.
func WithStore(wb *store.WriteBehind) Option {
	return func(s *CallerState) { s.store = wb }
}

// WithRing attaches the in-memory metrics ring.
func WithRing(r *metrics.Ring) Option {
	return func(s *CallerState) { s.ring = r }
}

// WithRecording enables transcript recording for tools acting on this state.
func WithRecording(enabled bool) Option {
	return func(s *CallerState) { s.recording = enabled }
}

// New creates the state for one session.
func New(sessionID string, opts ...Option) *CallerState {
	s := &CallerState{sessionID: sessionID, ring: metrics.NewRing()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionID returns the owning session's identifier.
func (s *CallerState) SessionID() string { return s.sessionID }

// Ring returns the in-memory metrics ring.
func (s *CallerState) Ring() *metrics.Ring { return s.ring }

// Store returns the attached write-behind store, which may be nil when
// recording is disabled.
func (s *CallerState) Store() *store.WriteBehind { return s.store }

// Recording reports whether transcript recording is enabled.
func (s *CallerState) Recording() bool { return s.recording }

func (s *CallerState) set(assign func(), metricKey string) {
	s.mu.Lock()
	assign()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.ring != nil {
		s.ring.Increment(metricKey)
	}
	if s.store != nil && s.sessionID != "" {
		s.store.EnqueueStateSnapshot(snap)
	}
}

// SetCustomerName records the caller's name.
func (s *CallerState) SetCustomerName(v string) {
	s.set(func() { s.customerName = v }, "customer_name_updated")
}

// SetCustomerPhone records the caller's phone number.
func (s *CallerState) SetCustomerPhone(v string) {
	s.set(func() { s.customerPhone = v }, "customer_phone_updated")
}

// SetBookingDateTime records the requested appointment date and time.
func (s *CallerState) SetBookingDateTime(v string) {
	s.set(func() { s.bookingDateTime = v }, "booking_datetime_updated")
}

// SetBookingReason records the reason for the visit.
func (s *CallerState) SetBookingReason(v string) {
	s.set(func() { s.bookingReason = v }, "booking_reason_updated")
}

// SetDateOfBirth records the caller's date of birth.
func (s *CallerState) SetDateOfBirth(v string) {
	s.set(func() { s.dateOfBirth = v }, "date_of_birth_updated")
}

// SetEmail records the caller's email address.
func (s *CallerState) SetEmail(v string) {
	s.set(func() { s.email = v }, "email_updated")
}

// SetPatientID links the caller to an existing patient record.
func (s *CallerState) SetPatientID(v string) {
	s.set(func() { s.patientID = v }, "patient_linked")
}

// SetIntent records the caller's stated intent.
func (s *CallerState) SetIntent(v string) {
	s.set(func() { s.intent = v }, "intent_updated")
}

// CustomerName returns the caller's name.
func (s *CallerState) CustomerName() string { return s.get(&s.customerName) }

// CustomerPhone returns the caller's phone number.
func (s *CallerState) CustomerPhone() string { return s.get(&s.customerPhone) }

// BookingDateTime returns the requested appointment date and time.
func (s *CallerState) BookingDateTime() string { return s.get(&s.bookingDateTime) }

// BookingReason returns the reason for the visit.
func (s *CallerState) BookingReason() string { return s.get(&s.bookingReason) }

// DateOfBirth returns the caller's date of birth.
func (s *CallerState) DateOfBirth() string { return s.get(&s.dateOfBirth) }

// Email returns the caller's email address.
func (s *CallerState) Email() string { return s.get(&s.email) }

// PatientID returns the linked patient record ID.
func (s *CallerState) PatientID() string { return s.get(&s.patientID) }

// Intent returns the caller's stated intent.
func (s *CallerState) Intent() string { return s.get(&s.intent) }

func (s *CallerState) get(field *string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *field
}

// CurrentAgent returns the name of the active dialogue agent.
func (s *CallerState) CurrentAgent() string { return s.get(&s.currentAgent) }

// PrevAgent returns the name of the previously active dialogue agent.
func (s *CallerState) PrevAgent() string { return s.get(&s.prevAgent) }

// SetCurrentAgent marks an agent as active.
func (s *CallerState) SetCurrentAgent(name string) {
	s.mu.Lock()
	s.currentAgent = name
	s.mu.Unlock()
}

// RecordHandoff stores the outgoing agent as previous before authority moves.
func (s *CallerState) RecordHandoff(fromAgent string) {
	s.mu.Lock()
	s.prevAgent = fromAgent
	s.mu.Unlock()
}

// summaryFields fixes the field order of Summarize output.
type summaryFields struct {
	CustomerName    string `yaml:"customer_name"`
	CustomerPhone   string `yaml:"customer_phone"`
	BookingDateTime string `yaml:"booking_date_time"`
	BookingReason   string `yaml:"booking_reason"`
	DateOfBirth     string `yaml:"date_of_birth"`
	Email           string `yaml:"email"`
	PatientID       string `yaml:"patient_id"`
	Intent          string `yaml:"intent"`
}

// Summarize renders the currently known fields as deterministic YAML with an
// explicit "unknown" sentinel for unset fields. The output is injected into
// a newly entered agent's operating context.
func (s *CallerState) Summarize() string {
	s.mu.RLock()
	fields := summaryFields{
		CustomerName:    orUnknown(s.customerName),
		CustomerPhone:   orUnknown(s.customerPhone),
		BookingDateTime: orUnknown(s.bookingDateTime),
		BookingReason:   orUnknown(s.bookingReason),
		DateOfBirth:     orUnknown(s.dateOfBirth),
		Email:           orUnknown(s.email),
		PatientID:       orUnknown(s.patientID),
		Intent:          orUnknown(s.intent),
	}
	s.mu.RUnlock()

	out, err := yaml.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}

// Snapshot returns the current snapshot record queued on every mutation.
func (s *CallerState) Snapshot() core.StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *CallerState) snapshotLocked() core.StateSnapshot {
	return core.StateSnapshot{
		SessionID:       s.sessionID,
		CustomerName:    s.customerName,
		CustomerPhone:   s.customerPhone,
		BookingDateTime: s.bookingDateTime,
		BookingReason:   s.bookingReason,
		DateOfBirth:     s.dateOfBirth,
		Email:           s.email,
		PatientID:       s.patientID,
		Intent:          s.intent,
	}
}

func orUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}
