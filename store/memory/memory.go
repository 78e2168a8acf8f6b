// Package memory provides a volatile store.Backend keeping all rows in
// process-local maps and slices. It is safe for concurrent access and best
// suited for tests or ephemeral demo runs; nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/store"
)

// Backend is an in-memory implementation of store.Backend.
type Backend struct {
	mu           sync.RWMutex
	sessions     map[string]core.SessionRecord
	snapshots    map[string]core.StateSnapshot // keyed by session id, latest wins
	transcripts  []core.TranscriptEntry
	metrics      []core.Metric
	transfers    []core.AgentTransfer
	patients     map[string]core.Patient
	appointments []core.Appointment
	treatments   []core.Treatment
}

// New constructs an empty in-memory backend.
func New() *Backend {
	return &Backend{
		sessions:  make(map[string]core.SessionRecord),
		snapshots: make(map[string]core.StateSnapshot),
		patients:  make(map[string]core.Patient),
	}
}

// Init seeds the treatment catalog. Safe to call repeatedly.
func (b *Backend) Init(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.treatments) == 0 {
		b.treatments = store.DefaultTreatments()
	}
	return nil
}

// CreateSession stores a new session record.
func (b *Backend) CreateSession(_ context.Context, rec core.SessionRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[rec.ID] = rec
	return nil
}

// EndSession marks a session completed.
func (b *Backend) EndSession(_ context.Context, sessionID string, endTime time.Time, durationSeconds int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.sessions[sessionID]
	if !ok {
		return core.ErrNotFound
	}
	rec.EndTime = &endTime
	rec.DurationSeconds = &durationSeconds
	rec.Status = core.SessionCompleted
	b.sessions[sessionID] = rec
	return nil
}

// InsertTranscripts appends a drained transcript batch in order.
func (b *Backend) InsertTranscripts(_ context.Context, batch []core.TranscriptEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcripts = append(b.transcripts, batch...)
	return nil
}

// InsertMetrics appends a drained metrics batch in order.
func (b *Backend) InsertMetrics(_ context.Context, batch []core.Metric) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics = append(b.metrics, batch...)
	return nil
}

// UpsertStateSnapshots replaces the authoritative snapshot per session.
func (b *Backend) UpsertStateSnapshots(_ context.Context, batch []core.StateSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, snap := range batch {
		b.snapshots[snap.SessionID] = snap
	}
	return nil
}

// InsertTransfers appends a drained transfer audit batch in order.
func (b *Backend) InsertTransfers(_ context.Context, batch []core.AgentTransfer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transfers = append(b.transfers, batch...)
	return nil
}

// SessionData assembles the full read-back view for one session.
func (b *Backend) SessionData(_ context.Context, sessionID string) (*store.SessionData, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.sessions[sessionID]
	if !ok {
		return nil, core.ErrNotFound
	}
	data := &store.SessionData{Session: rec}
	if snap, ok := b.snapshots[sessionID]; ok {
		cp := snap
		data.LatestState = &cp
	}
	for _, t := range b.transcripts {
		if t.SessionID == sessionID {
			data.Transcripts = append(data.Transcripts, t)
		}
	}
	for _, m := range b.metrics {
		if m.SessionID == sessionID {
			data.Metrics = append(data.Metrics, m)
		}
	}
	for _, tr := range b.transfers {
		if tr.SessionID == sessionID {
			data.Transfers = append(data.Transfers, tr)
		}
	}
	return data, nil
}

// FindPatient matches an active patient by phone and date of birth, bumping
// the last-visit timestamp on a hit.
func (b *Backend) FindPatient(_ context.Context, phone, dateOfBirth string) (*core.Patient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, p := range b.patients {
		if p.Phone == phone && p.DateOfBirth == dateOfBirth && p.Status == "active" {
			now := time.Now().UTC()
			p.LastVisit = &now
			b.patients[id] = p
			cp := p
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

// CreatePatient stores a new patient, enforcing phone uniqueness.
func (b *Backend) CreatePatient(_ context.Context, p core.Patient) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.patients {
		if existing.Phone == p.Phone {
			return &core.PersistenceError{Op: "create_patient", Err: errDuplicatePhone}
		}
	}
	b.patients[p.ID] = p
	return nil
}

// AppointmentHistory lists a patient's appointments, most recent first.
func (b *Backend) AppointmentHistory(_ context.Context, patientID string, limit int) ([]core.Appointment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var res []core.Appointment
	for _, a := range b.appointments {
		if a.PatientID == patientID {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date != res[j].Date {
			return res[i].Date > res[j].Date
		}
		return res[i].Time > res[j].Time
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// CreateAppointment stores a new appointment.
func (b *Backend) CreateAppointment(_ context.Context, a core.Appointment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appointments = append(b.appointments, a)
	return nil
}

// Treatments lists catalog entries filtered by name or category.
func (b *Backend) Treatments(_ context.Context, name, category string) ([]core.Treatment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var res []core.Treatment
	for _, t := range b.treatments {
		switch {
		case name != "":
			if containsFold(t.Name, name) || containsFold(t.ID, name) {
				res = append(res, t)
			}
		case category != "":
			if t.Category == category {
				res = append(res, t)
			}
		default:
			res = append(res, t)
		}
	}
	if name == "" && category == "" {
		sort.Slice(res, func(i, j int) bool {
			if res[i].Category != res[j].Category {
				return res[i].Category < res[j].Category
			}
			return res[i].Name < res[j].Name
		})
	}
	return res, nil
}

// TreatmentPricing returns one catalog entry by ID.
func (b *Backend) TreatmentPricing(_ context.Context, treatmentID string) (*core.Treatment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.treatments {
		if t.ID == treatmentID {
			cp := t
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

// SearchTreatments matches catalog entries by keyword in name or description.
func (b *Backend) SearchTreatments(_ context.Context, keyword string) ([]core.Treatment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var res []core.Treatment
	for _, t := range b.treatments {
		if containsFold(t.Name, keyword) || containsFold(t.Description, keyword) {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// Close is a no-op for the in-memory backend.
func (b *Backend) Close() error { return nil }

var errDuplicatePhone = errors.New("phone number already registered")

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
