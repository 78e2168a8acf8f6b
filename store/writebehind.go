package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/logging"
)

const (
	// DefaultBatchSize caps the number of rows drained per queue per flush.
	DefaultBatchSize = 50
	// DefaultFlushInterval is the period of the background drain loop.
	DefaultFlushInterval = 2 * time.Second
)

// WriteBehind is the durable persistence engine. It owns three batching
// queues (transcripts, metrics, state snapshots) plus a best-effort audit
// queue for agent transfers, all drained by one background goroutine on a
// fixed interval. Queue types flush independently; a failure in one does not
// block or lose items in another.
//
// Lifecycle: New → Start → (periodic flushing) → Stop (one final forced
// drain) → Close. Enqueue operations stay legal until Stop's final drain
// completes; after that they are dropped.
type WriteBehind struct {
	backend       Backend
	logger        logging.Logger
	batchSize     int
	flushInterval time.Duration

	transcripts *queue[core.TranscriptEntry]
	metrics     *queue[core.Metric]
	snapshots   *queue[core.StateSnapshot]
	transfers   *queue[core.AgentTransfer]

	mu       sync.Mutex
	flushMu  sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopping bool
	closed   bool
}

// Option customizes a WriteBehind instance.
type Option func(*WriteBehind)

// WithBatchSize sets the per-queue row cap for each flush.
func WithBatchSize(n int) Option {
	return func(w *WriteBehind) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithFlushInterval sets the period between background drains.
func WithFlushInterval(d time.Duration) Option {
	return func(w *WriteBehind) {
		if d > 0 {
			w.flushInterval = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(w *WriteBehind) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a write-behind engine over the given backend. Call Init to
// establish the schema, then Start to launch background flushing.
func New(backend Backend, opts ...Option) *WriteBehind {
	w := &WriteBehind{
		backend:       backend,
		logger:        logging.NoOpLogger{},
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
		transcripts:   newQueue[core.TranscriptEntry](),
		metrics:       newQueue[core.Metric](),
		snapshots:     newQueue[core.StateSnapshot](),
		transfers:     newQueue[core.AgentTransfer](),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Init establishes the schema idempotently, including the treatment catalog
// seed.
func (w *WriteBehind) Init(ctx context.Context) error {
	if err := w.backend.Init(ctx); err != nil {
		return core.NewPersistenceError("init", err)
	}
	w.logger.Info("store.initialized")
	return nil
}

// Start launches the background drain loop. Calling Start more than once is
// a no-op.
func (w *WriteBehind) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopping {
		return
	}
	w.started = true
	go w.run()
}

func (w *WriteBehind) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Flush(context.Background())
		}
	}
}

// Stop halts the background loop, waits for any in-flight tick and performs
// exactly one final forced drain of all queues to minimize the loss window.
// Enqueues stay legal until that final drain completes; items arriving after
// its batches are popped remain queued and are reported as pending.
func (w *WriteBehind) Stop(ctx context.Context) {
	w.mu.Lock()
	if w.stopping {
		w.mu.Unlock()
		return
	}
	w.stopping = true
	started := w.started
	w.mu.Unlock()

	if started {
		close(w.stop)
		<-w.done
	}
	w.Flush(ctx)
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.logger.Info("store.stopped",
		"pending_transcripts", w.transcripts.len(),
		"pending_metrics", w.metrics.len(),
		"pending_snapshots", w.snapshots.len(),
		"pending_transfers", w.transfers.len())
}

// Close stops background processing and releases the backend.
func (w *WriteBehind) Close(ctx context.Context) error {
	w.Stop(ctx)
	return w.backend.Close()
}

// EnqueueTranscript queues one transcript entry for the next batch flush.
// It fills in a message ID and timestamp when absent, performs no I/O and
// returns immediately.
func (w *WriteBehind) EnqueueTranscript(entry core.TranscriptEntry) {
	if w.isClosed() {
		return
	}
	if entry.MessageID == "" {
		entry.MessageID = core.NewID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	w.transcripts.append(entry)
}

// EnqueueMetric queues one metric observation for the next batch flush.
func (w *WriteBehind) EnqueueMetric(m core.Metric) {
	if w.isClosed() {
		return
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	w.metrics.append(m)
}

// EnqueueStateSnapshot queues a full structured-state snapshot. Snapshots
// upsert by session, so replaying identical snapshots is idempotent.
func (w *WriteBehind) EnqueueStateSnapshot(snap core.StateSnapshot) {
	if w.isClosed() {
		return
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	if snap.Snapshot == "" {
		if raw, err := json.Marshal(snap); err == nil {
			snap.Snapshot = string(raw)
		}
	}
	w.snapshots.append(snap)
}

// EnqueueTransfer queues a handoff audit record on the best-effort audit
// queue. Transfers are infrequent and high-value; they ride the same
// background loop as the batched queues so flush failures surface in one
// place, and a failure never reaches the conversation.
func (w *WriteBehind) EnqueueTransfer(t core.AgentTransfer) {
	if w.isClosed() {
		return
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}
	w.transfers.append(t)
}

// Flush drains up to batchSize items from each queue and writes each batch
// as one grouped operation. Queues are flushed independently; a failed batch
// is re-queued at the head and retried on the next tick. Concurrent calls
// serialize so each queue keeps a single consumer and enqueue order survives
// a requeue.
func (w *WriteBehind) Flush(ctx context.Context) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()
	if batch := w.transcripts.popBatch(w.batchSize); len(batch) > 0 {
		if err := w.backend.InsertTranscripts(ctx, batch); err != nil {
			w.transcripts.requeue(batch)
			w.logger.Error("store.flush.transcripts_failed", "count", len(batch), "error", err.Error())
		}
	}
	if batch := w.metrics.popBatch(w.batchSize); len(batch) > 0 {
		if err := w.backend.InsertMetrics(ctx, batch); err != nil {
			w.metrics.requeue(batch)
			w.logger.Error("store.flush.metrics_failed", "count", len(batch), "error", err.Error())
		}
	}
	if batch := w.snapshots.popBatch(w.batchSize); len(batch) > 0 {
		if err := w.backend.UpsertStateSnapshots(ctx, batch); err != nil {
			w.snapshots.requeue(batch)
			w.logger.Error("store.flush.snapshots_failed", "count", len(batch), "error", err.Error())
		}
	}
	if batch := w.transfers.popBatch(w.batchSize); len(batch) > 0 {
		if err := w.backend.InsertTransfers(ctx, batch); err != nil {
			w.transfers.requeue(batch)
			w.logger.Error("store.flush.transfers_failed", "count", len(batch), "error", err.Error())
		}
	}
}

func (w *WriteBehind) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// CreateSession writes a new session record immediately and returns its ID.
// A failure here is fatal to session start and is surfaced to the caller.
func (w *WriteBehind) CreateSession(ctx context.Context, roomID, participantID string) (string, error) {
	rec := core.SessionRecord{
		ID:            core.NewID(),
		RoomID:        roomID,
		ParticipantID: participantID,
		StartTime:     time.Now().UTC(),
		Status:        core.SessionActive,
	}
	if err := w.backend.CreateSession(ctx, rec); err != nil {
		return "", core.NewPersistenceError("create_session", err)
	}
	w.logger.Info("store.session.created", "session_id", rec.ID, "room_id", roomID)
	return rec.ID, nil
}

// EndSession marks the session completed with its duration. Immediate write;
// failures are surfaced to the caller.
func (w *WriteBehind) EndSession(ctx context.Context, sessionID string, durationSeconds int) error {
	if err := w.backend.EndSession(ctx, sessionID, time.Now().UTC(), durationSeconds); err != nil {
		return core.NewPersistenceError("end_session", err)
	}
	w.logger.Info("store.session.ended", "session_id", sessionID, "duration_seconds", durationSeconds)
	return nil
}

// SessionData returns the full durable view of one session: record, latest
// state snapshot, transcripts, metrics and transfer audit trail.
func (w *WriteBehind) SessionData(ctx context.Context, sessionID string) (*SessionData, error) {
	data, err := w.backend.SessionData(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// FindPatient looks up a patient by phone and date of birth. Returns
// core.ErrNotFound on a miss.
func (w *WriteBehind) FindPatient(ctx context.Context, phone, dateOfBirth string) (*core.Patient, error) {
	return w.backend.FindPatient(ctx, phone, dateOfBirth)
}

// CreatePatient writes a new patient record immediately and returns its ID.
func (w *WriteBehind) CreatePatient(ctx context.Context, name, phone, dateOfBirth, email, emergencyContact string) (string, error) {
	now := time.Now().UTC()
	p := core.Patient{
		ID:               core.NewID(),
		Name:             name,
		Phone:            phone,
		DateOfBirth:      dateOfBirth,
		Email:            email,
		EmergencyContact: emergencyContact,
		RegisteredAt:     now,
		LastVisit:        &now,
		Status:           "active",
	}
	if err := w.backend.CreatePatient(ctx, p); err != nil {
		return "", core.NewPersistenceError("create_patient", err)
	}
	w.logger.Info("store.patient.created", "patient_id", p.ID)
	return p.ID, nil
}

// AppointmentHistory lists a patient's appointments, most recent first.
func (w *WriteBehind) AppointmentHistory(ctx context.Context, patientID string, limit int) ([]core.Appointment, error) {
	return w.backend.AppointmentHistory(ctx, patientID, limit)
}

// CreateAppointment writes a new appointment immediately and returns its ID.
func (w *WriteBehind) CreateAppointment(ctx context.Context, patientID, date, timeOfDay, treatmentType, notes, costRange string) (string, error) {
	now := time.Now().UTC()
	a := core.Appointment{
		ID:                 core.NewID(),
		PatientID:          patientID,
		Date:               date,
		Time:               timeOfDay,
		TreatmentType:      treatmentType,
		Status:             "scheduled",
		Notes:              notes,
		EstimatedCostRange: costRange,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := w.backend.CreateAppointment(ctx, a); err != nil {
		return "", core.NewPersistenceError("create_appointment", err)
	}
	w.logger.Info("store.appointment.created", "appointment_id", a.ID, "patient_id", patientID)
	return a.ID, nil
}

// Treatments lists catalog entries filtered by name or category.
func (w *WriteBehind) Treatments(ctx context.Context, name, category string) ([]core.Treatment, error) {
	return w.backend.Treatments(ctx, name, category)
}

// TreatmentPricing returns pricing for one catalog entry by ID.
func (w *WriteBehind) TreatmentPricing(ctx context.Context, treatmentID string) (*core.Treatment, error) {
	return w.backend.TreatmentPricing(ctx, treatmentID)
}

// SearchTreatments matches catalog entries by keyword in name or description.
func (w *WriteBehind) SearchTreatments(ctx context.Context, keyword string) ([]core.Treatment, error) {
	return w.backend.SearchTreatments(ctx, keyword)
}

// QueueDepths reports current queue lengths, exposed for observability and
// tests.
func (w *WriteBehind) QueueDepths() map[string]int {
	return map[string]int{
		"transcripts": w.transcripts.len(),
		"metrics":     w.metrics.len(),
		"snapshots":   w.snapshots.len(),
		"transfers":   w.transfers.len(),
	}
}
