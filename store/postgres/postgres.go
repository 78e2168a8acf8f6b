// Package postgres provides a store.Backend on PostgreSQL via pgx. The
// backend owns the schema: Init creates all tables and indexes idempotently
// and seeds the treatment catalog. Postgres writes through its write-ahead
// log, so the background flusher and concurrent analytics readers can share
// the store without additional tuning.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/store"
)

// Backend implements store.Backend over a pgx connection pool.
type Backend struct {
	pool *pgxpool.Pool
}

// New connects to the database at the given URL.
func New(ctx context.Context, databaseURL string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Backend{pool: pool}, nil
}

// NewFromPool wraps an existing pool, which the caller continues to own.
func NewFromPool(pool *pgxpool.Pool) *Backend { return &Backend{pool: pool} }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		room_id TEXT,
		participant_id TEXT,
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		duration_seconds INTEGER,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_data (
		session_id TEXT PRIMARY KEY REFERENCES sessions (id),
		customer_name TEXT,
		customer_phone TEXT,
		booking_date_time TEXT,
		booking_reason TEXT,
		date_of_birth TEXT,
		email TEXT,
		patient_id TEXT,
		intent TEXT,
		data_snapshot JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transcripts (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions (id),
		agent_name TEXT,
		role TEXT,
		content TEXT,
		message_id TEXT,
		metadata JSONB,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS metrics (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions (id),
		metric_type TEXT,
		metric_name TEXT,
		value DOUBLE PRECISION,
		unit TEXT,
		metadata JSONB,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS agent_transfers (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions (id),
		from_agent TEXT,
		to_agent TEXT,
		transfer_reason TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		patient_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT UNIQUE NOT NULL,
		date_of_birth TEXT,
		email TEXT,
		emergency_contact TEXT,
		registration_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_visit TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		appointment_id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL REFERENCES patients (patient_id),
		appointment_date TEXT NOT NULL,
		appointment_time TEXT NOT NULL,
		treatment_type TEXT,
		status TEXT NOT NULL DEFAULT 'scheduled',
		notes TEXT,
		estimated_cost_range TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS treatments (
		treatment_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		price_range_min INTEGER,
		price_range_max INTEGER,
		duration_minutes INTEGER,
		category TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcripts_session ON transcripts (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_session ON metrics (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_patients_phone ON patients (phone)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments (patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments (appointment_date)`,
}

// Init creates the schema and seeds the treatment catalog. Safe to run
// against an already initialized database.
func (b *Backend) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	batch := &pgx.Batch{}
	for _, t := range store.DefaultTreatments() {
		batch.Queue(`INSERT INTO treatments
			(treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (treatment_id) DO NOTHING`,
			t.ID, t.Name, t.Description, t.PriceRangeMin, t.PriceRangeMax, t.DurationMinutes, t.Category)
	}
	if err := b.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed treatments: %w", err)
	}
	return nil
}

// CreateSession inserts a new session row.
func (b *Backend) CreateSession(ctx context.Context, rec core.SessionRecord) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO sessions (id, room_id, participant_id, start_time, status) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.RoomID, rec.ParticipantID, rec.StartTime, string(rec.Status))
	return err
}

// EndSession marks a session completed with its duration.
func (b *Backend) EndSession(ctx context.Context, sessionID string, endTime time.Time, durationSeconds int) error {
	tag, err := b.pool.Exec(ctx,
		`UPDATE sessions SET end_time = $1, duration_seconds = $2, status = 'completed' WHERE id = $3`,
		endTime, durationSeconds, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

// InsertTranscripts writes a drained transcript batch in one transaction.
func (b *Backend) InsertTranscripts(ctx context.Context, batch []core.TranscriptEntry) error {
	return b.inTx(ctx, func(tx pgx.Tx) error {
		pb := &pgx.Batch{}
		for _, e := range batch {
			pb.Queue(`INSERT INTO transcripts (session_id, agent_name, role, content, message_id, metadata, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				e.SessionID, e.AgentName, e.Role, e.Content, e.MessageID, marshalMeta(e.Metadata), e.Timestamp)
		}
		return tx.SendBatch(ctx, pb).Close()
	})
}

// InsertMetrics writes a drained metrics batch in one transaction.
func (b *Backend) InsertMetrics(ctx context.Context, batch []core.Metric) error {
	return b.inTx(ctx, func(tx pgx.Tx) error {
		pb := &pgx.Batch{}
		for _, m := range batch {
			pb.Queue(`INSERT INTO metrics (session_id, metric_type, metric_name, value, unit, metadata, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				m.SessionID, m.Type, m.Name, m.Value, nullable(m.Unit), marshalMeta(m.Metadata), m.Timestamp)
		}
		return tx.SendBatch(ctx, pb).Close()
	})
}

// UpsertStateSnapshots replaces the authoritative snapshot per session.
func (b *Backend) UpsertStateSnapshots(ctx context.Context, batch []core.StateSnapshot) error {
	return b.inTx(ctx, func(tx pgx.Tx) error {
		pb := &pgx.Batch{}
		for _, s := range batch {
			pb.Queue(`INSERT INTO user_data
				(session_id, customer_name, customer_phone, booking_date_time, booking_reason,
				 date_of_birth, email, patient_id, intent, data_snapshot, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (session_id) DO UPDATE SET
					customer_name = EXCLUDED.customer_name,
					customer_phone = EXCLUDED.customer_phone,
					booking_date_time = EXCLUDED.booking_date_time,
					booking_reason = EXCLUDED.booking_reason,
					date_of_birth = EXCLUDED.date_of_birth,
					email = EXCLUDED.email,
					patient_id = EXCLUDED.patient_id,
					intent = EXCLUDED.intent,
					data_snapshot = EXCLUDED.data_snapshot,
					updated_at = EXCLUDED.updated_at`,
				s.SessionID, s.CustomerName, s.CustomerPhone, s.BookingDateTime, s.BookingReason,
				s.DateOfBirth, s.Email, s.PatientID, s.Intent, nullable(s.Snapshot), s.UpdatedAt)
		}
		return tx.SendBatch(ctx, pb).Close()
	})
}

// InsertTransfers writes a drained transfer audit batch in one transaction.
func (b *Backend) InsertTransfers(ctx context.Context, batch []core.AgentTransfer) error {
	return b.inTx(ctx, func(tx pgx.Tx) error {
		pb := &pgx.Batch{}
		for _, t := range batch {
			pb.Queue(`INSERT INTO agent_transfers (session_id, from_agent, to_agent, transfer_reason, timestamp)
				VALUES ($1, $2, $3, $4, $5)`,
				t.SessionID, t.FromAgent, t.ToAgent, nullable(t.Reason), t.Timestamp)
		}
		return tx.SendBatch(ctx, pb).Close()
	})
}

// SessionData assembles the full read-back view for one session.
func (b *Backend) SessionData(ctx context.Context, sessionID string) (*store.SessionData, error) {
	data := &store.SessionData{}

	row := b.pool.QueryRow(ctx,
		`SELECT id, room_id, participant_id, start_time, end_time, duration_seconds, status
		 FROM sessions WHERE id = $1`, sessionID)
	var status string
	if err := row.Scan(&data.Session.ID, &data.Session.RoomID, &data.Session.ParticipantID,
		&data.Session.StartTime, &data.Session.EndTime, &data.Session.DurationSeconds, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	data.Session.Status = core.SessionStatus(status)

	snap, err := b.latestSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data.LatestState = snap

	if data.Transcripts, err = b.sessionTranscripts(ctx, sessionID); err != nil {
		return nil, err
	}
	if data.Metrics, err = b.sessionMetrics(ctx, sessionID); err != nil {
		return nil, err
	}
	if data.Transfers, err = b.sessionTransfers(ctx, sessionID); err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Backend) latestSnapshot(ctx context.Context, sessionID string) (*core.StateSnapshot, error) {
	row := b.pool.QueryRow(ctx,
		`SELECT session_id, customer_name, customer_phone, booking_date_time, booking_reason,
		        date_of_birth, email, patient_id, intent, COALESCE(data_snapshot::text, ''), updated_at
		 FROM user_data WHERE session_id = $1`, sessionID)
	var s core.StateSnapshot
	err := row.Scan(&s.SessionID, &s.CustomerName, &s.CustomerPhone, &s.BookingDateTime, &s.BookingReason,
		&s.DateOfBirth, &s.Email, &s.PatientID, &s.Intent, &s.Snapshot, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *Backend) sessionTranscripts(ctx context.Context, sessionID string) ([]core.TranscriptEntry, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT session_id, agent_name, role, content, message_id, metadata, timestamp
		 FROM transcripts WHERE session_id = $1 ORDER BY timestamp, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []core.TranscriptEntry
	for rows.Next() {
		var e core.TranscriptEntry
		var meta []byte
		if err := rows.Scan(&e.SessionID, &e.AgentName, &e.Role, &e.Content, &e.MessageID, &meta, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Metadata = unmarshalMeta(meta)
		res = append(res, e)
	}
	return res, rows.Err()
}

func (b *Backend) sessionMetrics(ctx context.Context, sessionID string) ([]core.Metric, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT session_id, metric_type, metric_name, value, COALESCE(unit, ''), metadata, timestamp
		 FROM metrics WHERE session_id = $1 ORDER BY timestamp, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []core.Metric
	for rows.Next() {
		var m core.Metric
		var meta []byte
		if err := rows.Scan(&m.SessionID, &m.Type, &m.Name, &m.Value, &m.Unit, &meta, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Metadata = unmarshalMeta(meta)
		res = append(res, m)
	}
	return res, rows.Err()
}

func (b *Backend) sessionTransfers(ctx context.Context, sessionID string) ([]core.AgentTransfer, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT session_id, from_agent, to_agent, COALESCE(transfer_reason, ''), timestamp
		 FROM agent_transfers WHERE session_id = $1 ORDER BY timestamp, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []core.AgentTransfer
	for rows.Next() {
		var t core.AgentTransfer
		if err := rows.Scan(&t.SessionID, &t.FromAgent, &t.ToAgent, &t.Reason, &t.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// FindPatient matches an active patient by phone and date of birth, bumping
// last_visit on a hit.
func (b *Backend) FindPatient(ctx context.Context, phone, dateOfBirth string) (*core.Patient, error) {
	row := b.pool.QueryRow(ctx,
		`SELECT patient_id, name, phone, COALESCE(date_of_birth, ''), COALESCE(email, ''),
		        COALESCE(emergency_contact, ''), registration_date, last_visit, status
		 FROM patients WHERE phone = $1 AND date_of_birth = $2 AND status = 'active'`,
		phone, dateOfBirth)
	var p core.Patient
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.DateOfBirth, &p.Email,
		&p.EmergencyContact, &p.RegisteredAt, &p.LastVisit, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if _, err := b.pool.Exec(ctx, `UPDATE patients SET last_visit = now() WHERE patient_id = $1`, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePatient inserts a new patient row. Phone uniqueness is enforced by
// the schema.
func (b *Backend) CreatePatient(ctx context.Context, p core.Patient) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO patients (patient_id, name, phone, date_of_birth, email, emergency_contact, registration_date, last_visit, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Phone, p.DateOfBirth, nullable(p.Email), nullable(p.EmergencyContact), p.RegisteredAt, p.LastVisit, p.Status)
	return err
}

// AppointmentHistory lists a patient's appointments, most recent first.
func (b *Backend) AppointmentHistory(ctx context.Context, patientID string, limit int) ([]core.Appointment, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT appointment_id, patient_id, appointment_date, appointment_time, COALESCE(treatment_type, ''),
		        status, COALESCE(notes, ''), COALESCE(estimated_cost_range, ''), created_at, updated_at
		 FROM appointments WHERE patient_id = $1
		 ORDER BY appointment_date DESC, appointment_time DESC LIMIT $2`,
		patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []core.Appointment
	for rows.Next() {
		var a core.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Date, &a.Time, &a.TreatmentType,
			&a.Status, &a.Notes, &a.EstimatedCostRange, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// CreateAppointment inserts a new appointment row.
func (b *Backend) CreateAppointment(ctx context.Context, a core.Appointment) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO appointments
		 (appointment_id, patient_id, appointment_date, appointment_time, treatment_type, status, notes, estimated_cost_range, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.PatientID, a.Date, a.Time, nullable(a.TreatmentType), a.Status, nullable(a.Notes), nullable(a.EstimatedCostRange), a.CreatedAt, a.UpdatedAt)
	return err
}

// Treatments lists catalog entries filtered by name or category.
func (b *Backend) Treatments(ctx context.Context, name, category string) ([]core.Treatment, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch {
	case name != "":
		rows, err = b.pool.Query(ctx,
			`SELECT treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category
			 FROM treatments WHERE name ILIKE '%' || $1 || '%' OR treatment_id ILIKE '%' || $1 || '%'`, name)
	case category != "":
		rows, err = b.pool.Query(ctx,
			`SELECT treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category
			 FROM treatments WHERE category = $1`, category)
	default:
		rows, err = b.pool.Query(ctx,
			`SELECT treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category
			 FROM treatments ORDER BY category, name`)
	}
	if err != nil {
		return nil, err
	}
	return scanTreatments(rows)
}

// TreatmentPricing returns one catalog entry by ID.
func (b *Backend) TreatmentPricing(ctx context.Context, treatmentID string) (*core.Treatment, error) {
	row := b.pool.QueryRow(ctx,
		`SELECT treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category
		 FROM treatments WHERE treatment_id = $1`, treatmentID)
	var t core.Treatment
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.PriceRangeMin, &t.PriceRangeMax, &t.DurationMinutes, &t.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SearchTreatments matches catalog entries by keyword in name or description.
func (b *Backend) SearchTreatments(ctx context.Context, keyword string) ([]core.Treatment, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT treatment_id, name, description, price_range_min, price_range_max, duration_minutes, category
		 FROM treatments WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		 ORDER BY name`, keyword)
	if err != nil {
		return nil, err
	}
	return scanTreatments(rows)
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func (b *Backend) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func scanTreatments(rows pgx.Rows) ([]core.Treatment, error) {
	defer rows.Close()
	var res []core.Treatment
	for rows.Next() {
		var t core.Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.PriceRangeMin, &t.PriceRangeMax, &t.DurationMinutes, &t.Category); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func marshalMeta(meta map[string]any) any {
	if len(meta) == 0 {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return raw
}

func unmarshalMeta(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return meta
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
