package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/store"
	"github.com/voicelane/frontdesk/store/memory"
)

func newTestStore(t *testing.T) (*store.WriteBehind, *memory.Backend) {
	t.Helper()
	backend := memory.New()
	wb := store.New(backend, store.WithBatchSize(100))
	require.NoError(t, wb.Init(context.Background()))
	return wb, backend
}

func createSession(t *testing.T, wb *store.WriteBehind) string {
	t.Helper()
	id, err := wb.CreateSession(context.Background(), "room-1", "caller-1")
	require.NoError(t, err)
	return id
}

func TestFlushPreservesEnqueueOrder(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	for i := 0; i < 25; i++ {
		wb.EnqueueTranscript(core.TranscriptEntry{
			SessionID: sid,
			AgentName: "greeter",
			Role:      core.RoleUser,
			Content:   fmt.Sprintf("utterance %d", i),
		})
	}
	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Transcripts, 25)
	for i, entry := range data.Transcripts {
		assert.Equal(t, fmt.Sprintf("utterance %d", i), entry.Content)
		assert.NotEmpty(t, entry.MessageID)
	}
}

func TestFlushRespectsBatchSize(t *testing.T) {
	backend := memory.New()
	wb := store.New(backend, store.WithBatchSize(10))
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	for i := 0; i < 25; i++ {
		wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "x"})
	}

	wb.Flush(context.Background())
	assert.Equal(t, 15, wb.QueueDepths()["transcripts"])
	wb.Flush(context.Background())
	wb.Flush(context.Background())
	assert.Equal(t, 0, wb.QueueDepths()["transcripts"])
}

func TestStateSnapshotUpsertIsIdempotent(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	snap := core.StateSnapshot{SessionID: sid, CustomerName: "Ada", CustomerPhone: "555-0101"}
	wb.EnqueueStateSnapshot(snap)
	wb.EnqueueStateSnapshot(snap)
	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.NotNil(t, data.LatestState)
	assert.Equal(t, "Ada", data.LatestState.CustomerName)
}

func TestLatestSnapshotWins(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	wb.EnqueueStateSnapshot(core.StateSnapshot{SessionID: sid, CustomerName: "Ada"})
	wb.EnqueueStateSnapshot(core.StateSnapshot{SessionID: sid, CustomerName: "Ada Lovelace", CustomerPhone: "555-0101"})
	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.NotNil(t, data.LatestState)
	assert.Equal(t, "Ada Lovelace", data.LatestState.CustomerName)
	assert.Equal(t, "555-0101", data.LatestState.CustomerPhone)
}

func TestSessionLifecycle(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	require.NoError(t, wb.EndSession(context.Background(), sid, 42))

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, core.SessionCompleted, data.Session.Status)
	require.NotNil(t, data.Session.DurationSeconds)
	assert.Equal(t, 42, *data.Session.DurationSeconds)
	require.NotNil(t, data.Session.EndTime)
}

func TestEndUnknownSessionFails(t *testing.T) {
	wb, _ := newTestStore(t)
	err := wb.EndSession(context.Background(), "nope", 1)
	var perr *core.PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestTransfersRideTheAuditQueue(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	wb.EnqueueTransfer(core.AgentTransfer{SessionID: sid, FromAgent: "greeter", ToAgent: "booking"})
	assert.Equal(t, 1, wb.QueueDepths()["transfers"])

	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Transfers, 1)
	assert.Equal(t, "booking", data.Transfers[0].ToAgent)
}

func TestStopPerformsFinalDrain(t *testing.T) {
	wb, _ := newTestStore(t)
	sid := createSession(t, wb)

	wb.Start()
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "goodbye"})
	wb.Stop(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Transcripts, 1)

	// closed store drops further enqueues
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "too late"})
	assert.Equal(t, 0, wb.QueueDepths()["transcripts"])
}

func TestBackgroundLoopFlushesPeriodically(t *testing.T) {
	backend := memory.New()
	wb := store.New(backend, store.WithFlushInterval(10*time.Millisecond))
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	wb.Start()
	defer wb.Stop(context.Background())

	wb.EnqueueMetric(core.Metric{SessionID: sid, Type: "llm", Name: "llm_latency", Value: 0.8})

	require.Eventually(t, func() bool {
		data, err := wb.SessionData(context.Background(), sid)
		return err == nil && len(data.Metrics) == 1
	}, time.Second, 5*time.Millisecond)
}

// failingBackend wraps the memory backend and fails transcript inserts until
// allowed, exercising the requeue-on-failure path.
type failingBackend struct {
	*memory.Backend
	allow bool
}

func (f *failingBackend) InsertTranscripts(ctx context.Context, batch []core.TranscriptEntry) error {
	if !f.allow {
		return errors.New("backend unavailable")
	}
	return f.Backend.InsertTranscripts(ctx, batch)
}

func TestFailedFlushRequeuesAtHead(t *testing.T) {
	backend := &failingBackend{Backend: memory.New()}
	wb := store.New(backend)
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "first"})
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "second"})

	wb.Flush(context.Background())
	assert.Equal(t, 2, wb.QueueDepths()["transcripts"])

	backend.allow = true
	wb.Flush(context.Background())

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Transcripts, 2)
	assert.Equal(t, "first", data.Transcripts[0].Content)
	assert.Equal(t, "second", data.Transcripts[1].Content)
}

// gatedBackend wraps the memory backend and stalls the first transcript
// insert until released, so tests can hold a flush mid-write.
type gatedBackend struct {
	*memory.Backend
	entered   chan struct{}
	release   chan struct{}
	failFirst bool

	mu    sync.Mutex
	calls int
}

func newGatedBackend(failFirst bool) *gatedBackend {
	return &gatedBackend{
		Backend:   memory.New(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
		failFirst: failFirst,
	}
}

func (g *gatedBackend) InsertTranscripts(ctx context.Context, batch []core.TranscriptEntry) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		close(g.entered)
		<-g.release
		if g.failFirst {
			return errors.New("backend unavailable")
		}
	}
	return g.Backend.InsertTranscripts(ctx, batch)
}

func TestConcurrentFlushesPreserveEnqueueOrder(t *testing.T) {
	backend := newGatedBackend(true)
	wb := store.New(backend)
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "one"})
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "two"})

	first := make(chan struct{})
	go func() {
		wb.Flush(context.Background())
		close(first)
	}()
	<-backend.entered

	// the first flush holds its popped batch mid-write; a second flush must
	// wait for it, not drain newer items underneath the pending requeue
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "three"})
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "four"})
	second := make(chan struct{})
	go func() {
		wb.Flush(context.Background())
		close(second)
	}()

	close(backend.release)
	<-first
	<-second

	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, data.Transcripts, 4)
	for i, want := range []string{"one", "two", "three", "four"} {
		assert.Equal(t, want, data.Transcripts[i].Content)
	}
}

func TestEnqueueStaysLegalUntilStopCompletes(t *testing.T) {
	backend := newGatedBackend(false)
	wb := store.New(backend)
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "goodbye"})

	stopped := make(chan struct{})
	go func() {
		wb.Stop(context.Background())
		close(stopped)
	}()
	<-backend.entered

	// arrives during the final drain window: accepted, stays pending
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "racing"})
	assert.Equal(t, 1, wb.QueueDepths()["transcripts"])

	close(backend.release)
	<-stopped

	// after Stop completes the store is closed and enqueues are dropped
	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "too late"})
	assert.Equal(t, 1, wb.QueueDepths()["transcripts"])
}

func TestIndependentQueueFlush(t *testing.T) {
	backend := &failingBackend{Backend: memory.New()}
	wb := store.New(backend)
	require.NoError(t, wb.Init(context.Background()))
	sid := createSession(t, wb)

	wb.EnqueueTranscript(core.TranscriptEntry{SessionID: sid, Role: core.RoleUser, Content: "stuck"})
	wb.EnqueueMetric(core.Metric{SessionID: sid, Type: "llm", Name: "llm_latency", Value: 0.9})

	wb.Flush(context.Background())

	// transcripts failed and were requeued; metrics flushed anyway
	assert.Equal(t, 1, wb.QueueDepths()["transcripts"])
	data, err := wb.SessionData(context.Background(), sid)
	require.NoError(t, err)
	assert.Len(t, data.Metrics, 1)
}
