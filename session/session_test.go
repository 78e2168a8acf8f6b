package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/agent"
	"github.com/voicelane/frontdesk/calendar"
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/handoff"
	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/model"
	"github.com/voicelane/frontdesk/state"
	"github.com/voicelane/frontdesk/store"
	"github.com/voicelane/frontdesk/store/memory"
	"github.com/voicelane/frontdesk/tool"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	session   *Session
	state     *state.CallerState
	store     *store.WriteBehind
	clock     *fakeClock
	collector *metrics.Collector
}

func newFixture(t *testing.T, m model.Model) *fixture {
	t.Helper()

	wb := store.New(memory.New())
	require.NoError(t, wb.Init(context.Background()))

	sessionID, err := wb.CreateSession(context.Background(), "room-1", "caller-1")
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	st := state.New(sessionID,
		state.WithStore(wb),
		state.WithRing(metrics.NewRing()),
		state.WithRecording(true))

	facility := tool.Facility{
		Name:    "SmileRight Dental Clinic",
		Address: "5561 St-Denis Street, Montreal",
		Hours:   "Monday to Friday, 8:00 to 12:00 and 13:00 to 18:00",
	}
	registry := agent.NewDefaultRegistry(agent.Deps{
		Facility: facility,
		Calendar: calendar.NewService(),
		Clock:    clock.Now,
	})
	coord := handoff.New(registry, st, facility, clock.Now, nil)

	// sample rate 0 keeps only critical names, so metric assertions stay
	// deterministic
	filter := metrics.NewFilter(0, metrics.DefaultLatencyThreshold)
	collector := metrics.NewCollector(wb, sessionID, filter)

	sess, err := New(Config{
		Model:       m,
		Registry:    registry,
		Coordinator: coord,
		State:       st,
		Collector:   collector,
		Clock:       clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, sess.Start(context.Background()))

	return &fixture{session: sess, state: st, store: wb, clock: clock, collector: collector}
}

func textResponse(text string) model.Response {
	return model.Response{Text: text, FinishReason: "stop", Usage: &model.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
}

func toolCallResponse(id, name, args string) model.Response {
	return model.Response{
		FinishReason: "tool_calls",
		ToolCalls:    []model.ToolCall{{ID: id, Name: name, Arguments: args}},
	}
}

func TestReplyPlainText(t *testing.T) {
	scripted := model.NewScriptedModel(textResponse("Hello, how can I help you today?"))
	f := newFixture(t, scripted)

	reply, err := f.session.Reply(context.Background(), "hi there")
	require.NoError(t, err)
	assert.Equal(t, "Hello, how can I help you today?", reply)

	last, ok := f.session.ActiveAgent().Context().Last()
	require.True(t, ok)
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Equal(t, reply, last.Content)
}

func TestReplyDispatchesToolCall(t *testing.T) {
	// the greeter exposes clinic_info, so run against it directly
	scripted := model.NewScriptedModel(
		toolCallResponse("call-1", "get_clinic_info", "{}"),
		textResponse("We are on St-Denis Street."),
	)
	f := newFixture(t, scripted)

	reply, err := f.session.Reply(context.Background(), "where are you located?")
	require.NoError(t, err)
	assert.Equal(t, "We are on St-Denis Street.", reply)

	// second request carries the tool result back to the model
	requests := scripted.Requests()
	require.Len(t, requests, 2)
	last := requests[1].Messages[len(requests[1].Messages)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Contains(t, last.Content, "SmileRight")
}

func TestReplyAppliesTransfer(t *testing.T) {
	scripted := model.NewScriptedModel(
		toolCallResponse("call-1", "transfer_to_booking", `{"reason":"wants an appointment"}`),
		textResponse("What day works for you?"),
	)
	f := newFixture(t, scripted)

	reply, err := f.session.Reply(context.Background(), "I want to book a cleaning")
	require.NoError(t, err)
	assert.Contains(t, reply, "booking")
	assert.Contains(t, reply, "What day works for you?")
	assert.Equal(t, "booking", f.session.ActiveAgent().Name())
	assert.Equal(t, "booking", f.state.CurrentAgent())
	assert.Equal(t, "greeter", f.state.PrevAgent())

	// the post-transfer request uses the booking agent's rebuilt context,
	// with exactly one fresh system message
	requests := scripted.Requests()
	require.Len(t, requests, 2)
	systems := 0
	for _, msg := range requests[1].Messages {
		if msg.Role == "system" {
			systems++
		}
	}
	assert.Equal(t, 1, systems)

	hasBookingTool := false
	for _, def := range requests[1].Tools {
		if def.Name == "confirm_reservation" {
			hasBookingTool = true
		}
	}
	assert.True(t, hasBookingTool)
}

func TestReplyUnknownToolIsRecoverable(t *testing.T) {
	scripted := model.NewScriptedModel(
		toolCallResponse("call-1", "launch_rocket", "{}"),
		textResponse("Sorry, I cannot do that."),
	)
	f := newFixture(t, scripted)

	reply, err := f.session.Reply(context.Background(), "launch the rocket")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I cannot do that.", reply)
}

func TestReplyBoundsToolSteps(t *testing.T) {
	var responses []model.Response
	for i := 0; i < DefaultMaxToolSteps+1; i++ {
		responses = append(responses, toolCallResponse("call", "get_clinic_info", "{}"))
	}
	f := newFixture(t, model.NewScriptedModel(responses...))

	_, err := f.session.Reply(context.Background(), "loop forever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool steps")
}

func TestReplyToolUpdatesState(t *testing.T) {
	scripted := model.NewScriptedModel(
		toolCallResponse("call-1", "transfer_to_booking", "{}"),
		toolCallResponse("call-2", "update_name", `{"name":"Marie Tremblay"}`),
		textResponse("Thanks Marie."),
	)
	f := newFixture(t, scripted)

	_, err := f.session.Reply(context.Background(), "book me in, my name is Marie Tremblay")
	require.NoError(t, err)
	assert.Equal(t, "Marie Tremblay", f.state.CustomerName())
}

func TestEndWritesDurationAndMetric(t *testing.T) {
	f := newFixture(t, model.NewScriptedModel(textResponse("bye")))

	f.clock.Advance(95 * time.Second)
	require.NoError(t, f.session.End(context.Background()))

	f.store.Flush(context.Background())
	data, err := f.store.SessionData(context.Background(), f.session.ID())
	require.NoError(t, err)

	assert.Equal(t, core.SessionCompleted, data.Session.Status)
	require.NotNil(t, data.Session.DurationSeconds)
	assert.Equal(t, 95, *data.Session.DurationSeconds)

	found := false
	for _, m := range data.Metrics {
		if m.Name == "session_duration" {
			found = true
			assert.Equal(t, float64(95), m.Value)
		}
	}
	assert.True(t, found)

	_, err = f.session.Reply(context.Background(), "anyone there?")
	require.Error(t, err)
}

func TestEndIsIdempotent(t *testing.T) {
	f := newFixture(t, model.NewScriptedModel())

	require.NoError(t, f.session.End(context.Background()))
	require.NoError(t, f.session.End(context.Background()))
}

func TestLoggingSessionRecordsTurn(t *testing.T) {
	scripted := model.NewScriptedModel(textResponse("Hello!"))
	f := newFixture(t, scripted)

	logged := NewLoggingSession(f.session, f.state, f.collector, nil)

	reply, err := logged.Reply(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	f.store.Flush(context.Background())
	data, err := f.store.SessionData(context.Background(), f.session.ID())
	require.NoError(t, err)

	var userSeen, assistantSeen bool
	for _, entry := range data.Transcripts {
		switch {
		case entry.Role == core.RoleUser && entry.Content == "hi":
			userSeen = true
		case entry.Role == core.RoleAssistant && entry.Content == "Hello!":
			assistantSeen = true
		}
	}
	assert.True(t, userSeen)
	assert.True(t, assistantSeen)

	_, ok := f.state.Ring().Get("response_time")
	assert.True(t, ok)
}

func TestUsageAccumulatesAcrossTurns(t *testing.T) {
	scripted := model.NewScriptedModel(textResponse("one"), textResponse("two"))
	f := newFixture(t, scripted)

	_, err := f.session.Reply(context.Background(), "first")
	require.NoError(t, err)
	_, err = f.session.Reply(context.Background(), "second")
	require.NoError(t, err)

	assert.Equal(t, 30, f.session.Usage().TotalTokens)
}
