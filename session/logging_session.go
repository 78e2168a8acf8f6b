package session

import (
	"context"
	"time"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/state"
)

// LoggingSession decorates a Session with transcript recording and
// response-time measurement. It owns the inner session and is composed at
// construction time; callers that want an unlogged loop just use the Session
// directly.
type LoggingSession struct {
	inner     *Session
	state     *state.CallerState
	collector *metrics.Collector
	logger    logging.Logger
	clock     func() time.Time
}

// NewLoggingSession wraps a session. The state's store and recording flag
// decide whether transcripts are actually queued.
func NewLoggingSession(inner *Session, st *state.CallerState, collector *metrics.Collector, logger logging.Logger) *LoggingSession {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LoggingSession{
		inner:     inner,
		state:     st,
		collector: collector,
		logger:    logger,
		clock:     inner.clock,
	}
}

// Inner returns the wrapped session for lifecycle calls (Start, End).
func (l *LoggingSession) Inner() *Session { return l.inner }

// Reply records the user utterance, delegates to the inner session, then
// records the assistant reply and how long the turn took.
func (l *LoggingSession) Reply(ctx context.Context, userText string) (string, error) {
	l.record(core.RoleUser, userText, nil)

	started := l.clock()
	reply, err := l.inner.Reply(ctx, userText)
	elapsed := l.clock().Sub(started)

	if l.collector != nil {
		l.collector.Collect("latency", "llm_response_latency", elapsed.Seconds(), "seconds", nil)
	}
	if ring := l.state.Ring(); ring != nil {
		ring.Update("response_time", elapsed.Seconds())
	}

	if err != nil {
		l.logger.Error("session.turn.failed", "session_id", l.inner.ID(), "error", err)
		return "", err
	}

	l.record(core.RoleAssistant, reply, map[string]any{
		"response_time_seconds": elapsed.Seconds(),
	})
	return reply, nil
}

func (l *LoggingSession) record(role, content string, metadata map[string]any) {
	wb := l.state.Store()
	if wb == nil || !l.state.Recording() {
		return
	}
	wb.EnqueueTranscript(core.TranscriptEntry{
		SessionID: l.inner.ID(),
		AgentName: l.inner.ActiveAgent().Name(),
		Role:      role,
		Content:   content,
		Metadata:  metadata,
	})
}
