// Package frontdesk provides a high-level façade over the scheduling
// assistant's parts: the write-behind store, the agent registry, the handoff
// coordinator and the conversational session loop. Most applications
// interact with this package by:
//  1. Creating an App via New() with a loaded config and a model
//  2. Starting one Call per live interaction (StartCall)
//  3. Feeding caller utterances to Call.Reply and finishing with Call.End
//
// Defaults are safe for local development: without a database URL the store
// runs on the in-memory backend.
package frontdesk

import (
	"context"
	"fmt"
	"time"

	"github.com/voicelane/frontdesk/agent"
	"github.com/voicelane/frontdesk/calendar"
	"github.com/voicelane/frontdesk/config"
	"github.com/voicelane/frontdesk/handoff"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/model"
	"github.com/voicelane/frontdesk/session"
	"github.com/voicelane/frontdesk/state"
	"github.com/voicelane/frontdesk/store"
	"github.com/voicelane/frontdesk/store/memory"
	"github.com/voicelane/frontdesk/store/postgres"
	"github.com/voicelane/frontdesk/tool"
)

// Options overrides App construction defaults.
type Options struct {
	// Logger receives structured events from every layer. Defaults to slog.
	Logger logging.Logger

	// Clock is injected into agents, the coordinator and sessions. Defaults
	// to time.Now.
	Clock func() time.Time

	// Backend overrides the storage engine selected from the config.
	Backend store.Backend
}

// App owns the long-lived pieces shared by all calls: configuration, the
// storage layer and the model.
type App struct {
	cfg    *config.Config
	model  model.Model
	store  *store.WriteBehind
	logger logging.Logger
	clock  func() time.Time
}

// New builds an App, initializes the schema and starts background flushing.
func New(ctx context.Context, cfg *config.Config, m model.Model, optFns ...func(o *Options)) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if m == nil {
		return nil, fmt.Errorf("frontdesk: model is required")
	}

	opts := Options{
		Logger: logging.NewDefaultLogger(),
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	backend := opts.Backend
	if backend == nil {
		if cfg.DatabaseURL != "" {
			pg, err := postgres.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("connect postgres: %w", err)
			}
			backend = pg
		} else {
			backend = memory.New()
		}
	}

	wb := store.New(backend,
		store.WithBatchSize(cfg.BatchSize),
		store.WithFlushInterval(cfg.FlushInterval),
		store.WithLogger(opts.Logger))
	if err := wb.Init(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	wb.Start()

	return &App{
		cfg:    cfg,
		model:  m,
		store:  wb,
		logger: opts.Logger,
		clock:  opts.Clock,
	}, nil
}

// Store exposes the write-behind store for read-back and reporting.
func (a *App) Store() *store.WriteBehind { return a.store }

// Close drains the queues and releases the storage backend.
func (a *App) Close(ctx context.Context) error { return a.store.Close(ctx) }

// Call is one live interaction, from connect to disconnect.
type Call struct {
	session *session.Session
	logged  *session.LoggingSession
	state   *state.CallerState
}

// StartCall creates the durable session record, builds the per-call agent
// set and activates the greeter.
func (a *App) StartCall(ctx context.Context, roomID, participantID string) (*Call, error) {
	sessionID, err := a.store.CreateSession(ctx, roomID, participantID)
	if err != nil {
		return nil, err
	}

	st := state.New(sessionID,
		state.WithStore(a.store),
		state.WithRing(metrics.NewRing()),
		state.WithRecording(a.cfg.Recording))

	facility := tool.Facility{
		Name:    a.cfg.Facility.Name,
		Address: a.cfg.Facility.Address,
		Hours:   a.cfg.Facility.Hours,
	}
	registry := agent.NewDefaultRegistry(agent.Deps{
		Facility: facility,
		Calendar: calendar.NewService(),
		Clock:    a.clock,
	})
	coord := handoff.New(registry, st, facility, a.clock, a.logger)

	filter := metrics.NewFilter(a.cfg.SampleRate, a.cfg.LatencyThreshold)
	collector := metrics.NewCollector(a.store, sessionID, filter)

	inner, err := session.New(session.Config{
		Model:       a.model,
		Registry:    registry,
		Coordinator: coord,
		State:       st,
		Collector:   collector,
		Logger:      a.logger,
		Clock:       a.clock,
	})
	if err != nil {
		return nil, err
	}
	if err := inner.Start(ctx); err != nil {
		return nil, err
	}

	return &Call{
		session: inner,
		logged:  session.NewLoggingSession(inner, st, collector, a.logger),
		state:   st,
	}, nil
}

// ID returns the durable session identifier.
func (c *Call) ID() string { return c.session.ID() }

// ActiveAgent returns the agent currently holding the conversation.
func (c *Call) ActiveAgent() *agent.Agent { return c.session.ActiveAgent() }

// State returns the call's structured state.
func (c *Call) State() *state.CallerState { return c.state }

// Usage returns accumulated token usage.
func (c *Call) Usage() model.Usage { return c.session.Usage() }

// Reply runs one recorded user turn.
func (c *Call) Reply(ctx context.Context, userText string) (string, error) {
	return c.logged.Reply(ctx, userText)
}

// End closes out the interaction.
func (c *Call) End(ctx context.Context) error {
	return c.session.End(ctx)
}
