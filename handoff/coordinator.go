// Package handoff moves conversational authority between dialogue agents.
// A transfer resolves the target against the fixed registry, records the
// outgoing agent, bumps the transfer metric and queues an audit record; the
// on-entry protocol then rebuilds the incoming agent's working context from
// a bounded, deduplicated slice of the outgoing one.
package handoff

import (
	"fmt"
	"time"

	"github.com/voicelane/frontdesk/agent"
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/state"
	"github.com/voicelane/frontdesk/tool"
)

// carriedItems caps how many items of the outgoing agent's context an
// incoming agent inherits, so context stays bounded across many hops.
const carriedItems = 6

// Coordinator owns the transfer protocol for one session.
type Coordinator struct {
	registry *agent.Registry
	state    *state.CallerState
	facility tool.Facility
	clock    func() time.Time
	logger   logging.Logger
}

// New builds a coordinator. The store and metrics ring are taken from the
// session state, matching where the rest of the conversational loop finds
// them.
func New(registry *agent.Registry, st *state.CallerState, facility tool.Facility, clock func() time.Time, logger logging.Logger) *Coordinator {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Coordinator{
		registry: registry,
		state:    st,
		facility: facility,
		clock:    clock,
		logger:   logger,
	}
}

// Transfer moves authority to the named agent and returns it together with a
// spoken transition message.
func (c *Coordinator) Transfer(target, reason string) (*agent.Agent, string, error) {
	message := fmt.Sprintf("Transferring you to our %s assistant.", target)
	return c.transfer(target, reason, message)
}

// SilentTransfer moves authority without a spoken acknowledgment. Used when
// the conversation should continue seamlessly, for example after a confirmed
// reservation hands back to the greeter.
func (c *Coordinator) SilentTransfer(target, reason string) (*agent.Agent, error) {
	a, _, err := c.transfer(target, reason, "")
	return a, err
}

func (c *Coordinator) transfer(target, reason, message string) (*agent.Agent, string, error) {
	next, err := c.registry.Get(target)
	if err != nil {
		return nil, "", err
	}

	from := c.state.CurrentAgent()
	c.state.RecordHandoff(from)

	if ring := c.state.Ring(); ring != nil {
		ring.Increment("agent_transfer")
	}
	if wb := c.state.Store(); wb != nil {
		wb.EnqueueTransfer(core.AgentTransfer{
			SessionID: c.state.SessionID(),
			FromAgent: from,
			ToAgent:   target,
			Reason:    reason,
		})
	}

	c.logger.Info("handoff.transfer", "from", from, "to", target, "reason", reason)

	c.Enter(next)
	return next, message, nil
}

// Enter runs the on-entry protocol for an agent that just became active: the
// incoming context is the agent's own non-system items, merged with up to
// carriedItems recent non-system items from the outgoing agent, deduplicated
// by item ID, followed by one fresh system message carrying the agent's
// role, the wall clock, facility facts and the current state summary.
func (c *Coordinator) Enter(next *agent.Agent) {
	prevName := c.state.CurrentAgent()

	entry := next.Context().CloneForHandoff()
	if prevName != "" && prevName != next.Name() {
		if prev, err := c.registry.Get(prevName); err == nil {
			entry.Merge(prev.Context().CloneForHandoff().Truncate(carriedItems))
		}
	}
	entry.AddMessage(core.RoleSystem, c.entryInstructions(next))
	next.SetContext(entry)

	if ring := c.state.Ring(); ring != nil {
		ring.Increment("agent_" + next.Name() + "_entered")
	}
	if wb := c.state.Store(); wb != nil && c.state.Recording() {
		wb.EnqueueTranscript(core.TranscriptEntry{
			SessionID: c.state.SessionID(),
			AgentName: next.Name(),
			Role:      core.RoleSystem,
			Content:   fmt.Sprintf("Agent %s entered", next.Name()),
		})
	}

	c.state.SetCurrentAgent(next.Name())
}

func (c *Coordinator) entryInstructions(a *agent.Agent) string {
	return fmt.Sprintf("%s\n\nThe current date and time is %s.\n%s\n\nWhat we know about the caller so far:\n%s",
		a.Instructions(),
		c.clock().Format("Monday, January 2 2006 at 15:04"),
		c.facility.Describe(),
		c.state.Summarize())
}
