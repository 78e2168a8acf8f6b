// Package agent defines the closed set of dialogue agent variants and the
// registry that resolves handoff targets. All variants share one capability
// surface: receive on-entry context, expose a fixed toolset, request a
// transfer to a named peer. They differ only in instructions, toolset and
// transfer targets.
package agent

import (
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/tool"
)

// Agent is one dialogue agent variant bound to a live session. The working
// context is owned by the conversational loop and mutated from a single
// goroutine.
type Agent struct {
	kind         Kind
	instructions string
	tools        []tool.Tool
	targets      []Kind
	ctx          *core.ChatContext
}

// New constructs an agent variant.
func New(kind Kind, instructions string, tools []tool.Tool, targets ...Kind) *Agent {
	return &Agent{
		kind:         kind,
		instructions: instructions,
		tools:        tools,
		targets:      targets,
		ctx:          core.NewChatContext(),
	}
}

// Kind returns the agent's variant tag.
func (a *Agent) Kind() Kind { return a.kind }

// Name returns the agent's stable display name.
func (a *Agent) Name() string { return a.kind.String() }

// Instructions returns the agent's operating instructions.
func (a *Agent) Instructions() string { return a.instructions }

// Tools returns the agent's fixed toolset.
func (a *Agent) Tools() []tool.Tool { return a.tools }

// FindTool returns the named tool, or nil when the agent does not expose it.
func (a *Agent) FindTool(name string) tool.Tool {
	for _, t := range a.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// Targets returns the peers this agent may transfer to.
func (a *Agent) Targets() []Kind { return a.targets }

// Context returns the agent's current working context.
func (a *Agent) Context() *core.ChatContext { return a.ctx }

// SetContext replaces the agent's working context, used by the on-entry
// protocol after a handoff.
func (a *Agent) SetContext(ctx *core.ChatContext) {
	if ctx == nil {
		ctx = core.NewChatContext()
	}
	a.ctx = ctx
}

// Registry is the fixed agent set for one session. Lookups by unknown name
// fail with *core.UnknownAgentError.
type Registry struct {
	agents map[string]*Agent
	order  []string
}

// NewRegistry builds a registry from the given agents.
func NewRegistry(agents ...*Agent) *Registry {
	r := &Registry{agents: make(map[string]*Agent, len(agents))}
	for _, a := range agents {
		if _, ok := r.agents[a.Name()]; !ok {
			r.order = append(r.order, a.Name())
		}
		r.agents[a.Name()] = a
	}
	return r
}

// Get resolves an agent by name.
func (r *Registry) Get(name string) (*Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, &core.UnknownAgentError{Name: name}
	}
	return a, nil
}

// Names returns registered agent names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
