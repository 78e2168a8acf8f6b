package core

import "time"

// Item is one element of an agent's working context: a user or assistant
// message, an injected system instruction, or a recorded function call turn.
// The ID is the stable identity used for de-duplication when context is
// carried across a handoff.
type Item struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItem creates a context item with a fresh identity and timestamp.
func NewItem(role, content string) Item {
	return Item{ID: NewID(), Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// ChatContext is the ordered working context of one dialogue agent. It is not
// safe for concurrent mutation; the conversational loop owns it and mutates
// it from a single goroutine.
//
// Contract:
//   - Clone returns a deep copy safe for independent mutation
//   - Truncate keeps the most recent items, bounding growth across handoffs
//   - Merge appends only items whose IDs are not already present
type ChatContext struct {
	Items []Item `json:"items"`
}

// NewChatContext returns an empty chat context.
func NewChatContext() *ChatContext { return &ChatContext{} }

// Append adds an item to the end of the context.
func (c *ChatContext) Append(item Item) { c.Items = append(c.Items, item) }

// AddMessage appends a freshly identified item with the given role and content.
func (c *ChatContext) AddMessage(role, content string) Item {
	item := NewItem(role, content)
	c.Append(item)
	return item
}

// Len returns the number of items.
func (c *ChatContext) Len() int { return len(c.Items) }

// Last returns the most recent item and true, or a zero item and false when
// the context is empty.
func (c *ChatContext) Last() (Item, bool) {
	if len(c.Items) == 0 {
		return Item{}, false
	}
	return c.Items[len(c.Items)-1], true
}

// Clone returns a deep copy of the context.
func (c *ChatContext) Clone() *ChatContext {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	return &ChatContext{Items: items}
}

// CloneForHandoff copies the context for transfer to another agent: system
// instructions are excluded while function call turns are kept, so the
// incoming agent sees what happened without inheriting the outgoing agent's
// operating instructions.
func (c *ChatContext) CloneForHandoff() *ChatContext {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Role == RoleSystem {
			continue
		}
		items = append(items, item)
	}
	return &ChatContext{Items: items}
}

// Truncate keeps at most the maxItems most recent items.
func (c *ChatContext) Truncate(maxItems int) *ChatContext {
	if maxItems >= 0 && len(c.Items) > maxItems {
		c.Items = c.Items[len(c.Items)-maxItems:]
	}
	return c
}

// Merge appends items from other whose IDs are not already present,
// preserving their order.
func (c *ChatContext) Merge(other *ChatContext) {
	if other == nil {
		return
	}
	existing := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		existing[item.ID] = struct{}{}
	}
	for _, item := range other.Items {
		if _, ok := existing[item.ID]; ok {
			continue
		}
		c.Items = append(c.Items, item)
		existing[item.ID] = struct{}{}
	}
}
