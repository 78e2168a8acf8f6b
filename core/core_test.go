package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatContextCloneIsIndependent(t *testing.T) {
	ctx := NewChatContext()
	ctx.AddMessage(RoleUser, "hello")

	clone := ctx.Clone()
	clone.AddMessage(RoleAssistant, "hi there")

	assert.Equal(t, 1, ctx.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestCloneForHandoffDropsSystemKeepsFunctionCalls(t *testing.T) {
	ctx := NewChatContext()
	ctx.AddMessage(RoleSystem, "you are the greeter")
	ctx.AddMessage(RoleUser, "I need an appointment")
	ctx.AddMessage(RoleFunctionCall, "update_name(name=Ada)")
	ctx.AddMessage(RoleAssistant, "noted")

	carried := ctx.CloneForHandoff()

	require.Equal(t, 3, carried.Len())
	for _, item := range carried.Items {
		assert.NotEqual(t, RoleSystem, item.Role)
	}
}

func TestTruncateKeepsMostRecent(t *testing.T) {
	ctx := NewChatContext()
	for i := 0; i < 10; i++ {
		ctx.AddMessage(RoleUser, "msg")
	}
	last := ctx.Items[9].ID

	ctx.Truncate(6)

	require.Equal(t, 6, ctx.Len())
	assert.Equal(t, last, ctx.Items[5].ID)
}

func TestMergeSkipsDuplicateIDs(t *testing.T) {
	a := NewChatContext()
	shared := a.AddMessage(RoleUser, "shared")

	b := NewChatContext()
	b.Append(shared)
	b.AddMessage(RoleAssistant, "fresh")

	a.Merge(b)

	require.Equal(t, 2, a.Len())
	seen := map[string]bool{}
	for _, item := range a.Items {
		assert.False(t, seen[item.ID], "duplicate item id after merge")
		seen[item.ID] = true
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError("create_session", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create_session")
}

func TestUnknownAgentErrorMessage(t *testing.T) {
	err := &UnknownAgentError{Name: "concierge"}
	assert.Contains(t, err.Error(), "concierge")
}
