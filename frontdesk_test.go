package frontdesk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/config"
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/model"
)

func TestAppRunsOneCallEndToEnd(t *testing.T) {
	ctx := context.Background()

	scripted := model.NewScriptedModel(
		model.Response{
			FinishReason: "tool_calls",
			ToolCalls: []model.ToolCall{{
				ID: "c1", Name: "transfer_to_booking",
				Arguments: `{"reason":"wants a checkup"}`,
			}},
		},
		model.Response{Text: "What day suits you?", FinishReason: "stop"},
	)

	app, err := New(ctx, config.Default(), scripted)
	require.NoError(t, err)
	defer app.Close(ctx)

	call, err := app.StartCall(ctx, "room-1", "caller-1")
	require.NoError(t, err)
	assert.Equal(t, "greeter", call.ActiveAgent().Name())

	reply, err := call.Reply(ctx, "I need a checkup")
	require.NoError(t, err)
	assert.Contains(t, reply, "What day suits you?")
	assert.Equal(t, "booking", call.ActiveAgent().Name())

	require.NoError(t, call.End(ctx))

	app.Store().Flush(ctx)
	data, err := app.Store().SessionData(ctx, call.ID())
	require.NoError(t, err)
	assert.Equal(t, core.SessionCompleted, data.Session.Status)
	require.Len(t, data.Transfers, 1)
	assert.Equal(t, "greeter", data.Transfers[0].FromAgent)
	assert.Equal(t, "booking", data.Transfers[0].ToAgent)
	assert.NotEmpty(t, data.Transcripts)
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(context.Background(), config.Default(), nil)
	require.Error(t, err)
}
