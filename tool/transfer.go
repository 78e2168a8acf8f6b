package tool

import "fmt"

// NewTransferTool requests a handoff to a fixed named peer. Each dialogue
// agent exposes one transfer tool per allowed target, keeping the transfer
// graph a closed set.
func NewTransferTool(target, description string) Tool {
	return NewFunctionTool(
		"transfer_to_"+target,
		description,
		objectSchema(map[string]any{
			"reason": stringParam("Optional short reason for the transfer"),
		}),
		func(tc *Context, args map[string]any) (any, error) {
			reason := optionalStringArg(args, "reason")
			if reason == "" {
				reason = fmt.Sprintf("Transfer from %s to %s", tc.AgentName(), target)
			}
			tc.RequestTransfer(target, reason)
			return map[string]any{"transferred": true, "agent": target}, nil
		},
	)
}
