package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, deps Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "users_list",
		Description: "List known bot users with their verification state",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in usersListInput) (*mcp.CallToolResult, usersListOutput, error) {
		_ = ctx
		if deps.Users == nil {
			return nil, usersListOutput{}, fmt.Errorf("user store unavailable")
		}
		filter, err := normalizeState(in.State)
		if err != nil {
			return nil, usersListOutput{}, err
		}

		records := deps.Users.List()
		entries := make([]userEntry, 0, len(records))
		for _, u := range records {
			if filter != "" && u.State != filter {
				continue
			}
			entries = append(entries, toUserEntry(u))
		}
		return nil, usersListOutput{Users: entries}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "users_verify",
		Description: "Promote a pending user to verified and notify them",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in usersVerifyInput) (*mcp.CallToolResult, usersVerifyOutput, error) {
		if deps.Promoter == nil {
			return nil, usersVerifyOutput{}, fmt.Errorf("verification workflow unavailable")
		}
		if in.ChatID <= 0 {
			return nil, usersVerifyOutput{}, fmt.Errorf("chat_id must be a positive integer")
		}
		user, changed := deps.Promoter.Promote(ctx, in.ChatID)
		return nil, usersVerifyOutput{User: toUserEntry(user), Changed: changed}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "flags_get",
		Description: "Read the auto-suggestion switch",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ flagsGetInput) (*mcp.CallToolResult, flagsGetOutput, error) {
		_ = ctx
		if deps.Flags == nil {
			return nil, flagsGetOutput{}, fmt.Errorf("flag store unavailable")
		}
		return nil, flagsGetOutput{AutoSuggestions: deps.Flags.AutoSuggestions()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "flags_set",
		Description: "Toggle the auto-suggestion switch",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in flagsSetInput) (*mcp.CallToolResult, flagsSetOutput, error) {
		_ = ctx
		if deps.Flags == nil {
			return nil, flagsSetOutput{}, fmt.Errorf("flag store unavailable")
		}
		deps.Flags.SetAutoSuggestions(in.AutoSuggestions)
		return nil, flagsSetOutput{AutoSuggestions: deps.Flags.AutoSuggestions()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "broadcast_send",
		Description: "Send a message to every known bot user",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in broadcastSendInput) (*mcp.CallToolResult, broadcastSendOutput, error) {
		if deps.Broadcaster == nil {
			return nil, broadcastSendOutput{}, fmt.Errorf("bot not running")
		}
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, broadcastSendOutput{}, fmt.Errorf("text is required")
		}
		sent, failed := deps.Broadcaster.Broadcast(ctx, text)
		if failed == nil {
			failed = []int64{}
		}
		return nil, broadcastSendOutput{Sent: sent, Failed: failed}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "signals_suggest",
		Description: "Generate a signal for a catalog instrument and expiry",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in signalsSuggestInput) (*mcp.CallToolResult, signalsSuggestOutput, error) {
		_ = ctx
		if deps.Suggester == nil {
			return nil, signalsSuggestOutput{}, fmt.Errorf("generator unavailable")
		}
		inst, err := normalizeInstrument(deps.Catalog, in.Instrument)
		if err != nil {
			return nil, signalsSuggestOutput{}, err
		}
		duration, err := normalizeDuration(inst, in.Duration)
		if err != nil {
			return nil, signalsSuggestOutput{}, err
		}
		signal := deps.Suggester.Generate(inst.ID, duration)
		return nil, signalsSuggestOutput{Signal: signal}, nil
	})
}
