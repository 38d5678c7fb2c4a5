package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"pocket-signal-pro/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, deps Deps) {
	server.AddResource(&mcp.Resource{
		URI:         "catalog://instruments",
		Name:        "catalog-instruments",
		Description: "Every tradable instrument grouped by market category",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, catalogOutput{
			Categories:  deps.Catalog.Categories(),
			Instruments: deps.Catalog.Instruments(),
		})
	})

	server.AddResource(&mcp.Resource{
		URI:         "users://list",
		Name:        "users-list",
		Description: "Every user the bot has seen, with verification state",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if deps.Users == nil {
			return nil, fmt.Errorf("user store unavailable")
		}
		records := deps.Users.List()
		entries := make([]userEntry, 0, len(records))
		for _, u := range records {
			entries = append(entries, toUserEntry(u))
		}
		return jsonResource(req.Params.URI, usersListOutput{Users: entries})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "catalog://durations{?instrument}",
		Name:        "catalog-durations",
		Description: "Valid expiry labels for one instrument; instrument id via query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "catalog" || parsed.Host != "durations" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		raw := strings.TrimSpace(parsed.Query().Get("instrument"))
		inst, err := normalizeInstrument(deps.Catalog, raw)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, map[string]any{
			"instrument": inst.ID,
			"durations":  domain.DurationsFor(inst),
		})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
