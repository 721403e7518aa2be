package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/model"
)

const GamesResourceUri = "virgo://games"

// VirgoMCPServer exposes the lifecycle operations as MCP tools. Domain errors are returned as
// tool errors so the client can show them; only transport problems become protocol errors.
type VirgoMCPServer struct {
	server  *server.MCPServer
	manager *engine.Manager
}

func NewVirgoMCPServer(m *engine.Manager, version string) *VirgoMCPServer {
	srv := server.NewMCPServer(
		"Virgo Game Instances",
		version,
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	vs := &VirgoMCPServer{
		server:  srv,
		manager: m,
	}

	vs.registerTools()
	vs.registerResources()

	return vs
}

func (vs *VirgoMCPServer) ServeStdio() error {
	return server.ServeStdio(vs.server)
}

func (vs *VirgoMCPServer) registerTools() {
	vs.server.AddTool(mcp.NewTool("list_modes",
		mcp.WithDescription("List the game modes that can be launched"),
	), vs.listModesHandler)

	vs.server.AddTool(mcp.NewTool("create_game",
		mcp.WithDescription("Launch a new game instance running the given mode"),
		mcp.WithString("mode",
			mcp.Description("Name of the game mode"),
			mcp.Required(),
		),
	), vs.createGameHandler)

	vs.server.AddTool(mcp.NewTool("list_games",
		mcp.WithDescription("List running game instances with their address and health"),
	), vs.listGamesHandler)

	vs.server.AddTool(mcp.NewTool("kill_games",
		mcp.WithDescription("Terminate game instances by instance id"),
		mcp.WithString("ids",
			mcp.Description("Instance ids separated by spaces or commas"),
		),
	), vs.killGamesHandler)

	vs.server.AddTool(mcp.NewTool("clear_games",
		mcp.WithDescription("Terminate every pending or running game instance"),
	), vs.clearGamesHandler)
}

func (vs *VirgoMCPServer) registerResources() {
	resource := mcp.NewResource(GamesResourceUri, "Virgo Games",
		mcp.WithResourceDescription("Running game instances"),
		mcp.WithMIMEType("application/json"),
	)
	vs.server.AddResource(resource, vs.gamesHandler)
}

func (vs *VirgoMCPServer) listModesHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	modes, err := vs.manager.Catalog.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(engine.Render(err)), nil
	}
	return mcp.NewToolResultText(strings.Join(model.ModeNames(modes), "\n")), nil
}

func (vs *VirgoMCPServer) createGameHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := request.RequireString("mode")
	if err != nil || strings.TrimSpace(mode) == "" {
		return mcp.NewToolResultError("mode argument is required"), nil
	}
	instance, err := vs.manager.Launcher.Launch(ctx, strings.TrimSpace(mode))
	if err != nil {
		return mcp.NewToolResultError(engine.Render(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("launched %s", instance.Listing())), nil
}

func (vs *VirgoMCPServer) listGamesHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines, err := vs.manager.Reconciler.Listing(ctx)
	if err != nil {
		return mcp.NewToolResultError(engine.Render(err)), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (vs *VirgoMCPServer) killGamesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := ParseIds(request.GetString("ids", ""))
	if err := vs.manager.Terminator.TerminateByIds(ctx, ids); err != nil {
		return mcp.NewToolResultError(engine.Render(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("terminated %d instance(s)", len(ids))), nil
}

func (vs *VirgoMCPServer) clearGamesHandler(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := vs.manager.Terminator.TerminateAllManaged(ctx)
	if err != nil {
		return mcp.NewToolResultError(engine.Render(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("terminated %d instance(s)", len(ids))), nil
}

func (vs *VirgoMCPServer) gamesHandler(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	instances, err := vs.manager.Reconciler.Reconcile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	data, err := json.Marshal(map[string]interface{}{
		"count":     len(instances),
		"instances": instances,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal games: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GamesResourceUri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// ParseIds splits a free-form id list on whitespace and commas.
func ParseIds(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
