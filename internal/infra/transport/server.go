// Package transport exposes the tool-discovery service over MCP, on
// stdio or streamable HTTP.
package transport

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolscout/internal/buildinfo"
	"toolscout/internal/domain"
	"toolscout/internal/infra/telemetry"
)

// CatalogProvider serves catalog snapshots and rescans.
type CatalogProvider interface {
	Snapshot(ctx context.Context) (domain.CatalogState, error)
	Rescan(ctx context.Context, directory string) (int, error)
}

// Recommender selects tools for a query.
type Recommender interface {
	Recommend(ctx context.Context, params domain.RecommendParams, state domain.CatalogState) domain.RecommendResult
	SelectRegistryTool(ctx context.Context, query string, index domain.RegistryIndex) (*domain.RegistryTool, error)
}

// Server wires the discovery service into an MCP server.
type Server struct {
	provider    CatalogProvider
	recommender Recommender
	registry    domain.RegistryIndex
	logger      *zap.Logger
	server      *mcp.Server
}

// Options configures a Server.
type Options struct {
	Provider    CatalogProvider
	Recommender Recommender
	Registry    domain.RegistryIndex
	Logger      *zap.Logger
}

// NewServer builds the MCP server and registers the discovery tools.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		provider:    opts.Provider,
		recommender: opts.Recommender,
		registry:    opts.Registry,
		logger:      logger.Named("transport"),
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "toolscout",
		Version: buildinfo.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	recommendTool := RecommendToolsTool()
	s.server.AddTool(&recommendTool, s.handleRecommendTools)

	scanTool := ScanToolsDirectoryTool()
	s.server.AddTool(&scanTool, s.handleScanToolsDirectory)

	listTool := ListToolsTool()
	s.server.AddTool(&listTool, s.handleListTools)

	return s
}

// MCPServer exposes the underlying server for transports and tests.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// RunStdio serves MCP over stdin/stdout until ctx is done.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

type recommendArguments struct {
	QueryDescription string `json:"query_description"`
	TopK             int    `json:"top_k"`
}

type scanArguments struct {
	DirectoryPath string `json:"directory_path"`
}

type scanResponse struct {
	Success         bool   `json:"success"`
	Directory       string `json:"directory"`
	ToolsDiscovered int    `json:"tools_discovered"`
	Error           string `json:"error,omitempty"`
}

// handleRecommendTools runs a recommendation request. Service failures
// come back as an unsuccessful payload, never as MCP errors, so agents
// can always parse the result shape.
func (s *Server) handleRecommendTools(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, _ = telemetry.EnsureRequestID(ctx)
	logger := telemetry.LoggerWithRequest(ctx, s.logger)

	var args recommendArguments
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolResult(domain.FailedRecommendation("",
			domain.E(domain.CodeInvalidArgument, "transport.recommend_tools", "invalid arguments", err)))
	}

	state, err := s.provider.Snapshot(ctx)
	if err != nil {
		return toolResult(domain.FailedRecommendation(args.QueryDescription, err))
	}

	logger.Info("recommendation requested",
		zap.String("query", args.QueryDescription),
		zap.Int("top_k", args.TopK),
		zap.Int("catalog_tools", state.Catalog.Len()))

	result := s.recommender.Recommend(ctx, domain.RecommendParams{
		Query: args.QueryDescription,
		TopK:  args.TopK,
	}, state)

	// Registry consultation is best effort and never fails the request.
	if result.Success && !s.registry.Empty() {
		tool, err := s.recommender.SelectRegistryTool(ctx, result.Query, s.registry)
		if err != nil {
			logger.Warn("registry selection failed", zap.Error(err))
		} else {
			result.RegistryTool = tool
		}
	}

	return toolResult(result)
}

func (s *Server) handleScanToolsDirectory(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args scanArguments
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolResult(scanResponse{Error: "invalid arguments: " + err.Error()})
	}
	if args.DirectoryPath == "" {
		return toolResult(scanResponse{Error: "directory_path is required"})
	}

	count, err := s.provider.Rescan(ctx, args.DirectoryPath)
	if err != nil {
		return toolResult(scanResponse{Directory: args.DirectoryPath, Error: err.Error()})
	}
	return toolResult(scanResponse{
		Success:         true,
		Directory:       args.DirectoryPath,
		ToolsDiscovered: count,
	})
}

func (s *Server) handleListTools(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.provider.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toolResult(state.Summary())
}

// toolResult encodes a payload as both text and structured content.
func toolResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		StructuredContent: payload,
	}, nil
}
