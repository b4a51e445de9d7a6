// Package mcpserver binds an *engine.Engine to the six MCP tools spec.md §6
// defines, over stdio transport only — HTTP and any other binding are
// explicit non-goals. Grounded on lci's internal/mcp: one mcp.NewServer,
// one AddTool call per operation, JSON argument decoding by hand in each
// handler, and a uniform success/error TextContent envelope.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/engine"
	"github.com/snipe-dev/snipe/internal/types"
)

type toolHandler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// withRequestID tags every tool invocation with a short correlation ID in
// the debug log, so a multi-call sequence (analyze, then save_diagnostics,
// then graph) can be traced through stderr by request rather than by tool
// name alone.
func withRequestID(tool string, h toolHandler) toolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqID := uuid.NewString()
		debug.LogMCP("%s [%s] start", tool, reqID)
		result, err := h(ctx, req)
		debug.LogMCP("%s [%s] done err=%v", tool, reqID, err)
		return result, err
	}
}

// Server owns the MCP-facing tool registration; all analysis state lives in
// the wrapped Engine.
type Server struct {
	eng    *engine.Engine
	server *mcp.Server
}

func New(eng *engine.Engine) *Server {
	s := &Server{
		eng: eng,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "snipe-mcp-server",
			Version: "0.1.0",
		}, nil),
	}
	s.registerTools()
	return s
}

// Run blocks serving requests over stdio until ctx is canceled or the
// transport closes.
func (s *Server) Run(ctx context.Context) error {
	debug.LogMCP("starting snipe MCP server on stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "analyze",
		Description: "Analyze an in-editor buffer for cross-file semantic defects against its repo's symbol graph, without requiring the file to be saved.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"content": {
					Type:        "string",
					Description: "Full current buffer text.",
				},
				"file_path": {
					Type:        "string",
					Description: "Absolute path of the file the buffer belongs to.",
				},
				"repo_path": {
					Type:        "string",
					Description: "Absolute path to the repo root this file belongs to.",
				},
				"open_buffers": {
					Type:        "array",
					Description: "Other unsaved buffers open in the editor, each overriding its file's on-disk content for this analysis only.",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"file_path": {Type: "string"},
							"content":   {Type: "string"},
						},
						Required: []string{"file_path", "content"},
					},
				},
			},
			Required: []string{"content", "file_path", "repo_path"},
		},
	}, withRequestID("analyze", s.handleAnalyze))

	s.server.AddTool(&mcp.Tool{
		Name:        "refresh",
		Description: "Force a full rescan of a repo's symbol graph, discarding any incremental state.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"repo_path": {Type: "string", Description: "Absolute path to the repo root."},
			},
			Required: []string{"repo_path"},
		},
	}, withRequestID("refresh", s.handleRefresh))

	s.server.AddTool(&mcp.Tool{
		Name:        "symbols",
		Description: "List every symbol currently indexed for a repo.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"repo_path": {Type: "string", Description: "Absolute path to the repo root."},
			},
			Required: []string{"repo_path"},
		},
	}, withRequestID("symbols", s.handleSymbols))

	s.server.AddTool(&mcp.Tool{
		Name:        "graph",
		Description: "Return the node/edge visualization of a repo's file and symbol graph, with the most recently saved diagnostics flagged.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"repo_path": {Type: "string", Description: "Absolute path to the repo root."},
			},
			Required: []string{"repo_path"},
		},
	}, withRequestID("graph", s.handleGraph))

	s.server.AddTool(&mcp.Tool{
		Name:        "health",
		Description: "Report whether the analysis server is up.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
		},
	}, withRequestID("health", s.handleHealth))

	s.server.AddTool(&mcp.Tool{
		Name:        "save_diagnostics",
		Description: "Persist a set of diagnostics for a repo, so the graph view can flag the files and symbols they belong to.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"repo_path": {Type: "string", Description: "Absolute path to the repo root."},
				"diagnostics": {
					Type:        "array",
					Description: "Diagnostics to persist.",
					Items: &jsonschema.Schema{
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"file":     {Type: "string"},
							"line":     {Type: "integer"},
							"severity": {Type: "string"},
							"code":     {Type: "string"},
							"message":  {Type: "string"},
						},
						Required: []string{"file", "line", "severity", "code", "message"},
					},
				},
			},
			Required: []string{"repo_path", "diagnostics"},
		},
	}, withRequestID("save_diagnostics", s.handleSaveDiagnostics))
}

type openBufferArg struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type analyzeArgs struct {
	Content     string          `json:"content"`
	FilePath    string          `json:"file_path"`
	RepoPath    string          `json:"repo_path"`
	OpenBuffers []openBufferArg `json:"open_buffers"`
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("analyze", err)
	}

	buffers := make([]engine.BufferInput, 0, len(args.OpenBuffers))
	for _, ob := range args.OpenBuffers {
		buffers = append(buffers, engine.BufferInput{Path: ob.FilePath, Content: []byte(ob.Content)})
	}

	diags, err := s.eng.Analyze(ctx, []byte(args.Content), args.FilePath, args.RepoPath, buffers)
	if err != nil {
		return errorResult("analyze", err)
	}
	return jsonResult(map[string]interface{}{"diagnostics": diags})
}

type repoArgs struct {
	RepoPath string `json:"repo_path"`
}

func (s *Server) handleRefresh(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args repoArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("refresh", err)
	}
	count, err := s.eng.Refresh(ctx, args.RepoPath)
	if err != nil {
		return errorResult("refresh", err)
	}
	return jsonResult(map[string]interface{}{"symbol_count": count})
}

func (s *Server) handleSymbols(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args repoArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("symbols", err)
	}
	syms, err := s.eng.Symbols(ctx, args.RepoPath)
	if err != nil {
		return errorResult("symbols", err)
	}
	return jsonResult(map[string]interface{}{"symbols": syms})
}

func (s *Server) handleGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args repoArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("graph", err)
	}
	g, err := s.eng.Graph(ctx, args.RepoPath)
	if err != nil {
		return errorResult("graph", err)
	}
	return jsonResult(g)
}

func (s *Server) handleHealth(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{"status": s.eng.Health()})
}

type saveDiagnosticsArgs struct {
	RepoPath    string             `json:"repo_path"`
	Diagnostics []types.Diagnostic `json:"diagnostics"`
}

func (s *Server) handleSaveDiagnostics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args saveDiagnosticsArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return errorResult("save_diagnostics", err)
	}
	if err := s.eng.SaveDiagnostics(ctx, args.RepoPath, args.Diagnostics); err != nil {
		return errorResult("save_diagnostics", err)
	}
	return jsonResult(map[string]interface{}{"saved": len(args.Diagnostics)})
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

// errorResult reports a tool failure inside the result body with IsError
// set, per the MCP SDK contract: a transport-level error hides the message
// from the calling model, so every handler failure is surfaced this way
// instead of as a Go error return.
func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	result, marshalErr := jsonResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	result.IsError = true
	return result, nil
}
