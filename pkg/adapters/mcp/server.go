package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI        = "switchboard://graph"
	graphMermaidURI = "switchboard://graph.mmd"
)

// Engine defines what the MCP server needs from the core.
type Engine interface {
	ports.TurnEngine
	Sessions(ctx context.Context) ([]domain.SessionID, error)
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("switchboard-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	runTurn := mcp.NewTool("run_turn",
		mcp.WithDescription("Send one user message to a session. Returns the selected branch (respond, retrieve, tool_call or fail), the resolved intent and the response text."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier; a new session is created on first use")),
		mcp.WithString("user_input", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithOutputSchema[domain.TurnState](),
	)
	s.mcpServer.AddTool(runTurn, mcp.NewStructuredToolHandler(s.handleRunTurn))

	getSession := mcp.NewTool("get_session",
		mcp.WithDescription("Get the persisted history, resolved intent and last action of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithOutputSchema[domain.SessionSnapshot](),
	)
	s.mcpServer.AddTool(getSession, mcp.NewStructuredToolHandler(s.handleGetSession))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the identifiers of stored sessions."),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the routing graph for introspection."),
		mcp.WithString("format", mcp.Description("json (default) or mermaid")),
	), s.handleGetGraph)
}

func (s *Server) handleRunTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.TurnState, error) {
	sessionID, _ := args["session_id"].(string)
	input, _ := args["user_input"].(string)

	clean, err := runner.SanitizeInput(input)
	if err != nil {
		s.logger.Warn("MCP run_turn: input rejected", "err", err, "size", len(input))
		return domain.TurnState{}, fmt.Errorf("input rejected: %w", err)
	}

	state, err := s.engine.Turn(ctx, sessionID, clean)
	if err != nil {
		return domain.TurnState{}, fmt.Errorf("turn failed: %w", err)
	}
	return state, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.SessionSnapshot, error) {
	id, _ := args["session_id"].(string)
	snap, err := s.engine.Session(ctx, domain.SessionID(id))
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("session %q: %w", id, err)
	}
	return snap, nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.Sessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []domain.SessionID{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetString("format", "json") == "mermaid" {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Inspect(), nil)), nil
	}
	data, err := json.Marshal(s.engine.Inspect())
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Routing Graph",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)

	s.mcpServer.AddResource(mcp.NewResource(graphMermaidURI, "Routing Graph (Mermaid)",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), s.readGraphMermaid)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Inspect())
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: graphURI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) readGraphMermaid(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      graphMermaidURI,
			MIMEType: "text/vnd.mermaid",
			Text:     graph.GenerateMermaid(s.engine.Inspect(), nil),
		},
	}, nil
}
