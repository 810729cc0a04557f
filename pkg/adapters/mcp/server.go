package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/internal/presentation/graph"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RoutesURI is the resource holding the registered handlers.
const RoutesURI = "stater://routes"

// HandlerInfo mirrors the HandlerInfo schema of the HTTP API.
type HandlerInfo struct {
	Name     string `json:"name" jsonschema_description:"Handler name"`
	Origin   string `json:"origin" jsonschema_description:"Where the handler was declared, as file:line"`
	Trigger  string `json:"trigger" jsonschema_description:"Kind, command, state scope and predicate the handler answers"`
	Priority int    `json:"priority" jsonschema_description:"Position in the registration order"`
}

// RoutesResponse mirrors GET /routes of the HTTP API.
type RoutesResponse struct {
	Stats    stater.Stats  `json:"stats" jsonschema_description:"Size of the compiled decision tree"`
	Handlers []HandlerInfo `json:"handlers" jsonschema_description:"Registered handlers in priority order"`
}

// ExplainArgs builds the update to explain.
type ExplainArgs struct {
	Kind         string `json:"kind,omitempty"`
	Text         string `json:"text,omitempty"`
	Command      string `json:"command,omitempty"`
	ChatID       int64  `json:"chat_id,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
	Query        string `json:"query,omitempty"`
	State        string `json:"state,omitempty"`
}

// Update returns the update a and the state to route it under.
// Kind defaults to message and chat and user to 1.
func (a ExplainArgs) Update() (domain.Update, domain.StateID) {
	u := domain.Update{
		Kind:         domain.UpdateKind(a.Kind),
		ChatID:       a.ChatID,
		UserID:       a.UserID,
		Text:         a.Text,
		Command:      a.Command,
		CallbackData: a.CallbackData,
		Query:        a.Query,
	}
	if u.Kind == domain.KindAny {
		u.Kind = domain.KindMessage
	}
	if u.ChatID == 0 && u.UserID == 0 {
		u.ChatID, u.UserID = 1, 1
	}
	u.NormalizeCommand()
	return u, domain.StateID(a.State)
}

// Server exposes a router's introspection as MCP tools. No tool runs a handler
// or touches a state store.
type Server struct {
	router    *stater.Router
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance for router.
func NewServer(router *stater.Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		router:    router,
		logger:    logger,
		mcpServer: server.NewMCPServer("stater-mcp", strings.TrimSpace(stater.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves JSON-RPC on in and out until ctx is done or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("Starting stater MCP server (stdio)")
	return stdio.Listen(ctx, in, out)
}

// ServeSSE serves the SSE transport on ln until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener) error {
	baseURL := "http://" + ln.Addr().String()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse.SSEHandler())
	mux.Handle("/message", sse.MessageHandler())
	httpServer := &http.Server{Handler: mux}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Starting stater MCP server (SSE)", "addr", ln.Addr().String())
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mcp server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop mcp server gracefully: %w", err)
		}
		s.logger.Info("Stater MCP server stopped gracefully")
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("explain_update",
		mcp.WithDescription("Show how an update would be routed: the tree path, every candidate handler and the one selected. No handler runs."),
		mcp.WithString("kind", mcp.Description("Update kind (default message)")),
		mcp.WithString("text", mcp.Description("Message text; a leading /command is parsed")),
		mcp.WithString("command", mcp.Description("Bot command, overrides the one parsed from text")),
		mcp.WithNumber("chat_id", mcp.Description("Chat ID (default 1)")),
		mcp.WithNumber("user_id", mcp.Description("User ID (default 1)")),
		mcp.WithString("callback_data", mcp.Description("Callback data of a callback_query")),
		mcp.WithString("query", mcp.Description("Text of an inline_query")),
		mcp.WithString("state", mcp.Description("Conversation state to route under (empty for the default state)")),
		mcp.WithOutputSchema[stater.Explanation](),
	), mcp.NewStructuredToolHandler(s.handleExplain))

	s.mcpServer.AddTool(mcp.NewTool("list_routes",
		mcp.WithDescription("List the registered handlers in priority order with decision tree statistics."),
		mcp.WithOutputSchema[RoutesResponse](),
	), mcp.NewStructuredToolHandler(s.handleRoutes))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the compiled decision tree as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.router.Table(), nil)), nil
	})
}

func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest, args ExplainArgs) (stater.Explanation, error) {
	u, state := args.Update()
	ex := s.router.Explain(&u, state)
	s.logger.Debug("MCP explain", "kind", u.Kind, "command", u.Command, "state", state, "selected", ex.Selected)
	return ex, nil
}

func (s *Server) handleRoutes(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (RoutesResponse, error) {
	return s.routes(), nil
}

func (s *Server) routes() RoutesResponse {
	handlers := s.router.Handlers()
	resp := RoutesResponse{Stats: s.router.Stats(), Handlers: make([]HandlerInfo, len(handlers))}
	for i, h := range handlers {
		resp.Handlers[i] = HandlerInfo{
			Name:     h.Name(),
			Origin:   h.Origin(),
			Trigger:  h.Trigger().String(),
			Priority: i,
		}
	}
	return resp
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(RoutesURI, "Registered handlers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.routes())
		if err != nil {
			return nil, fmt.Errorf("failed to encode routes: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RoutesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
