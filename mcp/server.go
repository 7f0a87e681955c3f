// Package mcp implements a line-delimited JSON-RPC 2.0 server exposing the
// git tools over stdio. One server instance serves one session; the session
// id is fixed at construction and every tool call inherits it.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tomhartley/gitbridge/logger"
	"github.com/tomhartley/gitbridge/session"
	"github.com/tomhartley/gitbridge/tools"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "gitbridge"
	ServerVersion   = "1.0.0"
)

// Server implements the MCP server loop for one session.
type Server struct {
	reader     *bufio.Reader
	writer     io.Writer
	registry   *tools.Registry
	sessionID  string
	sessionDir session.WorkingDirResolver
	mu         sync.Mutex
	log        *slog.Logger
}

// NewServer creates a server bound to one session. sessionDir supplies the
// session's remembered working directory at call time, so a
// git_set_working_dir in one call is visible to the next.
func NewServer(r io.Reader, w io.Writer, registry *tools.Registry, sessionID string, sessionDir session.WorkingDirResolver) *Server {
	return &Server{
		reader:     bufio.NewReader(r),
		writer:     w,
		registry:   registry,
		sessionID:  sessionID,
		sessionDir: sessionDir,
		log:        logger.WithSession(sessionID).With("component", "mcp"),
	}
}

// Run starts the server loop. It returns on EOF, on a read error, or when
// ctx is cancelled; an in-flight tool call observes the cancellation through
// its own context.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("server starting")

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("context cancelled, shutting down")
			return err
		}

		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			if strings.TrimSpace(line) != "" {
				s.handleLine(ctx, line)
			}
			s.log.Info("EOF received, shutting down")
			return nil
		}
		if err != nil {
			s.log.Error("read error", "error", err)
			return err
		}

		s.handleLine(ctx, line)
	}
}

func (s *Server) handleLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	s.log.Debug("received message", "line", line)

	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Error("JSON parse error", "error", err)
		s.sendError(nil, -32700, "Parse error", nil)
		return
	}

	s.handleRequest(ctx, &req)
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		// Notification, no response needed
		s.log.Debug("initialized notification received")
	case "ping":
		s.sendResult(req.ID, struct{}{})
	case "tools/list":
		s.sendResult(req.ID, ToolsListResult{Tools: s.registry.Definitions()})
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		s.log.Warn("unknown method", "method", req.Method)
		s.sendError(req.ID, -32601, "Method not found", nil)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capability{
			Tools: &ToolCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Instructions: "This server exposes git operations (reword, stash, status, log) against local repositories.",
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.log.Error("failed to parse tool call params", "error", err)
		s.sendError(req.ID, -32602, "Invalid params", nil)
		return
	}

	correlationID := uuid.New().String()
	callLog := s.log.With("requestID", correlationID, "tool", params.Name)

	toolReq := tools.Request{
		CorrelationID: correlationID,
		SessionID:     s.sessionID,
		Log:           callLog,
	}
	if dir, ok := s.sessionDir(s.sessionID); ok {
		toolReq.SessionDir = dir
	}

	callLog.Info("tool call", "hasArguments", len(params.Arguments) > 0)

	result, ok := s.registry.Dispatch(ctx, params.Name, toolReq, params.Arguments)
	if !ok {
		callLog.Warn("unknown tool")
		s.sendError(req.ID, -32602, "Unknown tool", nil)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		callLog.Error("failed to marshal tool result", "error", err)
		s.sendError(req.ID, -32603, "Internal error", nil)
		return
	}

	callLog.Info("tool call finished", "success", result.Success, "errorKind", result.ErrorKind)

	// Advisory outcomes are data, not protocol errors; IsError marks only
	// hard failures so the caller's retry logic sees them.
	s.sendResult(req.ID, ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: string(payload)}},
		IsError: !result.Success && result.ErrorKind != "",
	})
}

func (s *Server) sendResult(id any, result any) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id any, code int, message string, data any) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.log.Error("failed to write response", "error", err)
	} else {
		s.log.Debug("sent response", "data", string(data))
	}
}
