package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/copyleftdev/swarmlab/internal/optimization"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      interface{}       `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params,omitempty"`
}

type sessionParams struct {
	SessionID    string `json:"session_id"`
	Steps        int    `json:"steps"`
	KeepPrevious bool   `json:"keep_previous"`
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, rpcParseError, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, rpcInvalidRequest, "Invalid Request", request.ID)
		return
	}

	// Route to appropriate handler
	var result interface{}
	var err error

	switch request.Method {
	case "sandbox.create":
		result, err = s.handleSandboxCreate(request.Params)
	case "sandbox.step":
		result, err = s.handleSandboxStep(r.Context(), request.Params)
	case "sandbox.state":
		result, err = s.handleSandboxState(request.Params)
	case "sandbox.reset":
		result, err = s.handleSandboxReset(request.Params)
	case "sandbox.delete":
		result, err = s.handleSandboxDelete(request.Params)
	default:
		s.respondWithError(w, rpcMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		code := rpcServerError
		if errors.Is(err, optimization.ErrInvalidArgument) {
			code = rpcInvalidParams
		}
		s.respondWithError(w, code, err.Error(), request.ID)
		return
	}

	// Send successful response
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// handleSandboxCreate handles the sandbox.create JSON-RPC method.
// Expected parameters: an optional settings object, e.g. {"algorithm": "pso", "seed": 7}
// Returns: {"session_id": "...", "snapshot": {...}}
func (s *Server) handleSandboxCreate(params []json.RawMessage) (interface{}, error) {
	var body []byte
	if len(params) > 0 {
		body = params[0]
	}
	state, err := s.createSession(body)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id": state.ID,
		"snapshot":   state.Session.Snapshot(),
	}, nil
}

// handleSandboxStep handles the sandbox.step JSON-RPC method.
// Expected parameters: {"session_id": "...", "steps": 10}; steps defaults to 1.
// Returns: {"generation": 10, "stats": [...], "limit_reached": false}
func (s *Server) handleSandboxStep(ctx context.Context, params []json.RawMessage) (interface{}, error) {
	state, p, err := s.resolveSession(params)
	if err != nil {
		return nil, err
	}
	if p.Steps == 0 {
		p.Steps = 1
	}
	stats, limitReached, err := s.step(ctx, state, p.Steps)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"generation":    state.Session.Generation(),
		"stats":         stats,
		"limit_reached": limitReached,
	}, nil
}

// handleSandboxState handles the sandbox.state JSON-RPC method.
// Expected parameters: {"session_id": "..."}
// Returns: the session snapshot
func (s *Server) handleSandboxState(params []json.RawMessage) (interface{}, error) {
	state, _, err := s.resolveSession(params)
	if err != nil {
		return nil, err
	}
	return state.Session.Snapshot(), nil
}

// handleSandboxReset handles the sandbox.reset JSON-RPC method.
// Expected parameters: {"session_id": "...", "keep_previous": false}
// Returns: the session snapshot after the reset
func (s *Server) handleSandboxReset(params []json.RawMessage) (interface{}, error) {
	state, p, err := s.resolveSession(params)
	if err != nil {
		return nil, err
	}
	if err := state.Session.Reset(p.KeepPrevious); err != nil {
		return nil, err
	}
	return state.Session.Snapshot(), nil
}

// handleSandboxDelete handles the sandbox.delete JSON-RPC method.
// Expected parameters: {"session_id": "..."}
// Returns: {"deleted": true}
func (s *Server) handleSandboxDelete(params []json.RawMessage) (interface{}, error) {
	p, err := decodeSessionParams(params)
	if err != nil {
		return nil, err
	}
	if err := s.deleteSession(p.SessionID); err != nil {
		return nil, err
	}
	return map[string]bool{"deleted": true}, nil
}

func decodeSessionParams(params []json.RawMessage) (sessionParams, error) {
	var p sessionParams
	if len(params) == 0 {
		return p, optimization.InvalidArgumentf("missing required parameters")
	}
	if err := json.Unmarshal(params[0], &p); err != nil {
		return p, optimization.InvalidArgumentf("invalid parameter format, expected object: %v", err)
	}
	if p.SessionID == "" {
		return p, optimization.InvalidArgumentf("session_id is required")
	}
	return p, nil
}

func (s *Server) resolveSession(params []json.RawMessage) (*SessionState, sessionParams, error) {
	p, err := decodeSessionParams(params)
	if err != nil {
		return nil, p, err
	}
	state, err := s.session(p.SessionID)
	if err != nil {
		return nil, p, err
	}
	return state, p, nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": fmt.Sprint(err),
		})
	}
}
