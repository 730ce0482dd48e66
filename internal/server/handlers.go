package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/docscan/internal/scanner"
)

// errUnknownTool is returned by executeTool for a name not in toolActions.
var errUnknownTool = errors.New("unknown tool")

// ToolCallParams is the params object of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// toolActions maps MCP tool names to service actions.
var toolActions = map[string]string{
	"detect_documents": ActionDetect,
	"warp_document":    ActionWarp,
	"select_candidate": ActionSelect,
}

// handleToolsCall runs one tool and wraps its JSON result as MCP text
// content:
//
//	{"content": [{"type": "text", "text": "<JSON result>"}]}
//
// Bad arguments and bad geometry map to -32602, other failures to -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		code, msg := toolErrorCode(err)
		s.log.WithError(err).WithField("tool", params.Name).Warn("tool failed")
		return s.errorResponse(req.ID, code, msg, err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	return s.success(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	})
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	action, ok := toolActions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
	return s.svc.Process(action, args)
}

// toolErrorCode classifies a tool error by the scanner error kind it wraps.
func toolErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, errUnknownTool):
		return codeInvalidParams, "Unknown tool"
	case errors.Is(err, scanner.ErrParameter), errors.Is(err, scanner.ErrInvalidGeometry):
		return codeInvalidParams, "Invalid tool arguments"
	default:
		return codeToolFailed, "Tool execution failed"
	}
}
