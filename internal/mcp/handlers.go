package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/ops"
	"github.com/hyiltiz/timetra.diary/internal/reconcile"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store storage.Store
	cfg   *config.Config
	now   func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store storage.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, cfg: cfg, now: time.Now}
}

// Request types for each tool

// LogRequest represents the arguments for fact_log.
type LogRequest struct {
	Activity        string   `json:"activity,omitempty"`
	Spec            string   `json:"spec,omitempty"`
	Between         string   `json:"between,omitempty"`
	Since           string   `json:"since,omitempty"`
	Until           string   `json:"until,omitempty"`
	Duration        string   `json:"duration,omitempty"`
	Description     string   `json:"description,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Amend           bool     `json:"amend,omitempty"`
	DryRun          bool     `json:"dry_run,omitempty"`
	ConfirmTruncate bool     `json:"confirm_truncate,omitempty"`
}

// StartRequest represents the arguments for fact_start.
type StartRequest struct {
	Activity      string   `json:"activity,omitempty"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Continued     bool     `json:"continued,omitempty"`
	ConfirmResume bool     `json:"confirm_resume,omitempty"`
}

// StopRequest represents the arguments for fact_stop.
type StopRequest struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AppendRequest represents the arguments for fact_append.
type AppendRequest struct {
	Text string `json:"text"`
}

// FindRequest represents the arguments for fact_find.
type FindRequest struct {
	Query string `json:"query,omitempty"`
	Days  int    `json:"days,omitempty"`
}

// confirmStrategy maps an MCP caller's boolean consent to a confirmation
// strategy. MCP callers cannot answer an interactive prompt, so they state
// their decision up front.
func confirmStrategy(consent bool) reconcile.ConfirmFunc {
	if consent {
		return reconcile.AssumeYes
	}
	return reconcile.AssumeNo
}

// Handler implementations

// HandleLog handles the fact_log tool call.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Log(h.store, h.cfg, ops.LogInput{
		Activity:    input.Activity,
		Spec:        input.Spec,
		Between:     input.Between,
		Since:       input.Since,
		Until:       input.Until,
		Duration:    input.Duration,
		Description: input.Description,
		Tags:        input.Tags,
		Amend:       input.Amend,
		DryRun:      input.DryRun,
		Confirm:     confirmStrategy(input.ConfirmTruncate),
		Now:         h.now(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStart handles the fact_start tool call.
func (h *Handlers) HandleStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StartRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Start(h.store, h.cfg, ops.StartInput{
		Activity:    input.Activity,
		Description: input.Description,
		Tags:        input.Tags,
		Continued:   input.Continued,
		Confirm:     confirmStrategy(input.ConfirmResume),
		Now:         h.now(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStop handles the fact_stop tool call.
func (h *Handlers) HandleStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StopRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Stop(h.store, h.cfg, ops.StopInput{
		Description: input.Description,
		Tags:        input.Tags,
		Now:         h.now(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAppend handles the fact_append tool call.
func (h *Handlers) HandleAppend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AppendRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.PostScriptum(h.store, h.cfg, ops.PostScriptumInput{
		Text: input.Text,
		Now:  h.now(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCurrent handles the fact_current tool call.
func (h *Handlers) HandleCurrent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Current(h.store, h.cfg, ops.CurrentInput{Now: h.now()})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFind handles the fact_find tool call.
func (h *Handlers) HandleFind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FindRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Find(h.store, h.cfg, ops.FindInput{
		Query: input.Query,
		Days:  input.Days,
		Now:   h.now(),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error. Uses IsError: true
// so MCP clients recognize failures properly. Internal error details are not
// exposed to avoid leaking file paths or SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var terr *errors.TimetraError
	if stderrors.As(err, &terr) {
		// Preserve wrapper context added with %w, but keep the bare message
		// for unwrapped errors.
		message := terr.Message
		if err.Error() != terr.Error() {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    terr.Code,
			"message": message,
			"status":  terr.Status,
		}
		if terr.Code != errors.ErrInternal && terr.Details != nil {
			errorObj["details"] = terr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
