package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// testHandlers creates handlers over a temporary database with the clock
// pinned to 16:00 today.
func testHandlers(t *testing.T) *Handlers {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewHandlers(store, config.DefaultConfig())
	h.now = func() time.Time { return todayAt(16, 0) }
	return h
}

func todayAt(hour, minute int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.Local)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleLog(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "log explicit interval",
			args: map[string]any{
				"activity": "coding@work",
				"spec":     "13:00..14:00",
			},
			wantError: false,
		},
		{
			name: "log with between",
			args: map[string]any{
				"activity": "reading",
				"between":  "14:00-15:00",
			},
			wantError: false,
		},
		{
			name: "malformed spec",
			args: map[string]any{
				"activity": "coding",
				"spec":     "not a time",
			},
			wantError: true,
			errorCode: "PARSE_ERROR",
		},
		{
			name: "inverted interval",
			args: map[string]any{
				"activity": "coding",
				"between":  "15:00-14:30",
			},
			wantError: true,
			errorCode: "INVALID_RANGE",
		},
		{
			name: "overlap without consent",
			args: map[string]any{
				"activity": "coding",
				"between":  "14:30-15:30",
			},
			wantError: true,
			errorCode: "ABORTED",
		},
		{
			name: "ambiguous overlap",
			args: map[string]any{
				"activity":         "coding",
				"between":          "13:30-15:30",
				"confirm_truncate": true,
			},
			wantError: true,
			errorCode: "AMBIGUOUS_OVERLAP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := makeRequest(tt.args)
			result, err := h.HandleLog(ctx, req)

			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else {
				if result.IsError {
					t.Errorf("expected success, got error: %v", extractErrorMessage(result))
				}
			}
		})
	}
}

func TestHandleLog_ConfirmTruncate(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	// An existing fact spans 13:00-15:00; logging 14:00-15:30 overlaps it.
	setup := makeRequest(map[string]any{
		"activity": "work",
		"between":  "13:00-15:00",
	})
	if result, _ := h.HandleLog(ctx, setup); result.IsError {
		t.Fatalf("setup log failed: %v", extractErrorMessage(result))
	}

	req := makeRequest(map[string]any{
		"activity":         "coding",
		"between":          "14:00-15:30",
		"confirm_truncate": true,
	})
	result, err := h.HandleLog(ctx, req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}

	output := parseOutput(t, result)
	truncated, ok := output["truncated"].(map[string]any)
	if !ok {
		t.Fatalf("expected truncated fact in output: %v", output)
	}
	if truncated["activity"] != "work" {
		t.Errorf("truncated.activity = %v, want work", truncated["activity"])
	}
}

func TestHandleStartStop(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	startReq := makeRequest(map[string]any{
		"activity": "coding",
		"tags":     []any{"deep"},
	})
	startResult, err := h.HandleStart(ctx, startReq)
	if err != nil {
		t.Fatalf("start handler returned error: %v", err)
	}
	if startResult.IsError {
		t.Fatalf("start failed: %v", extractErrorMessage(startResult))
	}

	// A second start while running is rejected.
	again, err := h.HandleStart(ctx, startReq)
	if err != nil {
		t.Fatalf("start handler returned error: %v", err)
	}
	assertErrorCode(t, again, "INVALID_REQUEST")

	stopReq := makeRequest(map[string]any{
		"description": "wrapped up",
	})
	stopResult, err := h.HandleStop(ctx, stopReq)
	if err != nil {
		t.Fatalf("stop handler returned error: %v", err)
	}
	if stopResult.IsError {
		t.Fatalf("stop failed: %v", extractErrorMessage(stopResult))
	}

	// Nothing running anymore.
	stopped, err := h.HandleStop(ctx, stopReq)
	if err != nil {
		t.Fatalf("stop handler returned error: %v", err)
	}
	assertErrorCode(t, stopped, "INVALID_REQUEST")
}

func TestHandleAppend(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	t.Run("no history", func(t *testing.T) {
		req := makeRequest(map[string]any{"text": "orphan note"})
		result, err := h.HandleAppend(ctx, req)
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorCode(t, result, "NOT_FOUND")
	})

	setup := makeRequest(map[string]any{
		"activity": "coding",
		"between":  "14:00-15:00",
	})
	if result, _ := h.HandleLog(ctx, setup); result.IsError {
		t.Fatalf("setup log failed: %v", extractErrorMessage(result))
	}

	t.Run("appends note", func(t *testing.T) {
		req := makeRequest(map[string]any{"text": "forgot this"})
		result, err := h.HandleAppend(ctx, req)
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		f := output["fact"].(map[string]any)
		desc, _ := f["description"].(string)
		if desc != "(+2:00) forgot this" {
			t.Errorf("description = %q", desc)
		}
	})
}

func TestHandleCurrent(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		result, err := h.HandleCurrent(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorCode(t, result, "NOT_FOUND")
	})

	setup := makeRequest(map[string]any{"activity": "coding"})
	if result, _ := h.HandleStart(ctx, setup); result.IsError {
		t.Fatalf("setup start failed: %v", extractErrorMessage(result))
	}

	t.Run("running fact", func(t *testing.T) {
		result, err := h.HandleCurrent(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["running"] != true {
			t.Errorf("running = %v, want true", output["running"])
		}
	})
}

func TestHandleFind(t *testing.T) {
	h := testHandlers(t)
	ctx := context.Background()

	for _, args := range []map[string]any{
		{"activity": "coding", "between": "13:00-14:00", "description": "parser work"},
		{"activity": "meeting", "between": "14:00-14:30"},
	} {
		if result, _ := h.HandleLog(ctx, makeRequest(args)); result.IsError {
			t.Fatalf("setup log failed: %v", extractErrorMessage(result))
		}
	}

	req := makeRequest(map[string]any{"query": "parser"})
	result, err := h.HandleFind(ctx, req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)

	facts := output["facts"].([]any)
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	stats := output["stats"].(map[string]any)
	if stats["total"] != "1:00" {
		t.Errorf("stats.total = %v, want 1:00", stats["total"])
	}
}

func TestServerRegistration(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	s := NewServer(store, config.DefaultConfig(), "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"fact_log",
		"fact_start",
		"fact_stop",
		"fact_append",
		"fact_current",
		"fact_find",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"fact_find", "fact_append"}
	s := NewServer(store, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 4 {
		t.Errorf("registered tool count = %d, want 4", len(tools))
	}
	for _, name := range cfg.DisabledTools {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"fact_log", "fact_find"}, wantLen: 0},
		{name: "one unknown", input: []string{"fact_log", "fake_tool"}, wantLen: 1},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("resolving bounds: %w", errors.NewParse("nonsense", "no shape matched"))

	r := errorResult(wrapped)
	assertErrorCode(t, r, string(errors.ErrParse))

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	msg := errObj["message"].(string)
	if msg == "" || msg[:15] != "resolving bound" {
		t.Errorf("message should keep wrapper context, got %q", msg)
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result, got success")
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
