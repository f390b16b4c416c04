package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cwsl/wsprgo/internal/wspr"
)

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleEncodeReturnsSymbols(t *testing.T) {
	s := New(wspr.NewMemHashTable())
	req := toolRequest(map[string]interface{}{
		"callsign":  "K1ABC",
		"grid":      "FN20",
		"power_dbm": float64(37),
	})

	result, err := s.handleEncode(context.Background(), req)
	if err != nil {
		t.Fatalf("handleEncode: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleEncode returned tool error: %+v", result.Content)
	}

	text := firstText(t, result)
	var decoded struct {
		Callsign string  `json:"callsign"`
		Grid     string  `json:"grid"`
		PowerDBm int     `json:"power_dbm"`
		Symbols  []uint8 `json:"symbols"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(decoded.Symbols) != wspr.NumSymbols {
		t.Errorf("len(Symbols) = %d, want %d", len(decoded.Symbols), wspr.NumSymbols)
	}
	if decoded.Grid != "FN20" {
		t.Errorf("Grid = %q, want FN20", decoded.Grid)
	}
}

func TestHandleEncodeMissingFieldsIsToolError(t *testing.T) {
	s := New(wspr.NewMemHashTable())
	result, err := s.handleEncode(context.Background(), toolRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleEncode: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error result for missing required fields")
	}
}

func TestHandleGridDistance(t *testing.T) {
	s := New(wspr.NewMemHashTable())
	req := toolRequest(map[string]interface{}{"grid1": "FN20", "grid2": "FN20"})
	result, err := s.handleGridDistance(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGridDistance: %v", err)
	}
	if result.IsError {
		t.Fatalf("handleGridDistance returned tool error: %+v", result.Content)
	}
	text := firstText(t, result)
	if !strings.Contains(text, "distance_km") {
		t.Errorf("result text = %q, want it to contain distance_km", text)
	}
}

func TestDecodeBase64PCMRoundTrip(t *testing.T) {
	raw := []byte{0, 1, 2, 3, 4, 5}
	encoded := base64.StdEncoding.EncodeToString(raw)
	got, err := decodeBase64PCM(encoded)
	if err != nil {
		t.Fatalf("decodeBase64PCM: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("decodeBase64PCM round trip = %v, want %v", got, raw)
	}
}

func firstText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result.Content[0] is %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}
