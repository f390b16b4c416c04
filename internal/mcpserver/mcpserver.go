// Package mcpserver exposes the codec as Model Context Protocol tools, so an
// LLM agent can encode, decode, and compute grid distances without shelling
// out to a CLI. Grounded on the teacher's mcp_server.go: a server.MCPServer
// built once, tools registered with mcp.NewTool/mcp.With*, each backed by a
// context.Context/mcp.CallToolRequest handler returning *mcp.CallToolResult.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cwsl/wsprgo/internal/geo"
	"github.com/cwsl/wsprgo/internal/wspr"
)

func decodeBase64PCM(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// Server wraps a server.MCPServer with WSPR-specific tools.
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	hashTable  wspr.HashTable
}

// New creates a Server with the encode/decode/grid_distance tools registered.
// hashTable resolves Type 2/3 compound-callsign decodes; pass
// wspr.NewMemHashTable() when no persistent store is configured.
func New(hashTable wspr.HashTable) *Server {
	s := &Server{hashTable: hashTable}

	s.mcpServer = server.NewMCPServer(
		"wsprgo",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
	return s
}

// Handler returns the HTTP handler to mount the MCP endpoint under.
func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("encode",
			mcp.WithDescription("Encode a WSPR Type 1 message (callsign, 4-character Maidenhead grid, power in dBm) into the 162-symbol 4-FSK tone sequence. Returns the symbol sequence and the canonicalised message."),
			mcp.WithString("callsign", mcp.Required(), mcp.Description("Station callsign, 1-6 characters")),
			mcp.WithString("grid", mcp.Required(), mcp.Description("4-character Maidenhead grid locator, e.g. FN20")),
			mcp.WithNumber("power_dbm", mcp.Required(), mcp.Description("Transmit power in dBm, 0-60")),
		),
		s.handleEncode,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("decode",
			mcp.WithDescription("Decode raw 12 kHz mono PCM audio covering one WSPR slot into zero or more station reports."),
			mcp.WithString("pcm_base64", mcp.Required(), mcp.Description("Base64-encoded signed 16-bit little-endian PCM samples")),
			mcp.WithNumber("dial_freq_mhz", mcp.Required(), mcp.Description("Receiver dial frequency in MHz, used only to label results")),
			mcp.WithBoolean("lsb", mcp.Description("True if the receiver's passband is LSB (reverses spectral orientation)")),
		),
		s.handleDecode,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("grid_distance",
			mcp.WithDescription("Compute the great-circle distance in kilometers between two Maidenhead grid locators."),
			mcp.WithString("grid1", mcp.Required(), mcp.Description("First grid locator")),
			mcp.WithString("grid2", mcp.Required(), mcp.Description("Second grid locator")),
		),
		s.handleGridDistance,
	)
}

func (s *Server) handleEncode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callsign := req.GetString("callsign", "")
	grid := req.GetString("grid", "")
	if callsign == "" || grid == "" {
		return mcp.NewToolResultError("callsign and grid are required"), nil
	}
	power := req.GetFloat("power_dbm", -1)
	if power < 0 {
		return mcp.NewToolResultError("power_dbm is required"), nil
	}

	msg := wspr.Message{Callsign: callsign, Grid: grid, PowerDBm: int(power)}
	symbols, canonical, err := wspr.EncodeSymbols(msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode: %v", err)), nil
	}

	result := struct {
		Callsign string  `json:"callsign"`
		Grid     string  `json:"grid"`
		PowerDBm int     `json:"power_dbm"`
		Symbols  []uint8 `json:"symbols"`
	}{canonical.Callsign, canonical.Grid, canonical.PowerDBm, symbols[:]}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleDecode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pcmB64 := req.GetString("pcm_base64", "")
	if pcmB64 == "" {
		return mcp.NewToolResultError("pcm_base64 is required"), nil
	}
	dialFreq := req.GetFloat("dial_freq_mhz", 0)
	lsb := req.GetBool("lsb", false)

	pcm, err := decodeBase64PCM(pcmB64)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decode pcm_base64: %v", err)), nil
	}

	decodes, err := wspr.Decode(pcm, dialFreq, lsb, s.hashTable)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decode: %v", err)), nil
	}

	data, err := json.Marshal(decodes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGridDistance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grid1 := req.GetString("grid1", "")
	grid2 := req.GetString("grid2", "")
	if grid1 == "" || grid2 == "" {
		return mcp.NewToolResultError("grid1 and grid2 are required"), nil
	}

	km, err := geo.Distance(grid1, grid2)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("grid_distance: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"distance_km": %.3f}`, km)), nil
}
