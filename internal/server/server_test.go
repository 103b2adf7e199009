package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	s := New()
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
}

func TestHandleRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      MCPRequest
		wantNil  bool
		wantCode int
	}{
		{"initialize", MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"}, false, 0},
		{"ping", MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"}, false, 0},
		{"tools list", MCPRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"}, false, 0},
		{"initialized notification", MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}, true, 0},
		{"cancelled notification", MCPRequest{JSONRPC: "2.0", Method: "notifications/cancelled"}, true, 0},
		{"unknown method", MCPRequest{JSONRPC: "2.0", ID: 3, Method: "nonexistent/method"}, false, codeMethodNotFound},
		{"tools call without params", MCPRequest{JSONRPC: "2.0", ID: 4, Method: "tools/call"}, false, codeInvalidParams},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			resp := s.handleRequest(&req)
			if tt.wantNil {
				if resp != nil {
					t.Errorf("%s should return nil response", tt.req.Method)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if resp.ID != tt.req.ID {
				t.Errorf("ID: got %v, want %v", resp.ID, tt.req.ID)
			}
			code := 0
			if resp.Error != nil {
				code = resp.Error.Code
			}
			if code != tt.wantCode {
				t.Errorf("code: got %d, want %d", code, tt.wantCode)
			}
		})
	}
}

func TestHandleInitialize(t *testing.T) {
	s := New()
	resp := s.handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: "init-1"})

	if resp.ID != "init-1" || resp.JSONRPC != "2.0" {
		t.Errorf("envelope: got id %v jsonrpc %s", resp.ID, resp.JSONRPC)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != Name {
		t.Errorf("serverInfo.name: got %v, want %s", serverInfo["name"], Name)
	}
	if serverInfo["version"] != Version {
		t.Errorf("serverInfo.version: got %v, want %s", serverInfo["version"], Version)
	}
}

// serve runs the server over the given request lines and decodes every
// response line.
func serve(t *testing.T, s *Server, lines ...string) []MCPResponse {
	t.Helper()

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(strings.Join(lines, "\n")), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var responses []MCPResponse
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

// toolsCall builds one tools/call request line.
func toolsCall(t *testing.T, id int, name string, args map[string]interface{}) string {
	t.Helper()

	line, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params":  map[string]interface{}{"name": name, "arguments": args},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return string(line)
}

func TestServe_ToolSession(t *testing.T) {
	s := NewWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	imgPath := createGradientImageFile(t, 16, 16)

	responses := serve(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		toolsCall(t, 2, "image_dimensions", map[string]interface{}{"path": imgPath}),
		toolsCall(t, 3, "image_bulge", map[string]interface{}{"path": imgPath, "intensity": 0.8}),
		toolsCall(t, 4, "image_mesh_warp", map[string]interface{}{"path": imgPath, "grid_x": 1 << 20, "grid_y": 2}),
		toolsCall(t, 5, "image_extract_palette", map[string]interface{}{"path": imgPath, "count": int64(1 << 62), "seed": 1}),
		toolsCall(t, 6, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}),
		`{"jsonrpc":"2.0","id":7,"method":"ping"}`,
	)

	tests := []struct {
		id        float64
		wantCode  int
		wantItems int
	}{
		{1, 0, 0},
		{2, 0, 1},
		{3, 0, 2},
		{4, codeInvalidParams, 0},
		{5, 0, 1},
		{6, codeToolFailed, 0},
		{7, 0, 0},
	}

	if len(responses) != len(tests) {
		t.Fatalf("got %d responses, want %d", len(responses), len(tests))
	}
	for i, tt := range tests {
		resp := responses[i]
		if resp.ID != tt.id {
			t.Errorf("response %d ID: got %v, want %v", i, resp.ID, tt.id)
		}
		code := 0
		if resp.Error != nil {
			code = resp.Error.Code
		}
		if code != tt.wantCode {
			t.Errorf("response %v code: got %d, want %d", tt.id, code, tt.wantCode)
		}
		if tt.wantItems == 0 {
			continue
		}
		result, _ := resp.Result.(map[string]interface{})
		items, _ := result["content"].([]interface{})
		if len(items) != tt.wantItems {
			t.Errorf("response %v: got %d content items, want %d", tt.id, len(items), tt.wantItems)
		}
	}

	// Tool images travel as an MCP image item.
	result, _ := responses[2].Result.(map[string]interface{})
	items, _ := result["content"].([]interface{})
	if len(items) == 2 {
		img, _ := items[1].(map[string]interface{})
		if img["type"] != "image" || img["mimeType"] != "image/png" {
			t.Errorf("image item: got type %v mimeType %v", img["type"], img["mimeType"])
		}
	}
}

func TestServe(t *testing.T) {
	var logs bytes.Buffer
	s := NewWithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	responses := serve(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
	)

	tests := []struct {
		id       interface{}
		wantCode int
	}{
		{float64(1), 0},
		{nil, codeParseError},
		{float64(2), 0},
		{float64(3), codeMethodNotFound},
	}

	if len(responses) != len(tests) {
		t.Fatalf("got %d responses, want %d", len(responses), len(tests))
	}
	for i, tt := range tests {
		resp := responses[i]
		if resp.ID != tt.id {
			t.Errorf("response %d ID: got %v, want %v", i, resp.ID, tt.id)
		}
		code := 0
		if resp.Error != nil {
			code = resp.Error.Code
		}
		if code != tt.wantCode {
			t.Errorf("response %d code: got %d, want %d", i, code, tt.wantCode)
		}
	}

	if !strings.Contains(logs.String(), "method=ping") {
		t.Errorf("debug log missing ping request: %s", logs.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestServe_WriteError(t *testing.T) {
	s := NewWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := s.Serve(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`), failingWriter{})
	if err == nil {
		t.Error("Serve should fail when the response cannot be written")
	}
}
