package overlay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv := NewServer(
		NewStateFile(filepath.Join(dir, "state.json"), 30),
		NewContextFile(filepath.Join(dir, "context.json")),
		NewGamestateFile(filepath.Join(dir, "gamestate.json")),
		NewEventLog(filepath.Join(dir, "gamestate_log.jsonl")),
		"",
	)
	return srv, dir
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var doc map[string]any
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, doc
}

func TestGetStateDefault(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, doc := doJSON(t, srv.Handler(), http.MethodGet, "/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if doc["mode"] != "clear" || doc["text"] != "" || doc["font_size"] != 30.0 || doc["ts"] != 0.0 {
		t.Errorf("default state = %v", doc)
	}
}

func TestCORSHeaderOnAllRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/state", "/context", "/gamestate"} {
		rec, _ := doJSON(t, srv.Handler(), http.MethodGet, path, "")
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s: Access-Control-Allow-Origin = %q, want *", path, got)
		}
	}
}

func TestPostContextRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/context", `{"url":"https://x.test","selection":"code"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /context status = %d: %s", rec.Code, rec.Body.String())
	}
	rec, doc := doJSON(t, h, http.MethodGet, "/context", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /context status = %d", rec.Code)
	}
	if doc["url"] != "https://x.test" || doc["selection"] != "code" {
		t.Errorf("context = %v", doc)
	}
}

func TestPostGamestateWritesDocAndAppendsLog(t *testing.T) {
	srv, dir := newTestServer(t)
	h := srv.Handler()

	body := `{"event":"Team A eliminated"}`
	rec, _ := doJSON(t, h, http.MethodPost, "/gamestate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /gamestate status = %d: %s", rec.Code, rec.Body.String())
	}

	rec, doc := doJSON(t, h, http.MethodGet, "/gamestate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /gamestate status = %d", rec.Code)
	}
	if doc["event"] != "Team A eliminated" {
		t.Errorf("gamestate = %v", doc)
	}
	if _, ok := doc["ts"].(float64); !ok {
		t.Errorf("ts missing from gamestate: %v", doc)
	}

	logData, err := os.ReadFile(filepath.Join(dir, "gamestate_log.jsonl"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log has %d lines, want 1", len(lines))
	}
	// The log records the posted payload verbatim; the ts stamp belongs to
	// the gamestate document only.
	if lines[0] != body {
		t.Errorf("log line = %s, want %s", lines[0], body)
	}
}

func TestPostMalformedBodyMutatesNothing(t *testing.T) {
	srv, dir := newTestServer(t)
	h := srv.Handler()

	for _, tt := range []struct{ path, body string }{
		{"/gamestate", `{"event":`},
		{"/gamestate", `"just a string"`},
		{"/gamestate", `null`},
		{"/context", `[1,2,3]`},
	} {
		rec, _ := doJSON(t, h, http.MethodPost, tt.path, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s with %q: status = %d, want 400", tt.path, tt.body, rec.Code)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "gamestate.json")); !os.IsNotExist(err) {
		t.Error("gamestate doc was created by malformed POST")
	}
	if _, err := os.Stat(filepath.Join(dir, "gamestate_log.jsonl")); !os.IsNotExist(err) {
		t.Error("event log was created by malformed POST")
	}
}

func TestStateRejectsPost(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := doJSON(t, srv.Handler(), http.MethodPost, "/state", `{"mode":"speak"}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /state status = %d, want 405", rec.Code)
	}
}

func TestStaticFileServing(t *testing.T) {
	dir := t.TempDir()
	staticDir := filepath.Join(dir, "static")
	if err := os.MkdirAll(staticDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>overlay</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(
		NewStateFile(filepath.Join(dir, "state.json"), 30),
		NewContextFile(filepath.Join(dir, "context.json")),
		NewGamestateFile(filepath.Join(dir, "gamestate.json")),
		NewEventLog(filepath.Join(dir, "log.jsonl")),
		staticDir,
	)
	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "overlay") {
		t.Errorf("static serve: status=%d body=%q", rec.Code, rec.Body.String())
	}
}
