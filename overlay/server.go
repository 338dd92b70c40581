package overlay

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"leviathan/log"
)

// Server exposes the overlay documents over local HTTP for the browser
// source, and accepts context/gamestate ingestion from external tooling.
// POST /gamestate is the sole path by which new events enter the log.
type Server struct {
	state     *StateFile
	context   *ContextFile
	gamestate *GamestateFile
	events    *EventLog
	staticDir string

	srv *http.Server
}

func NewServer(state *StateFile, context *ContextFile, gamestate *GamestateFile, events *EventLog, staticDir string) *Server {
	return &Server{
		state:     state,
		context:   context,
		gamestate: gamestate,
		events:    events,
		staticDir: staticDir,
	}
}

// Handler builds the route table. Split out from Start for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/context", s.handleContext)
	mux.HandleFunc("/gamestate", s.handleGamestate)
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	return mux
}

// Start binds addr and serves in a background goroutine. Handler errors are
// logged and never terminate the server.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("overlay server listen: %w", err)
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Errorf("overlay server: %v", err)
		}
	}()
	log.Infof("overlay server listening on http://%s", addr)
	return nil
}

func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	allowOrigin(w)
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.state.Read())
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	allowOrigin(w)
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.context.Read())
	case http.MethodPost:
		doc, ok := readJSONObject(w, r)
		if !ok {
			return
		}
		if err := s.context.WriteRaw(doc); err != nil {
			log.Errorf("context write: %v", err)
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGamestate(w http.ResponseWriter, r *http.Request) {
	allowOrigin(w)
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.gamestate.Read())
	case http.MethodPost:
		doc, ok := readJSONObject(w, r)
		if !ok {
			return
		}
		if err := s.gamestate.Write(doc); err != nil {
			log.Errorf("gamestate write: %v", err)
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		if err := s.events.Append(doc); err != nil {
			log.Errorf("gamestate log append: %v", err)
			http.Error(w, "log append failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// readJSONObject decodes the body as a JSON object, answering 400 without
// touching any document on failure.
func readJSONObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		http.Error(w, "body must be a JSON object", http.StatusBadRequest)
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, doc any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Errorf("overlay response encode: %v", err)
	}
}

func allowOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}
