package mock

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Start acknowledgements returned by POST /start-session.
const (
	AckStarted       = "started"
	AckAlreadyActive = "already_active"
)

type statusResponse struct {
	State string `json:"state"`
}

type startResponse struct {
	Status string `json:"status"`
}

type Server struct {
	assistant *Assistant
}

func NewServer(a *Assistant) *Server {
	return &Server{assistant: a}
}

// Router serves GET /status and POST /start-session. Any origin may call
// it.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(allowAnyOrigin)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/start-session", s.handleStartSession).Methods(http.MethodPost)
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := s.assistant.States().State()
	writeJSON(w, http.StatusOK, statusResponse{State: state.Visual().String()})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	status := AckAlreadyActive
	if s.assistant.StartSession() {
		status = AckStarted
	}
	writeJSON(w, http.StatusOK, startResponse{Status: status})
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// Addr formats a listen address.
func Addr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
