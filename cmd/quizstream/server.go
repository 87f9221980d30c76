package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"quizstream"
)

const sessionName = "quizstream-session"

// Server serves queued questions over HTTP.
type Server struct {
	dispenser *quizstream.Dispenser
	store     quizstream.ContentStore
	sessions  *sessions.CookieStore
	batchSize int
	logger    *zap.Logger
}

type statsResponse struct {
	Pending int `json:"pending"`
	Served  int `json:"served"`
}

// NewServer creates the HTTP server. secureCookies marks the session cookie
// Secure, which only works when clients reach the server over HTTPS.
func NewServer(store quizstream.ContentStore, batchSize int, sessionSecret string, secureCookies bool, logger *zap.Logger) *Server {
	cookies := sessions.NewCookieStore([]byte(sessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		dispenser: quizstream.NewDispenser(store, logger),
		store:     store,
		sessions:  cookies,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Handler returns the routes wrapped in a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/get-questions", s.handleGetQuestions)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	return cors.Default().Handler(mux)
}

func (s *Server) handleGetQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.dispenser.Dispense(r.Context(), s.batchSize)
	if err != nil {
		// Whatever was popped before the failure is still sent.
		s.logger.Error("dispense failed", zap.Int("returned", len(questions)), zap.Error(err))
	}

	session, _ := s.sessions.Get(r, sessionName)
	served, _ := session.Values["served"].(int)
	session.Values["served"] = served + len(questions)
	if err := session.Save(r, w); err != nil {
		s.logger.Warn("session save failed", zap.Error(err))
	}

	writeJSON(w, questions)
	s.logger.Info("sent questions to client", zap.Int("count", len(questions)))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.Len(r.Context())
	if err != nil {
		s.logger.Error("queue length failed", zap.Error(err))
		http.Error(w, "Failed to read queue", http.StatusInternalServerError)
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	served, _ := session.Values["served"].(int)

	writeJSON(w, statsResponse{Pending: pending, Served: served})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
