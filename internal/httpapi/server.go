// Package httpapi is the HTTP delivery layer: session management endpoints
// and the SSE chat stream that runs one pipeline turn per request.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"wellbridge/internal/agent"
	"wellbridge/pkg"
)

// TurnRunner executes one conversational turn. *agent.Executor satisfies it;
// tests substitute a stub.
type TurnRunner interface {
	RunTurn(ctx context.Context, initial agent.StateRecord) (agent.StateRecord, error)
}

// SessionStore is the slice of the repository the delivery layer needs.
type SessionStore interface {
	CreateSession(ctx context.Context, tenantID, userID, title string) (*pkg.Session, error)
	ListSessions(ctx context.Context, tenantID, userID string) ([]pkg.Session, error)
	CountSessions(ctx context.Context, tenantID, userID string) (int, error)
	SaveMessage(ctx context.Context, sessionID string, role pkg.MessageRole, content string) (*pkg.Message, error)
	OwnsSession(ctx context.Context, tenantID, userID, sessionID string) (bool, error)
	RecentMessages(ctx context.Context, tenantID, userID, sessionID string, n int) ([]pkg.Message, error)
	Transcript(ctx context.Context, tenantID, userID, sessionID string) ([]pkg.Message, error)
}

// Server bundles the dependencies required by HTTP handlers. It implements
// http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Repo   SessionStore
	Runner TurnRunner
	Log    *zap.Logger

	// now is swappable for tests of the opening message.
	now func() time.Time
}

// NewServer constructs a Server.
func NewServer(repo SessionStore, runner TurnRunner, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Repo: repo, Runner: runner, Log: log, now: time.Now}
}

// ServeHTTP dispatches incoming requests based on the URL path. Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/chat/stream" && r.Method == http.MethodPost:
		s.handleChatStream(w, r)
	case path == "/api/sessions" && r.Method == http.MethodPost:
		s.handleCreateSession(w, r)
	case path == "/api/sessions" && r.Method == http.MethodGet:
		s.handleListSessions(w, r)
	case strings.HasPrefix(path, "/api/sessions/") && strings.HasSuffix(path, "/messages") && r.Method == http.MethodGet:
		parts := strings.Split(path, "/")
		if len(parts) != 5 {
			http.NotFound(w, r)
			return
		}
		s.handleSessionMessages(w, r, parts[3])
	case path == "/healthz" && r.Method == http.MethodGet:
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

// identity pulls the caller identity from headers. A real deployment puts an
// auth gateway in front; the service itself only needs the resolved IDs.
func identity(r *http.Request) (tenantID, userID, role string) {
	tenantID = r.Header.Get("X-Tenant-ID")
	userID = r.Header.Get("X-User-ID")
	role = r.Header.Get("X-User-Role")
	if role == "" {
		role = "patient"
	}
	return
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, userID, _ := identity(r)
	if tenantID == "" || userID == "" {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}

	var body struct {
		Title string `json:"title"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Title == "" {
		body.Title = "New conversation"
	}

	// Returning users get a shorter opening message.
	prior, err := s.Repo.CountSessions(ctx, tenantID, userID)
	if err != nil {
		s.Log.Warn("session count failed", zap.Error(err))
		prior = 0
	}

	sess, err := s.Repo.CreateSession(ctx, tenantID, userID, body.Title)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	opening := agent.OpeningMessage(prior > 0, s.now())
	if _, err := s.Repo.SaveMessage(ctx, sess.ID, pkg.RoleAssistant, opening); err != nil {
		s.Log.Warn("opening message save failed",
			zap.String("session_id", sess.ID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session":         sess,
		"opening_message": opening,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, _ := identity(r)
	if tenantID == "" || userID == "" {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}
	sessions, err := s.Repo.ListSessions(r.Context(), tenantID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []pkg.Session{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request, sessionID string) {
	tenantID, userID, _ := identity(r)
	if tenantID == "" || userID == "" {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}
	owns, err := s.Repo.OwnsSession(r.Context(), tenantID, userID, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !owns {
		// A session belonging to someone else is indistinguishable from one
		// that does not exist.
		http.NotFound(w, r)
		return
	}
	messages, err := s.Repo.Transcript(r.Context(), tenantID, userID, sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []pkg.Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
