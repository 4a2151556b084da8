package httpapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wellbridge/internal/agent"
	"wellbridge/pkg"
)

type stubRunner struct {
	final agent.StateRecord
	err   error
	got   agent.StateRecord
}

func (s *stubRunner) RunTurn(ctx context.Context, initial agent.StateRecord) (agent.StateRecord, error) {
	s.got = initial
	if s.err != nil {
		return initial, s.err
	}
	return s.final, nil
}

type stubStore struct {
	history    []pkg.Message
	historyErr error
	saved      []pkg.Message
	saveErr    error
	sessions   int

	// foreign marks every session as belonging to somebody else.
	foreign bool
	ownsErr error

	// scope captured from the last transcript read, so tests can assert
	// identity is threaded through to the store.
	scopeTenant string
	scopeUser   string
}

func (s *stubStore) CreateSession(ctx context.Context, tenantID, userID, title string) (*pkg.Session, error) {
	return &pkg.Session{ID: "sess-new", TenantID: tenantID, UserID: userID, Title: title}, nil
}
func (s *stubStore) ListSessions(ctx context.Context, tenantID, userID string) ([]pkg.Session, error) {
	return nil, nil
}
func (s *stubStore) CountSessions(ctx context.Context, tenantID, userID string) (int, error) {
	return s.sessions, nil
}
func (s *stubStore) SaveMessage(ctx context.Context, sessionID string, role pkg.MessageRole, content string) (*pkg.Message, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	m := pkg.Message{SessionID: sessionID, Role: role, Content: content}
	s.saved = append(s.saved, m)
	return &m, nil
}
func (s *stubStore) OwnsSession(ctx context.Context, tenantID, userID, sessionID string) (bool, error) {
	if s.ownsErr != nil {
		return false, s.ownsErr
	}
	return !s.foreign, nil
}
func (s *stubStore) RecentMessages(ctx context.Context, tenantID, userID, sessionID string, n int) ([]pkg.Message, error) {
	s.scopeTenant, s.scopeUser = tenantID, userID
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}
func (s *stubStore) Transcript(ctx context.Context, tenantID, userID, sessionID string) ([]pkg.Message, error) {
	s.scopeTenant, s.scopeUser = tenantID, userID
	return s.history, nil
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chat/stream", strings.NewReader(body))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

var eventLine = regexp.MustCompile(`(?m)^event: (\S+)$`)

func eventNames(body string) []string {
	var names []string
	for _, m := range eventLine.FindAllStringSubmatch(body, -1) {
		names = append(names, m[1])
	}
	return names
}

func TestChatStreamEventOrder(t *testing.T) {
	runner := &stubRunner{final: agent.StateRecord{
		Intent:           pkg.IntentRecordLookup,
		FinalResponse:    "Your cholesterol was 162 on your last lab.",
		JargonMap:        []pkg.JargonMapping{{Term: "cholesterol"}},
		ActionCards:      []pkg.ActionCard{{ID: "card-1", Type: pkg.CardUpload}},
		SuggestedReplies: []string{"Show the full report"},
	}}
	store := &stubStore{}
	srv := NewServer(store, runner, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "sess-1", "message": "what was my cholesterol?"}`)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	names := eventNames(w.Body.String())
	require.NotEmpty(t, names)
	// Every token event precedes all metadata events, which arrive in a
	// fixed order and close with done.
	var collapsed []string
	for _, n := range names {
		if n == "token" && len(collapsed) > 0 && collapsed[len(collapsed)-1] == "token" {
			continue
		}
		collapsed = append(collapsed, n)
	}
	assert.Equal(t, []string{"token", "jargon_map", "action_cards", "suggested_replies", "done"}, collapsed)

	body := w.Body.String()
	assert.Contains(t, body, `"cholesterol"`)
	assert.Contains(t, body, `"card-1"`)
	assert.Contains(t, body, "Show the full report")

	// Both sides of the exchange were persisted.
	require.Len(t, store.saved, 2)
	assert.Equal(t, pkg.RoleUser, store.saved[0].Role)
	assert.Equal(t, pkg.RoleAssistant, store.saved[1].Role)
	assert.Equal(t, "Your cholesterol was 162 on your last lab.", store.saved[1].Content)
}

func TestChatStreamInjectsRefusalSuggestions(t *testing.T) {
	runner := &stubRunner{final: agent.StateRecord{
		Intent:        pkg.IntentMedicalAdvice,
		FinalResponse: agent.NoRecordsTemplate,
		// Refusal bypasses the assembler, so SuggestedReplies stays nil.
	}}
	srv := NewServer(&stubStore{}, runner, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "sess-1", "message": "should I stop my meds?"}`)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "What do my records say about this?")
}

func TestChatStreamToleratesHistoryFailure(t *testing.T) {
	runner := &stubRunner{final: agent.StateRecord{FinalResponse: "Hello!"}}
	store := &stubStore{historyErr: errors.New("db down")}
	srv := NewServer(store, runner, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "sess-1", "message": "hi"}`)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, eventNames(w.Body.String()), "done")
	require.Len(t, runner.got.Messages, 1, "turn runs with just the new message")
	assert.Equal(t, "hi", runner.got.Messages[0].Content)
}

func TestChatStreamTurnFailureEmitsErrorEvent(t *testing.T) {
	runner := &stubRunner{err: errors.New("panic recovered")}
	srv := NewServer(&stubStore{}, runner, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "sess-1", "message": "hi"}`)

	require.Equal(t, 200, w.Code, "the stream is already open when the turn fails")
	names := eventNames(w.Body.String())
	assert.Equal(t, []string{"error"}, names)
}

func TestChatStreamValidatesRequest(t *testing.T) {
	srv := NewServer(&stubStore{}, &stubRunner{}, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "", "message": "hi"}`)
	assert.Equal(t, 400, w.Code)

	w = postChat(t, srv, `{"session_id": "sess-1", "message": "   "}`)
	assert.Equal(t, 400, w.Code)

	req := httptest.NewRequest("POST", "/api/chat/stream", strings.NewReader(`{"session_id":"s","message":"hi"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code, "identity headers are required")
}

func TestChatStreamBuildsIdentityFromHeaders(t *testing.T) {
	runner := &stubRunner{final: agent.StateRecord{FinalResponse: "ok"}}
	srv := NewServer(&stubStore{history: []pkg.Message{
		{Role: pkg.RoleAssistant, Content: "Welcome back!"},
	}}, runner, zap.NewNop())

	postChat(t, srv, `{"session_id": "sess-9", "message": "hello"}`)

	store := srv.Repo.(*stubStore)
	assert.Equal(t, "tenant-1", store.scopeTenant, "history read is tenant-scoped")
	assert.Equal(t, "user-1", store.scopeUser)
	assert.Equal(t, "tenant-1", runner.got.TenantID)
	assert.Equal(t, "user-1", runner.got.UserID)
	assert.Equal(t, "patient", runner.got.Role, "role defaults to patient")
	assert.Equal(t, "sess-9", runner.got.SessionID)
	require.Len(t, runner.got.Messages, 2, "history precedes the new message")
	assert.Equal(t, "hello", runner.got.Messages[1].Content)
}

func getMessages(t *testing.T, srv *Server, sessionID string, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/sessions/"+sessionID+"/messages", nil)
	if withIdentity {
		req.Header.Set("X-Tenant-ID", "tenant-1")
		req.Header.Set("X-User-ID", "user-1")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestSessionMessagesRequireIdentity(t *testing.T) {
	store := &stubStore{history: []pkg.Message{
		{Role: pkg.RoleAssistant, Content: "Your LDL cholesterol was 162"},
	}}
	srv := NewServer(store, &stubRunner{}, zap.NewNop())

	w := getMessages(t, srv, "sess-1", false)

	assert.Equal(t, 401, w.Code)
	assert.NotContains(t, w.Body.String(), "LDL cholesterol",
		"an anonymous caller never sees transcript content")
}

func TestSessionMessagesRejectForeignSession(t *testing.T) {
	store := &stubStore{
		foreign: true,
		history: []pkg.Message{
			{Role: pkg.RoleAssistant, Content: "Your LDL cholesterol was 162"},
		},
	}
	srv := NewServer(store, &stubRunner{}, zap.NewNop())

	w := getMessages(t, srv, "someone-elses-session", true)

	assert.Equal(t, 404, w.Code, "another tenant's session looks like a missing one")
	assert.NotContains(t, w.Body.String(), "LDL cholesterol")
}

func TestSessionMessagesScopedToCaller(t *testing.T) {
	store := &stubStore{history: []pkg.Message{
		{Role: pkg.RoleUser, Content: "what did my labs say?"},
	}}
	srv := NewServer(store, &stubRunner{}, zap.NewNop())

	w := getMessages(t, srv, "sess-1", true)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "what did my labs say?")
	assert.Equal(t, "tenant-1", store.scopeTenant, "transcript read is tenant-scoped")
	assert.Equal(t, "user-1", store.scopeUser)
}

func TestChatStreamRejectsForeignSession(t *testing.T) {
	runner := &stubRunner{final: agent.StateRecord{FinalResponse: "ok"}}
	store := &stubStore{foreign: true}
	srv := NewServer(store, runner, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "someone-elses-session", "message": "hi"}`)

	assert.Equal(t, 404, w.Code)
	assert.Empty(t, store.saved, "nothing is written into a session the caller does not own")
	assert.Empty(t, runner.got.SessionID, "the turn never runs")
}

func TestChatStreamOwnershipCheckFailureIsAnError(t *testing.T) {
	store := &stubStore{ownsErr: errors.New("db down")}
	srv := NewServer(store, &stubRunner{}, zap.NewNop())

	w := postChat(t, srv, `{"session_id": "sess-1", "message": "hi"}`)

	assert.Equal(t, 500, w.Code, "ownership cannot be verified, so the turn does not run")
	assert.Empty(t, store.saved)
}

func TestCreateSessionWritesOpeningMessage(t *testing.T) {
	store := &stubStore{sessions: 0}
	srv := NewServer(store, &stubRunner{}, zap.NewNop())
	srv.now = func() time.Time { return time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC) }

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`))
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Good morning")
	require.Len(t, store.saved, 1)
	assert.Equal(t, pkg.RoleAssistant, store.saved[0].Role)
	assert.Contains(t, store.saved[0].Content, "personal health companion",
		"first-ever session gets the full introduction")
}
