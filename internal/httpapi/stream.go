package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/agent"
	"wellbridge/pkg"
)

// historyWindow is how many prior messages are replayed into the turn state.
const historyWindow = 10

// tokenChunkSize is how many characters each token event carries. The
// pipeline finishes the whole response before streaming begins (the guardrail
// must see complete text), so chunking here only smooths frontend rendering.
const tokenChunkSize = 24

// Quick-reply chips shown after a refusal, steering the user back to what the
// assistant can actually do.
var refusalSuggestions = []string{
	"What do my records say about this?",
	"Help me prepare questions for my doctor",
	"Show my upcoming appointments",
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleChatStream runs one pipeline turn and streams the result as SSE in a
// fixed event order: token* → jargon_map → action_cards → suggested_replies
// → done. Any failure after the stream opens becomes an error event.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, role := identity(r)
	if tenantID == "" || userID == "" {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "session_id and message are required", http.StatusBadRequest)
		return
	}

	// Ownership is a hard gate: the session id comes from the request body,
	// so without this check any caller could read or write another tenant's
	// transcript.
	owns, err := s.Repo.OwnsSession(r.Context(), tenantID, userID, req.SessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !owns {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The turn keeps running if the client disconnects mid-stream, so the
	// transcript stays consistent and the audit log still gets written.
	ctx := context.WithoutCancel(r.Context())

	// History is best-effort: a transcript read failure degrades to a turn
	// with no prior context rather than an error.
	history, err := s.Repo.RecentMessages(ctx, tenantID, userID, req.SessionID, historyWindow)
	if err != nil {
		s.Log.Warn("history load failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
		history = nil
	}

	if _, err := s.Repo.SaveMessage(ctx, req.SessionID, pkg.RoleUser, req.Message); err != nil {
		s.Log.Warn("user message save failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}

	initial := agent.StateRecord{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		SessionID: req.SessionID,
		Messages: append(history, pkg.Message{
			Role:    pkg.RoleUser,
			Content: req.Message,
		}),
	}

	final, err := s.Runner.RunTurn(ctx, initial)
	if err != nil {
		s.Log.Error("turn failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
		writeEvent(w, "error", map[string]string{"message": "Something went wrong. Please try again."})
		flusher.Flush()
		return
	}

	if _, err := s.Repo.SaveMessage(ctx, req.SessionID, pkg.RoleAssistant, final.FinalResponse); err != nil {
		s.Log.Warn("assistant message save failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
	}

	for _, chunk := range chunkText(final.FinalResponse, tokenChunkSize) {
		writeEvent(w, "token", map[string]string{"text": chunk})
		flusher.Flush()
	}

	jargon := final.JargonMap
	if jargon == nil {
		jargon = []pkg.JargonMapping{}
	}
	writeEvent(w, "jargon_map", jargon)

	cards := final.ActionCards
	if cards == nil {
		cards = []pkg.ActionCard{}
	}
	writeEvent(w, "action_cards", cards)

	// The refusal path skips the assembler, so its suggestions are injected
	// here instead of generated.
	replies := final.SuggestedReplies
	if replies == nil && final.Intent == pkg.IntentMedicalAdvice {
		replies = refusalSuggestions
	}
	if replies == nil {
		replies = []string{}
	}
	writeEvent(w, "suggested_replies", replies)

	writeEvent(w, "done", map[string]string{"intent": string(final.Intent)})
	flusher.Flush()
}

func writeEvent(w io.Writer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
