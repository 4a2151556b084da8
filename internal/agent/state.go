// Package agent implements the turn-execution pipeline: the per-turn state
// record, the fixed-topology executor, the intent and tool-outcome routers,
// and every pipeline node. One StateRecord is created per inbound turn,
// owned exclusively by that turn, and destroyed after assembly; concurrent
// turns never share state, so no locking happens at this level.
package agent

import "wellbridge/pkg"

// CareContext accumulates concrete facts extracted from the conversation so
// the user never has to repeat themselves. Facts are only ever unioned in,
// never overwritten; the union preserves insertion order and deduplicates.
type CareContext struct {
	Facts []string
}

// StateRecord is the single source of truth flowing through every node of
// one conversational turn.
//
// The identity fields (TenantID, UserID, Role, SessionID) are set once at
// entry and are immutable: Outcome has no identity fields at all, so no node
// can modify them through a merge, so the invariant holds at compile time.
//
// RawResponse is the pre-guardrail provider output; FinalResponse is the
// post-guardrail text. Only FinalResponse is ever externally visible. The
// refusal terminal never sets RawResponse, so it stays nil on that path.
type StateRecord struct {
	// Identity, write-once at entry.
	TenantID  string
	UserID    string
	Role      string
	SessionID string

	// Conversation: prior turns plus the current user message, append-only.
	Messages []pkg.Message

	// Routing, set once by the classification node.
	Intent     pkg.Intent
	Confidence float64

	// Context, set by the assessment node and read by everything downstream.
	EmotionalState pkg.EmotionalState
	CareStage      pkg.CareStage
	CareContext    CareContext

	// Tool outputs.
	Records      []pkg.Record
	Appointments []pkg.Appointment
	ToolError    string

	// Response assembly.
	RawResponse   *string
	FinalResponse string

	// Annotations.
	JargonMap           []pkg.JargonMapping
	ActionCards         []pkg.ActionCard
	SuggestedReplies    []string // ephemeral, never persisted
	RefusalContextFacts []string
}

// LastUserMessage returns the content of the most recent message, which the
// delivery layer always appends last.
func (s StateRecord) LastUserMessage() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// Outcome is a partial StateRecord update returned by one node. A nil
// pointer or nil slice means "field untouched"; a non-nil empty slice
// replaces the field with empty (how the guardrail clears the jargon map).
// NewFacts is the one exception to last-writer-wins: it is unioned into
// CareContext.Facts rather than replacing them.
type Outcome struct {
	Intent         *pkg.Intent
	Confidence     *float64
	EmotionalState *pkg.EmotionalState
	CareStage      *pkg.CareStage
	NewFacts       []string

	Records      []pkg.Record
	Appointments []pkg.Appointment
	ToolError    *string

	RawResponse   *string
	FinalResponse *string

	JargonMap           []pkg.JargonMapping
	ActionCards         []pkg.ActionCard
	SuggestedReplies    []string
	RefusalContextFacts []string
}

// Merge applies outcome to base and returns the new state. Fields absent
// from the outcome are untouched; CareContext facts are appended and
// deduplicated in insertion order. Identity fields cannot appear in an
// Outcome, so they are untouchable by construction.
func Merge(base StateRecord, out Outcome) StateRecord {
	s := base

	if out.Intent != nil {
		s.Intent = *out.Intent
	}
	if out.Confidence != nil {
		s.Confidence = *out.Confidence
	}
	if out.EmotionalState != nil {
		s.EmotionalState = *out.EmotionalState
	}
	if out.CareStage != nil {
		s.CareStage = *out.CareStage
	}
	if len(out.NewFacts) > 0 {
		s.CareContext.Facts = unionFacts(base.CareContext.Facts, out.NewFacts)
	}
	if out.Records != nil {
		s.Records = out.Records
	}
	if out.Appointments != nil {
		s.Appointments = out.Appointments
	}
	if out.ToolError != nil {
		s.ToolError = *out.ToolError
	}
	if out.RawResponse != nil {
		s.RawResponse = out.RawResponse
	}
	if out.FinalResponse != nil {
		s.FinalResponse = *out.FinalResponse
	}
	if out.JargonMap != nil {
		s.JargonMap = out.JargonMap
	}
	if out.ActionCards != nil {
		s.ActionCards = out.ActionCards
	}
	if out.SuggestedReplies != nil {
		s.SuggestedReplies = out.SuggestedReplies
	}
	if out.RefusalContextFacts != nil {
		s.RefusalContextFacts = out.RefusalContextFacts
	}

	return s
}

func unionFacts(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, f := range existing {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		merged = append(merged, f)
	}
	for _, f := range incoming {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		merged = append(merged, f)
	}
	return merged
}

// small helpers for building outcomes without one-line temp vars everywhere

// truncateRunes caps s at n runes. Byte slicing would split a multi-byte
// character and produce invalid UTF-8.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func strPtr(s string) *string                         { return &s }
func floatPtr(f float64) *float64                     { return &f }
func intentPtr(i pkg.Intent) *pkg.Intent              { return &i }
func emotionPtr(e pkg.EmotionalState) *pkg.EmotionalState { return &e }
func stagePtr(c pkg.CareStage) *pkg.CareStage         { return &c }
