package agent

import (
	"context"

	"go.uber.org/zap"

	"wellbridge/internal/guardrail"
	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// ReadabilityThreshold is the Flesch-Kincaid grade level above which a
// response gets a simplification pass.
const ReadabilityThreshold = 8.0

// GuardrailNode is the two-stage output filter that runs on every
// provider-generated response (the refusal terminal bypasses it):
//
// Stage 1: deterministic prohibited-phrase scan. Any match replaces the
// entire response with guardrail.SafeFallback, clears the jargon map (its
// offsets index text that no longer exists), and appends a violation record
// to the audit sink. The append is best-effort; a sink failure never alters
// the response.
//
// Stage 2: readability gate. Text grading above ReadabilityThreshold is
// rewritten at a 6th-grade level; the rewrite clears the jargon map because
// offsets shift. Text at or below the threshold passes through untouched,
// jargon map included.
type GuardrailNode struct {
	LLM   llm.Client
	Audit AuditSink
	Log   *zap.Logger
}

func (n *GuardrailNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	raw := ""
	if state.RawResponse != nil {
		raw = *state.RawResponse
	}

	// Stage 1: prohibited phrase scan.
	if pattern, hit := guardrail.Scan(raw); hit {
		n.logViolation(ctx, state, raw, pattern)
		return Outcome{
			FinalResponse: strPtr(guardrail.SafeFallback),
			JargonMap:     []pkg.JargonMapping{},
		}, nil
	}

	// Stage 2: readability gate.
	grade := guardrail.GradeLevel(raw)
	if grade > ReadabilityThreshold {
		simplified, err := n.simplify(ctx, raw)
		if err != nil {
			// The rewrite is best-effort: an unreachable provider leaves the
			// text unchanged, so the existing offsets are still valid.
			n.Log.Warn("simplification failed, passing original through",
				zap.String("session_id", state.SessionID),
				zap.Float64("grade", grade),
				zap.Error(err))
			return Outcome{FinalResponse: strPtr(raw)}, nil
		}
		n.Log.Info("response simplified",
			zap.String("session_id", state.SessionID),
			zap.Float64("grade", grade))
		return Outcome{
			FinalResponse: strPtr(simplified),
			JargonMap:     []pkg.JargonMapping{},
		}, nil
	}

	// Clean and readable: pass through, jargon map untouched.
	return Outcome{FinalResponse: strPtr(raw)}, nil
}

func (n *GuardrailNode) simplify(ctx context.Context, text string) (string, error) {
	simplified, err := n.LLM.Complete(ctx, llm.Request{
		System:      simplifierSystem,
		Turns:       []llm.Message{{Role: "user", Content: text}},
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil {
		return "", err
	}
	if simplified == "" {
		return text, nil
	}
	return simplified, nil
}

// logViolation appends to the audit sink, fire-and-forget. The response has
// already been replaced by the time this runs; nothing here may change it.
func (n *GuardrailNode) logViolation(ctx context.Context, state StateRecord, raw, pattern string) {
	truncated := truncateRunes(raw, 2000)
	v := Violation{
		TenantID:         state.TenantID,
		UserID:           state.UserID,
		SessionID:        state.SessionID,
		TruncatedRawText: truncated,
		PatternName:      pattern,
	}
	if err := n.Audit.Append(ctx, v); err != nil {
		n.Log.Warn("audit append failed",
			zap.String("session_id", state.SessionID),
			zap.String("pattern", pattern),
			zap.Error(err))
	}
	n.Log.Info("guardrail violation",
		zap.String("session_id", state.SessionID),
		zap.String("pattern", pattern))
}
