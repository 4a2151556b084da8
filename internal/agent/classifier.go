package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// ClassifierNode assigns the routing intent and confidence for the turn.
// Temperature 0 for deterministic, reproducible classification; the last 3
// exchanges are included so "I just had surgery" followed by "what does that
// report say?" classifies as RECORD_LOOKUP, not GENERAL.
//
// Classification failure (provider down, unparsable payload) never raises
// past this node: it degrades to CARE_NAVIGATION at confidence 0.0, which is
// safer than a blanket refusal; the care navigator asks the user to clarify.
type ClassifierNode struct {
	LLM llm.Client
	Log *zap.Logger
}

type intentResult struct {
	Intent     pkg.Intent `json:"intent"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

var knownIntents = map[pkg.Intent]bool{
	pkg.IntentMedicalAdvice:    true,
	pkg.IntentNoteExplanation:  true,
	pkg.IntentScheduling:       true,
	pkg.IntentRecordLookup:     true,
	pkg.IntentJargonExplain:    true,
	pkg.IntentPreVisitPrep:     true,
	pkg.IntentCareNavigation:   true,
	pkg.IntentRecordCollection: true,
	pkg.IntentMedicationInfo:   true,
	pkg.IntentGeneral:          true,
}

func (n *ClassifierNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	turns := make([]llm.Message, 0, 8)

	// Up to 3 prior exchanges (6 messages) as context; assistant turns are
	// truncated so history never dominates the message being classified.
	prior := state.Messages
	if len(prior) > 0 {
		prior = prior[:len(prior)-1]
	}
	if len(prior) > 6 {
		prior = prior[len(prior)-6:]
	}
	for _, m := range prior {
		content := m.Content
		if m.Role == pkg.RoleAssistant {
			content = truncateRunes(content, 100)
		}
		turns = append(turns, llm.Message{Role: string(m.Role), Content: "[PRIOR] " + content})
	}
	turns = append(turns, llm.Message{
		Role:    "user",
		Content: "Classify this message: " + state.LastUserMessage(),
	})

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System:      classifierSystem,
		Turns:       turns,
		Temperature: 0,
		MaxTokens:   200,
		JSONMode:    true,
	})
	if err != nil || raw == "" {
		return n.classificationFailure(state, err)
	}

	var parsed intentResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return n.classificationFailure(state, err)
	}
	if !knownIntents[parsed.Intent] || parsed.Confidence < 0 || parsed.Confidence > 1 {
		return n.classificationFailure(state, nil)
	}

	n.Log.Info("intent classified",
		zap.String("session_id", state.SessionID),
		zap.String("intent", string(parsed.Intent)),
		zap.Float64("confidence", parsed.Confidence),
		zap.String("reasoning", parsed.Reasoning))

	return Outcome{
		Intent:     intentPtr(parsed.Intent),
		Confidence: floatPtr(parsed.Confidence),
	}, nil
}

func (n *ClassifierNode) classificationFailure(state StateRecord, err error) (Outcome, error) {
	n.Log.Warn("classification failed, degrading to care navigation",
		zap.String("session_id", state.SessionID), zap.Error(err))
	return Outcome{
		Intent:     intentPtr(pkg.IntentCareNavigation),
		Confidence: floatPtr(0.0),
	}, nil
}
