package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

const assemblerFallback = "I'm sorry, I wasn't able to process that. Please try again."

// Static reply chips used when suggestion generation is unavailable. Keyed by
// intent so the chips still make sense for the conversation at hand.
var staticSuggestions = map[pkg.Intent][]string{
	pkg.IntentMedicalAdvice:    {"What do my records say about this?", "Help me prepare questions for my doctor", "Show my upcoming appointments"},
	pkg.IntentNoteExplanation:  {"What should I ask my doctor about this?", "Summarize my recent records", "Explain another term"},
	pkg.IntentScheduling:       {"Help me prepare for my next visit", "What do my records say?", "Summarize my recent records"},
	pkg.IntentRecordLookup:     {"Explain that in simpler terms", "What should I ask my doctor?", "Show my upcoming appointments"},
	pkg.IntentJargonExplain:    {"Where does that appear in my records?", "Explain another term", "Summarize my recent records"},
	pkg.IntentPreVisitPrep:     {"Show my upcoming appointments", "What do my records say?", "Add another question"},
	pkg.IntentCareNavigation:   {"Upload a document", "Show my upcoming appointments", "Summarize my recent records"},
	pkg.IntentRecordCollection: {"Upload a document", "Email my records in", "What records do you have for me?"},
	pkg.IntentMedicationInfo:   {"Where is this in my records?", "Help me prepare questions for my pharmacist", "Show my upcoming appointments"},
	pkg.IntentGeneral:          {"What can you help me with?", "Summarize my recent records", "Show my upcoming appointments"},
}

// AssemblerNode is the terminal step of every non-refusal turn. It guarantees
// a non-empty final response and attaches suggested replies. Suggestions are
// a nicety: generation failures fall back to static chips and never surface
// to the user as an error.
type AssemblerNode struct {
	LLM llm.Client
	Log *zap.Logger
}

type suggestedReplies struct {
	Replies []string `json:"replies"`
}

func (n *AssemblerNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	out := Outcome{}

	if strings.TrimSpace(state.FinalResponse) == "" {
		out.FinalResponse = strPtr(assemblerFallback)
	}

	if state.SuggestedReplies == nil {
		out.SuggestedReplies = n.suggestions(ctx, state)
	}
	return out, nil
}

func (n *AssemblerNode) suggestions(ctx context.Context, state StateRecord) []string {
	finalText := state.FinalResponse
	if strings.TrimSpace(finalText) == "" {
		finalText = assemblerFallback
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System: suggestionsSystem,
		Turns: []llm.Message{{Role: "user", Content: fmt.Sprintf(
			"User asked: %s\n\nAssistant replied: %s",
			state.LastUserMessage(), finalText)}},
		Temperature: 0.5,
		MaxTokens:   150,
		JSONMode:    true,
	})

	var parsed suggestedReplies
	if err == nil && raw != "" {
		err = json.Unmarshal([]byte(raw), &parsed)
	}
	if err != nil || len(parsed.Replies) == 0 {
		if err != nil {
			n.Log.Debug("suggestion generation failed, using static chips",
				zap.String("session_id", state.SessionID), zap.Error(err))
		}
		if chips, ok := staticSuggestions[state.Intent]; ok {
			return chips
		}
		return staticSuggestions[pkg.IntentGeneral]
	}
	if len(parsed.Replies) > 3 {
		parsed.Replies = parsed.Replies[:3]
	}
	return parsed.Replies
}
