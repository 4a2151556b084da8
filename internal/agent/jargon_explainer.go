package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// JargonExplainerNode defines a medical term the user asked about, grounding
// the explanation in the user's own notes when a matching excerpt exists.
type JargonExplainerNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

func (n *JargonExplainerNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	userMessage := state.LastUserMessage()

	var contextBlock string
	excerpts, err := n.Store.SearchNotes(ctx, state.TenantID, state.UserID, userMessage, 2)
	if err != nil {
		n.Log.Warn("note search failed for term explanation",
			zap.String("session_id", state.SessionID), zap.Error(err))
	} else if len(excerpts) > 0 {
		var b strings.Builder
		b.WriteString("\n\nThe term appears in the patient's own records:\n")
		for _, ex := range excerpts {
			fmt.Fprintf(&b, "- %s (%s): %s\n",
				ex.ProviderName, ex.NoteDate.Format("2006-01-02"), ex.Excerpt)
		}
		contextBlock = b.String()
	}

	raw, llmErr := n.LLM.Complete(ctx, llm.Request{
		System: jargonExplainerSystem,
		Turns: []llm.Message{{Role: "user", Content: fmt.Sprintf(
			"Patient question: %s%s", userMessage, contextBlock)}},
		Temperature: 0.3,
		MaxTokens:   400,
	})
	if llmErr != nil || raw == "" {
		if llmErr == nil {
			llmErr = fmt.Errorf("empty provider response")
		}
		n.Log.Warn("term explanation failed",
			zap.String("session_id", state.SessionID), zap.Error(llmErr))
		return Outcome{
			ToolError:   strPtr(llmErr.Error()),
			RawResponse: strPtr("I had trouble looking that up. Please try again."),
			JargonMap:   []pkg.JargonMapping{},
		}, nil
	}

	return Outcome{
		RawResponse: strPtr(raw),
		JargonMap:   []pkg.JargonMapping{},
	}, nil
}
