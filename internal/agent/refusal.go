package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wellbridge/pkg"
)

// RefusalTemplate opens a refusal when documented facts from the patient's
// own records are available to quote alongside it.
const RefusalTemplate = "I'm not able to give medical advice, diagnoses, or treatment recommendations. " +
	"For medical concerns, please contact your care team directly.\n\n" +
	"I found these notes from your care team that may be relevant:"

// NoRecordsTemplate is the refusal when no relevant records exist.
const NoRecordsTemplate = "I'm not able to give medical advice, diagnoses, or treatment recommendations. " +
	"Please contact your care team directly for medical questions."

// RefusalNode is the terminal for advice-seeking turns. It NEVER calls the
// generation provider: the text is chosen from fixed templates, so it cannot
// be manipulated by prompt injection, cannot drift, and works when the
// provider is down. The guardrail never runs on this path and RawResponse
// stays nil. The only external call is a read-only excerpt search over the
// patient's own records, quoted verbatim to keep the refusal useful.
type RefusalNode struct {
	Store RecordStore
	Log   *zap.Logger
}

func (n *RefusalNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	var facts []string

	excerpts, err := n.Store.SearchNotes(ctx, state.TenantID, state.UserID, state.LastUserMessage(), 3)
	if err != nil {
		// A store failure still produces a safe refusal.
		n.Log.Warn("refusal context lookup failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
	} else {
		for _, ex := range excerpts {
			excerpt := strings.TrimSpace(ex.Excerpt)
			if excerpt == "" {
				continue
			}
			provider := ex.ProviderName
			if provider == "" {
				provider = "Your care team"
			}
			facts = append(facts, fmt.Sprintf("%s (%s): %s", provider, ex.NoteDate.Format("2006-01-02"), excerpt))
		}
	}

	final := NoRecordsTemplate
	if len(facts) > 0 {
		bullets := make([]string, len(facts))
		for i, f := range facts {
			bullets[i] = "  • " + f
		}
		final = RefusalTemplate + "\n\n" + strings.Join(bullets, "\n")
	}

	return Outcome{
		FinalResponse:       strPtr(final),
		RefusalContextFacts: facts,
		JargonMap:           []pkg.JargonMapping{},
		// RawResponse deliberately unset: there is no provider output here.
	}, nil
}
