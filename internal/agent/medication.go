package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

const medicationDisclaimer = "\n\nThis is general information about the medication " +
	"as documented in your records, not dosing or usage advice. Always follow the " +
	"instructions your prescriber gave you, and contact them or your pharmacist " +
	"before changing how you take it."

// MedicationInfoNode explains what a documented medication is and why it was
// prescribed, per the patient's own records. It never advises on dosing, and
// a fixed disclaimer is appended regardless of what the provider returns.
type MedicationInfoNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

func (n *MedicationInfoNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	records := state.Records
	if records == nil {
		fetched, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 5)
		if err != nil {
			n.Log.Warn("record fetch failed for medication info",
				zap.String("session_id", state.SessionID), zap.Error(err))
			records = []pkg.Record{}
		} else {
			records = fetched
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient question: %s\n", state.LastUserMessage())
	if len(records) > 0 {
		b.WriteString("\nThe patient's records (only discuss medications documented here):\n")
		for _, r := range records {
			content := r.Content
			if len(content) > 1500 {
				content = content[:1500]
			}
			fmt.Fprintf(&b, "\n[NOTE_ID:%s] %s — %s:\n%s\n",
				r.ID, r.NoteDate.Format("2006-01-02"), r.ProviderName, content)
		}
	} else {
		b.WriteString("\nNo records on file. Explain only general, factual information " +
			"about the medication named in the question, if any.\n")
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System:      medicationInfoSystem,
		Turns:       []llm.Message{{Role: "user", Content: b.String()}},
		Temperature: 0.1,
		MaxTokens:   350,
	})
	if err != nil || raw == "" {
		if err == nil {
			err = fmt.Errorf("empty provider response")
		}
		n.Log.Warn("medication info generation failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Records:   records,
			ToolError: strPtr(err.Error()),
			RawResponse: strPtr("I had trouble looking up that medication information just now. " +
				"Please try again, or ask your pharmacist — they're the best resource " +
				"for medication questions."),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	return Outcome{
		Records:     records,
		RawResponse: strPtr(raw + medicationDisclaimer),
		JargonMap:   []pkg.JargonMapping{},
		ActionCards: []pkg.ActionCard{{
			ID:          "medication_reminder",
			Type:        pkg.CardMedicationReminder,
			Label:       "Set a medication reminder",
			Description: "Get a nudge when it's time to take this medication",
			Payload:     map[string]any{},
		}},
	}, nil
}
