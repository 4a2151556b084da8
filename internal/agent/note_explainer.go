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

// NoteExplainerNode translates a specific visit note into plain English,
// section by section, keeping every explanation tied to what the note
// actually says.
type NoteExplainerNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

type noteExplanation struct {
	Response      string            `json:"response"`
	JargonEntries []JargonCandidate `json:"jargon_entries"`
}

func (n *NoteExplainerNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	records := state.Records
	if records == nil {
		fetched, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 3)
		if err != nil {
			n.Log.Warn("record fetch failed for explanation",
				zap.String("session_id", state.SessionID), zap.Error(err))
			return Outcome{
				Records:     []pkg.Record{},
				ToolError:   strPtr(err.Error()),
				RawResponse: strPtr("I had trouble retrieving your records. Please try again."),
				JargonMap:   []pkg.JargonMapping{},
			}, nil
		}
		records = fetched
	}

	if len(records) == 0 {
		return Outcome{
			Records: []pkg.Record{},
			RawResponse: strPtr("I don't have any visit notes on file for you yet. If you have " +
				"one from a recent appointment, upload it here and I'll go through " +
				"it with you in plain English."),
			JargonMap: []pkg.JargonMapping{},
			ActionCards: []pkg.ActionCard{{
				ID:          "upload_for_explanation",
				Type:        pkg.CardUpload,
				Label:       "Upload a visit note",
				Description: "Add the note you'd like explained",
				Payload:     map[string]any{},
			}},
		}, nil
	}

	var notes strings.Builder
	for i, r := range records {
		if i > 0 {
			notes.WriteString("\n\n")
		}
		fmt.Fprintf(&notes, "[NOTE_ID:%s] %s — %s:\n%s",
			r.ID, r.NoteDate.Format("2006-01-02"), r.ProviderName, r.Content)
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System: noteExplainerSystem,
		Turns: []llm.Message{{Role: "user", Content: fmt.Sprintf(
			"Patient question: %s\n\nVisit notes:\n\n%s",
			state.LastUserMessage(), notes.String())}},
		Temperature: 0.3,
		MaxTokens:   1200,
		JSONMode:    true,
	})

	var parsed noteExplanation
	if err == nil && raw != "" {
		err = json.Unmarshal([]byte(raw), &parsed)
	} else if err == nil {
		err = fmt.Errorf("empty provider response")
	}
	if err != nil {
		n.Log.Warn("explanation generation failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Records:   records,
			ToolError: strPtr(err.Error()),
			RawResponse: strPtr("I found your visit note but had trouble explaining it just now. " +
				"Please try again in a moment."),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	return Outcome{
		Records:     records,
		RawResponse: strPtr(parsed.Response),
		JargonMap:   AnnotateJargon(parsed.Response, parsed.JargonEntries),
	}, nil
}
