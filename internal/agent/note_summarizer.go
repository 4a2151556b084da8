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

// NoteSummarizerNode produces a plain-language rollup of the patient's most
// recent records, flagging the terms a layperson would stumble on.
type NoteSummarizerNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

type noteSummary struct {
	Summary       string            `json:"summary"`
	JargonEntries []JargonCandidate `json:"jargon_entries"`
}

func (n *NoteSummarizerNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	records := state.Records
	if records == nil {
		fetched, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 5)
		if err != nil {
			n.Log.Warn("record fetch failed for summary",
				zap.String("session_id", state.SessionID), zap.Error(err))
			return Outcome{
				Records:     []pkg.Record{},
				ToolError:   strPtr(err.Error()),
				RawResponse: strPtr("I had trouble retrieving your records to summarize. Please try again."),
				JargonMap:   []pkg.JargonMapping{},
			}, nil
		}
		records = fetched
	}

	if len(records) == 0 {
		return Outcome{
			Records: []pkg.Record{},
			RawResponse: strPtr("I don't have any records on file for you yet, so there's " +
				"nothing to summarize. Once you upload a visit note or connect your " +
				"provider's portal, I can walk you through what it says."),
			JargonMap: []pkg.JargonMapping{},
			ActionCards: []pkg.ActionCard{{
				ID:          "upload_for_summary",
				Type:        pkg.CardUpload,
				Label:       "Upload a document",
				Description: "Add a visit note or lab result to summarize",
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
		System: noteSummarizerSystem,
		Turns: []llm.Message{{Role: "user", Content: fmt.Sprintf(
			"Patient request: %s\n\nRecords to summarize:\n\n%s",
			state.LastUserMessage(), notes.String())}},
		Temperature: 0.3,
		MaxTokens:   1000,
		JSONMode:    true,
	})

	var parsed noteSummary
	if err == nil && raw != "" {
		err = json.Unmarshal([]byte(raw), &parsed)
	} else if err == nil {
		err = fmt.Errorf("empty provider response")
	}
	if err != nil {
		n.Log.Warn("summary generation failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Records:   records,
			ToolError: strPtr(err.Error()),
			RawResponse: strPtr(fmt.Sprintf(
				"I found %d record(s) on file but had trouble summarizing them just now. "+
					"Please try again in a moment.", len(records))),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	return Outcome{
		Records:     records,
		RawResponse: strPtr(parsed.Summary),
		JargonMap:   AnnotateJargon(parsed.Summary, parsed.JargonEntries),
	}, nil
}
