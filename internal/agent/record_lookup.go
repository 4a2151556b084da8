package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// Words too common to carry relevance signal when ranking records.
var stopWords = map[string]bool{
	"can": true, "you": true, "look": true, "recent": true, "records": true,
	"show": true, "what": true, "does": true, "the": true, "and": true,
	"was": true, "were": true, "have": true, "has": true, "for": true,
	"with": true, "about": true, "from": true, "tell": true, "see": true,
	"find": true, "get": true, "please": true, "any": true, "all": true,
	"some": true, "last": true, "latest": true, "most": true, "also": true,
	"would": true, "like": true, "know": true, "let": true, "check": true,
	"says": true, "said": true, "information": true, "that": true,
	"this": true, "there": true, "here": true, "just": true, "been": true,
	"they": true, "them": true, "when": true, "where": true, "how": true,
}

var keywordPattern = regexp.MustCompile(`[a-zA-Z]+`)

func extractKeywords(message string) []string {
	words := keywordPattern.FindAllString(strings.ToLower(message), -1)
	var keywords []string
	for _, w := range words {
		if len(w) > 3 && !stopWords[w] {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

func scoreRecord(r pkg.Record, keywords []string) int {
	haystack := strings.ToLower(r.Content) + " " + strings.ToLower(r.ProviderName)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			score++
		}
	}
	return score
}

// RecordLookupNode answers "what do my records say about X". It fetches a
// recency-ordered index of the patient's records, ranks them by keyword
// relevance, and asks the provider for a document-grounded answer with
// jargon entries. The provider may only report what is documented; when it
// fails, the node degrades to a plain listing so the user still learns what
// is on file.
type RecordLookupNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

type recordAnswer struct {
	Response      string            `json:"response"`
	JargonEntries []JargonCandidate `json:"jargon_entries"`
}

func (n *RecordLookupNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	userMessage := state.LastUserMessage()

	allRecords, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 20)
	if err != nil {
		n.Log.Warn("record index fetch failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Records:     []pkg.Record{},
			ToolError:   strPtr(err.Error()),
			RawResponse: strPtr("I had trouble retrieving your records. Please try again."),
			JargonMap:   []pkg.JargonMapping{},
		}, nil
	}

	// No records at all: offer upload instead of an empty answer.
	if len(allRecords) == 0 {
		return Outcome{
			Records: []pkg.Record{},
			RawResponse: strPtr("I don't have any records on file for you yet, so I can't look " +
				"anything up.\n\n" +
				"If you have paperwork from a visit — a discharge summary, clinic " +
				"letter, lab printout, or prescription — you can upload it here and " +
				"I'll go through it with you."),
			JargonMap: []pkg.JargonMapping{},
			ActionCards: []pkg.ActionCard{{
				ID:          "upload_records",
				Type:        pkg.CardUpload,
				Label:       "Upload a document",
				Description: "Add a discharge summary, clinic letter, or lab result",
				Payload:     map[string]any{},
			}},
		}, nil
	}

	// Keyword relevance ranking; with no keyword hits, fall back to the
	// five most recent records so the answer still covers something real.
	keywords := extractKeywords(userMessage)
	scored := make([]pkg.Record, len(allRecords))
	copy(scored, allRecords)
	sort.SliceStable(scored, func(i, j int) bool {
		return scoreRecord(scored[i], keywords) > scoreRecord(scored[j], keywords)
	})
	relevant := scored[:min(8, len(scored))]
	hasHit := false
	for _, r := range relevant {
		if scoreRecord(r, keywords) > 0 {
			hasHit = true
			break
		}
	}
	if len(keywords) == 0 || !hasHit {
		relevant = allRecords[:min(5, len(allRecords))]
	}

	// Format the selected records plus a brief index of everything on file
	// so the provider can accurately say what exists.
	var notes strings.Builder
	for i, r := range relevant {
		if i > 0 {
			notes.WriteString("\n\n")
		}
		content := r.Content
		if len(content) > 2000 {
			content = content[:2000]
		}
		fmt.Fprintf(&notes, "[NOTE_ID:%s] %s — %s (%s):\n%s",
			r.ID, r.NoteDate.Format("2006-01-02"), r.ProviderName,
			strings.ReplaceAll(r.RecordType, "_", " "), content)
	}
	index := make([]string, 0, 10)
	for _, r := range allRecords[:min(10, len(allRecords))] {
		index = append(index, fmt.Sprintf("%s (%s)", r.NoteDate.Format("2006-01-02"), r.ProviderName))
	}

	userPrompt := fmt.Sprintf(
		"Patient question: %s\n\nAll records on file (newest first): %s\n\n"+
			"Records selected for this query via keyword matching (%d of %d total):\n\n%s",
		userMessage, strings.Join(index, ", "), len(relevant), len(allRecords), notes.String())

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System:      recordLookupSystem,
		Turns:       []llm.Message{{Role: "user", Content: userPrompt}},
		Temperature: 0.2,
		MaxTokens:   1200,
		JSONMode:    true,
	})

	var parsed recordAnswer
	if err == nil && raw != "" {
		err = json.Unmarshal([]byte(raw), &parsed)
	} else if err == nil {
		err = fmt.Errorf("empty provider response")
	}
	if err != nil {
		// Degrade to a plain listing so the user knows records exist.
		n.Log.Warn("record lookup generation failed, listing records",
			zap.String("session_id", state.SessionID), zap.Error(err))
		lines := make([]string, 0, 10)
		for _, r := range allRecords[:min(10, len(allRecords))] {
			lines = append(lines, fmt.Sprintf("• %s — %s from %s",
				r.NoteDate.Format("2006-01-02"),
				strings.ReplaceAll(r.RecordType, "_", " "), r.ProviderName))
		}
		return Outcome{
			Records:   allRecords[:min(10, len(allRecords))],
			ToolError: strPtr(err.Error()),
			RawResponse: strPtr(fmt.Sprintf(
				"I found %d record(s) but had trouble reading them in detail right now. "+
					"Here's what's on file:\n\n%s\n\nCould you tell me more specifically what you'd like to know?",
				len(allRecords), strings.Join(lines, "\n"))),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	return Outcome{
		Records:     relevant,
		RawResponse: strPtr(parsed.Response),
		JargonMap:   AnnotateJargon(parsed.Response, parsed.JargonEntries),
		ActionCards: []pkg.ActionCard{},
	}, nil
}
