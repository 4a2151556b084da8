package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// RecordCollectorNode handles turns where the user mentions a document,
// visit, scan, or prescription not yet stored. It pairs a short, warm
// response with action cards the frontend renders as interactive options;
// the response should never feel like a form.
type RecordCollectorNode struct {
	LLM llm.Client
	Log *zap.Logger
}

const emailRequestTemplate = "Dear [Provider/Records Department],\n\n" +
	"I am requesting a copy of my medical records, including visit notes, " +
	"lab results, and any imaging reports from my recent visit.\n\n" +
	"Please send records to me at [your email address].\n\n" +
	"Thank you,\n[Your name]\nDate of Birth: [DOB]"

// inferActionCards picks at most 2 cards based on what the user mentioned:
// enough to offer a path without overwhelming.
func inferActionCards(userMessage string) []pkg.ActionCard {
	lower := strings.ToLower(userMessage)
	var cards []pkg.ActionCard

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	hasDocument := containsAny("letter", "report", "scan", "result", "document", "pdf",
		"image", "photo", "form", "paperwork", "discharge")
	hasVisit := containsAny("appointment", "visit", "saw", "doctor", "hospital", "clinic",
		"just came from", "just got back", "just had")
	hasRx := containsAny("prescription", "medication", "medicine", "drug", "pill",
		"started taking", "prescribed")

	if hasDocument || hasVisit {
		cards = append(cards, pkg.ActionCard{
			ID:          "upload_document",
			Type:        pkg.CardUpload,
			Label:       "Upload a document",
			Description: "Photo, PDF, or scan — I'll help you understand it",
			Payload:     map[string]any{},
		})
	}

	if hasRx && len(cards) < 2 {
		cards = append(cards, pkg.ActionCard{
			ID:          "add_medication",
			Type:        pkg.CardLink,
			Label:       "Add medication to your records",
			Description: "I'll store it and explain what it is",
			Payload:     map[string]any{"href": "/records/new?type=prescription"},
		})
	}

	// Always offer email as a fallback path when there is room.
	if len(cards) < 2 {
		cards = append(cards, pkg.ActionCard{
			ID:          "request_records_email",
			Type:        pkg.CardEmail,
			Label:       "Request records by email",
			Description: "I'll generate a template you can send to your provider",
			Payload:     map[string]any{"template": emailRequestTemplate},
		})
	}

	return cards
}

func (n *RecordCollectorNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	lastMessage := state.LastUserMessage()
	cards := inferActionCards(lastMessage)

	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.Label
	}
	facts := "none yet"
	if len(state.CareContext.Facts) > 0 {
		facts = strings.Join(state.CareContext.Facts, "; ")
	}
	context := "Patient emotional state: " + string(state.EmotionalState) + "\n" +
		"Known facts: " + facts + "\n" +
		"Action options being shown: " + strings.Join(labels, ", ")

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System:      recordCollectorSystem + "\n\nCONTEXT:\n" + context,
		Turns:       historyTurns(state.Messages, 5),
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil || raw == "" {
		if err != nil {
			n.Log.Warn("record collector generation failed, using static text",
				zap.String("session_id", state.SessionID), zap.Error(err))
		}
		raw = "I'd love to help you keep everything organized. " +
			"You can share any documents or notes from your care team " +
			"and I'll help you understand and remember what they say."
	}

	return Outcome{
		RawResponse: strPtr(raw),
		ActionCards: cards,
		JargonMap:   []pkg.JargonMapping{},
	}, nil
}
