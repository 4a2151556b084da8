package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// Phrases that indicate the user has a physical document to share.
var (
	hasDocumentPattern = regexp.MustCompile(`(?i)\b(note|notes|letter|report|discharge|summary|paperwork|document|papers|` +
		`prescription|results?|scan|lab|form|records?)\b`)
	gaveOrHasPattern = regexp.MustCompile(`(?i)\b(gave|given|got|received|have|has|here|bring|brought|upload|photo|photograph|` +
		`picture|don'?t understand|can'?t read|summarize|explain|help me|help with)\b`)
)

func userHasDocument(message string) bool {
	return hasDocumentPattern.MatchString(message) && gaveOrHasPattern.MatchString(message)
}

// CareNavigatorNode handles the emotional, journey-oriented turns: sharing
// news, expressing feelings, asking what happens next. It validates before
// informing, adapts tone to the assessed emotional state, and grounds its
// response in documented records. It is also the soft fallback for
// unclassified turns that pass the confidence gate.
type CareNavigatorNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

func (n *CareNavigatorNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	lastMessage := state.LastUserMessage()

	// Fast path: the user explicitly has a document, so offer upload
	// immediately, no provider call. Never loop them through "tell me more".
	if userHasDocument(lastMessage) {
		return Outcome{
			RawResponse: strPtr("Of course — I'd love to help you make sense of it.\n\n" +
				"You can photograph or scan the note and upload it here. " +
				"Once I have it, I'll go through everything step by step: " +
				"what the doctor documented, what any prescriptions are for, " +
				"any follow-up appointments, and any terms that might be confusing.\n\n" +
				"Would you like to upload it now?"),
			ActionCards: []pkg.ActionCard{{
				ID:          "upload_note",
				Type:        pkg.CardUpload,
				Label:       "Upload your note or letter",
				Description: "Photograph or scan the document — I'll read through it and explain everything in plain language",
				Payload:     map[string]any{},
			}},
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	// Fetch recent records and the next appointment to ground the response.
	// Failures here are tolerable: the navigator can still respond warmly.
	records := state.Records
	appointments := state.Appointments
	if len(records) == 0 {
		if recs, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 3); err == nil {
			records = recs
		} else {
			n.Log.Warn("record fetch failed", zap.String("session_id", state.SessionID), zap.Error(err))
		}
	}
	if len(appointments) == 0 {
		if appts, err := n.Store.UpcomingAppointments(ctx, state.TenantID, state.UserID, 1); err == nil {
			appointments = appts
		}
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System: careNavigatorSystem + "\n\nCURRENT CONTEXT:\n" +
			navigatorContext(state, records, appointments),
		Turns:       historyTurns(state.Messages, 7),
		Temperature: 0.4,
		MaxTokens:   500,
	})
	if err != nil || raw == "" {
		raw = "I'm here. What's going on — did something happen at your appointment, " +
			"or is there something you'd like help understanding?"
	}

	out := Outcome{
		RawResponse:  strPtr(raw),
		Records:      records,
		Appointments: appointments,
		ActionCards:  []pkg.ActionCard{},
		JargonMap:    []pkg.JargonMapping{},
	}

	if len(records) == 0 {
		switch state.CareStage {
		case pkg.StagePostVisit, pkg.StagePostSurgery, pkg.StageDiagnosis, pkg.StageTreatment:
			out.ActionCards = append(out.ActionCards, pkg.ActionCard{
				ID:          "upload_note",
				Type:        pkg.CardUpload,
				Label:       "Upload a note or letter",
				Description: "Share any paperwork from your visit and I'll help explain it",
				Payload:     map[string]any{},
			})
		}
		out.SuggestedReplies = []string{
			"I have a note from my doctor to share",
			"What can WellBridge help me with?",
			"Tell me more about how this works",
		}
	} else {
		out.SuggestedReplies = []string{
			"What questions should I ask my doctor?",
			"Can you summarize my recent records?",
			"What should I focus on next?",
		}
	}

	return out, nil
}

func navigatorContext(state StateRecord, records []pkg.Record, appointments []pkg.Appointment) string {
	var parts []string

	parts = append(parts, "Patient emotional state: "+string(state.EmotionalState))
	parts = append(parts, "Care stage: "+string(state.CareStage))

	if len(state.CareContext.Facts) > 0 {
		parts = append(parts, "Known facts from conversation: "+strings.Join(state.CareContext.Facts, "; "))
	}

	if len(records) > 0 {
		summaries := make([]string, 0, 3)
		for _, r := range records[:min(3, len(records))] {
			content := r.Content
			if len(content) > 200 {
				content = content[:200]
			}
			summaries = append(summaries, fmt.Sprintf("[%s, %s]: %s",
				r.NoteDate.Format("2006-01-02"), r.ProviderName, content))
		}
		parts = append(parts, "Recent records:\n"+strings.Join(summaries, "\n"))
	} else {
		parts = append(parts, "No records found in the patient's profile yet.")
	}

	if len(appointments) > 0 {
		next := appointments[0]
		parts = append(parts, fmt.Sprintf("Next appointment: %s on %s",
			next.ProviderName, next.AppointmentDate.Format("2006-01-02")))
	}

	return strings.Join(parts, "\n")
}

// historyTurns converts the last n transcript messages (excluding the
// current user message) into provider turns and re-appends the current
// message last.
func historyTurns(messages []pkg.Message, n int) []llm.Message {
	if len(messages) == 0 {
		return nil
	}
	prior := messages[:len(messages)-1]
	if len(prior) > n-1 {
		prior = prior[len(prior)-(n-1):]
	}
	turns := make([]llm.Message, 0, n)
	for _, m := range prior {
		turns = append(turns, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	turns = append(turns, llm.Message{Role: "user", Content: messages[len(messages)-1].Content})
	return turns
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
