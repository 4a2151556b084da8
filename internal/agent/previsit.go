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

const preVisitFooter = "\n\nThese questions are drawn from your own records — " +
	"feel free to add anything else that's been on your mind. It can help to " +
	"write the answers down during your visit."

// PreVisitPrepNode builds a short list of questions the patient might ask at
// an upcoming appointment, grounded in their recent records. The questions
// are for the patient to ask their provider; the node never answers them.
type PreVisitPrepNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

type prepQuestions struct {
	Questions      []string `json:"questions"`
	BasedOnNoteIDs []string `json:"based_on_note_ids"`
}

func (n *PreVisitPrepNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	records := state.Records
	if records == nil {
		fetched, err := n.Store.RecentRecords(ctx, state.TenantID, state.UserID, 3)
		if err != nil {
			n.Log.Warn("record fetch failed for visit prep",
				zap.String("session_id", state.SessionID), zap.Error(err))
			records = []pkg.Record{}
		} else {
			records = fetched
		}
	}

	appointments := state.Appointments
	if appointments == nil {
		fetched, err := n.Store.UpcomingAppointments(ctx, state.TenantID, state.UserID, 1)
		if err != nil {
			n.Log.Warn("appointment fetch failed for visit prep",
				zap.String("session_id", state.SessionID), zap.Error(err))
			appointments = []pkg.Appointment{}
		} else {
			appointments = fetched
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient request: %s\n", state.LastUserMessage())
	if len(appointments) > 0 {
		appt := appointments[0]
		fmt.Fprintf(&b, "\nUpcoming appointment: %s with %s",
			appt.AppointmentDate.Format("Monday, January 2 at 3:04 PM"), appt.ProviderName)
		if appt.Notes != "" {
			fmt.Fprintf(&b, " — %s", appt.Notes)
		}
		b.WriteString("\n")
	}
	if len(records) > 0 {
		b.WriteString("\nRecent records:\n")
		for _, r := range records {
			content := r.Content
			if len(content) > 1500 {
				content = content[:1500]
			}
			fmt.Fprintf(&b, "\n[NOTE_ID:%s] %s — %s:\n%s\n",
				r.ID, r.NoteDate.Format("2006-01-02"), r.ProviderName, content)
		}
	} else {
		// With nothing on file, questions come from the conversation itself.
		b.WriteString("\nNo records on file. Base the questions on what the patient " +
			"has shared in this conversation.\n")
		for _, m := range state.Messages[:min(len(state.Messages), 6)] {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System:      preVisitPrepSystem,
		Turns:       []llm.Message{{Role: "user", Content: b.String()}},
		Temperature: 0.4,
		MaxTokens:   700,
		JSONMode:    true,
	})

	var parsed prepQuestions
	if err == nil && raw != "" {
		err = json.Unmarshal([]byte(raw), &parsed)
	} else if err == nil {
		err = fmt.Errorf("empty provider response")
	}
	if err != nil || len(parsed.Questions) == 0 {
		if err == nil {
			err = fmt.Errorf("no questions generated")
		}
		n.Log.Warn("visit prep generation failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Records:      records,
			Appointments: appointments,
			ToolError:    strPtr(err.Error()),
			RawResponse: strPtr("I had trouble putting together your question list just now. " +
				"Please try again in a moment."),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	var out strings.Builder
	out.WriteString("Here are some questions you might want to ask at your appointment:\n\n")
	for i, q := range parsed.Questions {
		fmt.Fprintf(&out, "%d. %s\n", i+1, q)
	}
	out.WriteString(preVisitFooter)

	return Outcome{
		Records:      records,
		Appointments: appointments,
		RawResponse:  strPtr(out.String()),
		JargonMap:    []pkg.JargonMapping{},
	}, nil
}
