package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// CalendarNode handles scheduling questions. Appointment listings come
// straight from the data layer; the provider only shapes the surrounding
// conversational text, so dates and times can never be invented.
type CalendarNode struct {
	LLM   llm.Client
	Store RecordStore
	Log   *zap.Logger
}

func (n *CalendarNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	appointments, err := n.Store.UpcomingAppointments(ctx, state.TenantID, state.UserID, 5)
	if err != nil {
		n.Log.Warn("appointment fetch failed",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return Outcome{
			Appointments: []pkg.Appointment{},
			ToolError:    strPtr(err.Error()),
			RawResponse:  strPtr("I had trouble checking your appointments. Please try again."),
			JargonMap:    []pkg.JargonMapping{},
		}, nil
	}

	if len(appointments) == 0 {
		return Outcome{
			Appointments: []pkg.Appointment{},
			RawResponse: strPtr("I don't see any upcoming appointments on your calendar. If you've " +
				"scheduled one recently it may not have synced yet, or you can reach " +
				"out to your provider's office to book one."),
			JargonMap: []pkg.JargonMapping{},
		}, nil
	}

	var listing strings.Builder
	cards := make([]pkg.ActionCard, 0, len(appointments))
	for i, appt := range appointments {
		fmt.Fprintf(&listing, "• %s with %s", appt.AppointmentDate.Format("Monday, January 2 at 3:04 PM"), appt.ProviderName)
		if appt.Notes != "" {
			fmt.Fprintf(&listing, " — %s", appt.Notes)
		}
		if appt.FacilityName != "" {
			fmt.Fprintf(&listing, " (%s)", appt.FacilityName)
		}
		listing.WriteString("\n")
		cards = append(cards, pkg.ActionCard{
			ID:          fmt.Sprintf("remind_appt_%d", i),
			Type:        pkg.CardAppointmentReminder,
			Label:       "Set a reminder",
			Description: fmt.Sprintf("Remind me about my %s appointment", appt.AppointmentDate.Format("Jan 2")),
			Payload: map[string]any{
				"provider_name":    appt.ProviderName,
				"appointment_date": appt.AppointmentDate.Format(time.RFC3339),
			},
		})
	}

	raw, llmErr := n.LLM.Complete(ctx, llm.Request{
		System: constitutionalSystem + "\n\nYou are helping a patient with their appointment " +
			"schedule. Present the appointments below warmly and briefly. Do not add, remove, " +
			"or change any appointment details. End by asking if they'd like help preparing " +
			"for any of them.",
		Turns: []llm.Message{{Role: "user", Content: fmt.Sprintf(
			"Patient asked: %s\n\nTheir upcoming appointments:\n%s",
			state.LastUserMessage(), listing.String())}},
		Temperature: 0.3,
		MaxTokens:   400,
	})
	if llmErr != nil || raw == "" {
		// The listing itself is the answer; conversational dressing is optional.
		raw = "Here are your upcoming appointments:\n\n" + listing.String() +
			"\nWould you like help preparing for any of these?"
	}

	return Outcome{
		Appointments: appointments,
		RawResponse:  strPtr(raw),
		JargonMap:    []pkg.JargonMapping{},
		ActionCards:  cards,
	}, nil
}
