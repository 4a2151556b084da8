package agent

import (
	"fmt"
	"math/rand"
	"time"
)

const firstSessionWelcome = `%s! I'm WellBridge, your personal health companion.

I can help you make sense of your medical records — explaining visit notes in plain English, defining confusing terms, keeping track of your appointments, and helping you prepare questions for your next visit.

I can't give medical advice, but I'm great at helping you understand what your care team has already told you. What's on your mind?`

// Returning users get a lighter greeting, picked at random so repeat visits
// don't open with the exact same words.
var returningSessionWelcomes = []string{
	`%s, welcome back! I'm here whenever you want to go through your records, prep for an appointment, or untangle something your care team said. What can I help with today?`,
	`%s, good to have you back. Whether you just got home from an appointment, received some news, or simply have a question about your records, I'm here.`,
	`%s! Ready when you are. I can walk through your visit notes, explain a term, check your upcoming appointments, or help you get questions ready for your next visit.`,
}

// OpeningMessage is the assistant greeting written into a brand-new session
// before any user turn. It is static text and never passes through the
// pipeline or the provider.
func OpeningMessage(returning bool, now time.Time) string {
	var greeting string
	switch h := now.Hour(); {
	case h < 12:
		greeting = "Good morning"
	case h < 17:
		greeting = "Good afternoon"
	default:
		greeting = "Good evening"
	}
	if returning {
		variant := returningSessionWelcomes[rand.Intn(len(returningSessionWelcomes))]
		return fmt.Sprintf(variant, greeting)
	}
	return fmt.Sprintf(firstSessionWelcome, greeting)
}
