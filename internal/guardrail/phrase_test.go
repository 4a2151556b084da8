package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanFlagsProhibitedPhrases(t *testing.T) {
	cases := []struct {
		text    string
		pattern string
	}{
		{"I recommend switching to a low-dose aspirin.", "I_recommend"},
		{"i recommend rest", "I_recommend"},
		{"I diagnose you with hypertension.", "I_diagnose"},
		{"I suggest cutting back on salt.", "I_suggest"},
		{"Try this instead of your current routine.", "try_this_instead"},
		{"You should take two of these each morning.", "prescriptive_should"},
		{"You must stop the medication immediately.", "prescriptive_should"},
		{"I think you should stop taking this.", "prescriptive_should"},
		{"You need to avoid strenuous exercise.", "prescriptive_should"},
		{"This indicates you have an infection.", "diagnostic_this_indicates"},
		{"You probably have a sprain.", "you_likely_have"},
		{"Your condition is worsening.", "your_condition_is"},
		{"I would prescribe an antibiotic here.", "prescribe"},
		{"You are likely developing arthritis.", "you_are_developing"},
		{"You'll want to cut out dairy for a while.", "dietary_advice"},
		{"Take 200 mg every four hours.", "dosage_recommendation"},
		{"Take 1 tablet before bed.", "dosage_recommendation"},
		{"Seek immediate medical attention.", "emergency_directive"},
		{"You should seek emergency care now.", "emergency_directive"},
	}
	for _, tc := range cases {
		t.Run(tc.pattern+"/"+tc.text, func(t *testing.T) {
			name, hit := Scan(tc.text)
			assert.True(t, hit, "expected a match for %q", tc.text)
			assert.Equal(t, tc.pattern, name)
		})
	}
}

func TestScanPassesSafeExplanatoryText(t *testing.T) {
	clean := []string{
		"",
		"Your note says the doctor recommended a follow-up in six weeks.",
		"The record shows you were prescribed lisinopril in June.",
		"Dr. Chen suggested physical therapy, per your visit note.",
		"Your care team can explain whether this is taken with food.",
		"The note mentions a dose of 10mg was documented.",
	}
	for _, text := range clean {
		name, hit := Scan(text)
		assert.False(t, hit, "false positive %q on %q", name, text)
	}
}

func TestSafeFallbackIsItselfClean(t *testing.T) {
	name, hit := Scan(SafeFallback)
	assert.False(t, hit, "the fallback must never re-trigger the scanner (matched %q)", name)
}

func TestPatternNamesAreUniqueAndStable(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Patterns {
		assert.NotEmpty(t, p.Name)
		assert.False(t, seen[p.Name], "duplicate pattern name %q", p.Name)
		seen[p.Name] = true
	}
	assert.Len(t, Patterns, 13)
}
