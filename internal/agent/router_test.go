package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wellbridge/pkg"
)

func TestRouteIntentHighConfidence(t *testing.T) {
	cases := []struct {
		intent pkg.Intent
		want   NodeID
	}{
		{pkg.IntentMedicalAdvice, NodeRefusal},
		{pkg.IntentNoteExplanation, NodeNoteExplainer},
		{pkg.IntentCareNavigation, NodeCareNavigator},
		{pkg.IntentRecordCollection, NodeRecordCollector},
		{pkg.IntentScheduling, NodeCalendar},
		{pkg.IntentRecordLookup, NodeRecordLookup},
		{pkg.IntentJargonExplain, NodeJargonExplainer},
		{pkg.IntentPreVisitPrep, NodePreVisitPrep},
		{pkg.IntentMedicationInfo, NodeMedicationInfo},
		{pkg.IntentGeneral, NodeNoteSummarizer},
	}
	for _, tc := range cases {
		t.Run(string(tc.intent), func(t *testing.T) {
			assert.Equal(t, tc.want, RouteIntent(tc.intent, 0.95))
		})
	}
}

func TestMedicalAdviceAlwaysRefuses(t *testing.T) {
	for _, conf := range []float64{0.0, 0.3, 0.69, 0.70, 0.99, 1.0} {
		assert.Equal(t, NodeRefusal, RouteIntent(pkg.IntentMedicalAdvice, conf),
			"confidence %v", conf)
	}
}

func TestConfidenceGate(t *testing.T) {
	// Below the gate, non-safe intents refuse.
	assert.Equal(t, NodeRefusal, RouteIntent(pkg.IntentMedicationInfo, 0.69))
	assert.Equal(t, NodeRefusal, RouteIntent(pkg.IntentMedicalAdvice, 0.69))
	assert.Equal(t, NodeRefusal, RouteIntent(pkg.Intent(""), 0.0))
	assert.Equal(t, NodeRefusal, RouteIntent(pkg.Intent("NOT_A_REAL_INTENT"), 0.5))

	// SafeSet intents pass the gate at any confidence.
	safe := []pkg.Intent{
		pkg.IntentGeneral, pkg.IntentCareNavigation, pkg.IntentRecordCollection,
		pkg.IntentRecordLookup, pkg.IntentNoteExplanation, pkg.IntentPreVisitPrep,
		pkg.IntentScheduling, pkg.IntentJargonExplain,
	}
	for _, intent := range safe {
		assert.NotEqual(t, NodeRefusal, RouteIntent(intent, 0.0),
			"safe intent %s must bypass the gate", intent)
	}

	// At the gate exactly, non-safe intents proceed.
	assert.Equal(t, NodeMedicationInfo, RouteIntent(pkg.IntentMedicationInfo, 0.70))

	// A SafeSet intent below the gate routes to its own node, not refusal.
	assert.Equal(t, NodeNoteExplainer, RouteIntent(pkg.IntentNoteExplanation, 0.40))
}

func TestSafeSetMembership(t *testing.T) {
	assert.True(t, InSafeSet(pkg.IntentGeneral))
	assert.True(t, InSafeSet(pkg.IntentScheduling))
	assert.False(t, InSafeSet(pkg.IntentMedicalAdvice))
	assert.False(t, InSafeSet(pkg.IntentMedicationInfo))
	assert.False(t, InSafeSet(pkg.Intent("")))
}

func TestUnknownIntentAtHighConfidenceFallsBackToNavigator(t *testing.T) {
	assert.Equal(t, NodeCareNavigator, RouteIntent(pkg.Intent("BOGUS"), 0.9))
	assert.Equal(t, NodeCareNavigator, RouteIntent(pkg.Intent(""), 0.9))
}

func TestRouteToolOutcome(t *testing.T) {
	raw := "some generated text"
	assert.Equal(t, NodeGuardrail, RouteToolOutcome(StateRecord{RawResponse: &raw}))

	empty := ""
	assert.Equal(t, NodeGuardrail, RouteToolOutcome(StateRecord{RawResponse: &empty}),
		"set-but-empty raw response still goes through the guardrail")

	assert.Equal(t, NodeAssembler, RouteToolOutcome(StateRecord{}))
}
