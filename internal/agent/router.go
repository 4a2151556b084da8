package agent

import "wellbridge/pkg"

// NodeID identifies one node in the turn topology. Both routers are total,
// pure functions over this closed enum so routing is exhaustively testable;
// the unclassified-intent path is an explicit case, not an implicit fallback.
type NodeID int

const (
	NodeAssessment NodeID = iota
	NodeClassification
	NodeRefusal
	NodeNoteExplainer
	NodeCareNavigator
	NodeRecordCollector
	NodeCalendar
	NodeRecordLookup
	NodeJargonExplainer
	NodePreVisitPrep
	NodeNoteSummarizer
	NodeMedicationInfo
	NodeGuardrail
	NodeAssembler
)

var nodeNames = map[NodeID]string{
	NodeAssessment:      "assessment",
	NodeClassification:  "classification",
	NodeRefusal:         "refusal",
	NodeNoteExplainer:   "note_explainer",
	NodeCareNavigator:   "care_navigator",
	NodeRecordCollector: "record_collector",
	NodeCalendar:        "calendar",
	NodeRecordLookup:    "record_lookup",
	NodeJargonExplainer: "jargon_explainer",
	NodePreVisitPrep:    "pre_visit_prep",
	NodeNoteSummarizer:  "note_summarizer",
	NodeMedicationInfo:  "medication_info",
	NodeGuardrail:       "guardrail",
	NodeAssembler:       "assembler",
}

func (n NodeID) String() string {
	if s, ok := nodeNames[n]; ok {
		return s
	}
	return "unknown"
}

// ConfidenceGate is the classifier confidence below which only SafeSet
// intents may proceed.
const ConfidenceGate = 0.70

// safeSet holds the intents that can never produce prescriptive content by
// construction, so they proceed even when the classifier is uncertain.
// MEDICATION_INFO is deliberately absent: an uncertain medication question
// refuses rather than risking a misrouted advice request.
var safeSet = map[pkg.Intent]bool{
	pkg.IntentGeneral:          true,
	pkg.IntentCareNavigation:   true,
	pkg.IntentRecordCollection: true,
	pkg.IntentRecordLookup:     true,
	pkg.IntentNoteExplanation:  true,
	pkg.IntentPreVisitPrep:     true,
	pkg.IntentScheduling:       true,
	pkg.IntentJargonExplain:    true,
}

// InSafeSet reports whether intent bypasses the confidence gate.
func InSafeSet(intent pkg.Intent) bool { return safeSet[intent] }

// RouteIntent maps (intent, confidence) to the next node after
// classification.
//
// The confidence gate MUST be evaluated before the intent lookup: merging
// the two into one table would change behavior for unclassified
// low-confidence turns, which must refuse via the gate rather than resolve
// through a default map entry. MEDICAL_ADVICE maps to refusal at every
// confidence; there is no way to bypass it.
func RouteIntent(intent pkg.Intent, confidence float64) NodeID {
	if confidence < ConfidenceGate && !safeSet[intent] {
		return NodeRefusal
	}

	switch intent {
	case pkg.IntentMedicalAdvice:
		return NodeRefusal
	case pkg.IntentNoteExplanation:
		return NodeNoteExplainer
	case pkg.IntentCareNavigation:
		return NodeCareNavigator
	case pkg.IntentRecordCollection:
		return NodeRecordCollector
	case pkg.IntentScheduling:
		return NodeCalendar
	case pkg.IntentRecordLookup:
		return NodeRecordLookup
	case pkg.IntentJargonExplain:
		return NodeJargonExplainer
	case pkg.IntentPreVisitPrep:
		return NodePreVisitPrep
	case pkg.IntentMedicationInfo:
		return NodeMedicationInfo
	case pkg.IntentGeneral:
		return NodeNoteSummarizer
	default:
		// Unknown intent value, or no intent at confidence >= gate. Should
		// not occur, but the care navigator can ask the user to clarify.
		return NodeCareNavigator
	}
}

// RouteToolOutcome decides where a tool node's output goes: the guardrail
// when there is generated text to check, or straight to the assembler when
// the node only produced a tool error.
func RouteToolOutcome(state StateRecord) NodeID {
	if state.RawResponse != nil {
		return NodeGuardrail
	}
	return NodeAssembler
}
