package agent

import (
	"go.uber.org/zap"

	"wellbridge/internal/llm"
)

// Deps is everything the pipeline nodes need from the outside world.
type Deps struct {
	LLM   llm.Client
	Store RecordStore
	Audit AuditSink
	Log   *zap.Logger
}

// BuildExecutor wires the full fixed topology and returns a ready executor.
// This is the only place the node table is constructed.
func BuildExecutor(d Deps) *Executor {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	nodes := map[NodeID]Node{
		NodeAssessment:      &AssessorNode{LLM: d.LLM, Log: d.Log},
		NodeClassification:  &ClassifierNode{LLM: d.LLM, Log: d.Log},
		NodeRefusal:         &RefusalNode{Store: d.Store, Log: d.Log},
		NodeNoteExplainer:   &NoteExplainerNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeCareNavigator:   &CareNavigatorNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeRecordCollector: &RecordCollectorNode{LLM: d.LLM, Log: d.Log},
		NodeCalendar:        &CalendarNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeRecordLookup:    &RecordLookupNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeJargonExplainer: &JargonExplainerNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodePreVisitPrep:    &PreVisitPrepNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeNoteSummarizer:  &NoteSummarizerNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeMedicationInfo:  &MedicationInfoNode{LLM: d.LLM, Store: d.Store, Log: d.Log},
		NodeGuardrail:       &GuardrailNode{LLM: d.LLM, Audit: d.Audit, Log: d.Log},
		NodeAssembler:       &AssemblerNode{LLM: d.LLM, Log: d.Log},
	}
	return NewExecutor(nodes, d.Log)
}
