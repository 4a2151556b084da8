package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"wellbridge/pkg"
)

// Node is a uniform unit of work in the turn topology. A node receives a
// read-only view of the turn state and returns a partial update. Nodes own
// the fields they write; they must never branch on identity fields beyond
// passing them to the record store. A node that depends on the provider or
// the store must degrade to a safe fallback outcome instead of returning an
// error for expected failures; a returned error is treated as unexpected.
type Node interface {
	Execute(ctx context.Context, state StateRecord) (Outcome, error)
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, state StateRecord) (Outcome, error)

func (f NodeFunc) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	return f(ctx, state)
}

// RecordStore is the read-only view of the patient record and appointment
// store used by pipeline nodes. Every query is scoped by tenant and user.
type RecordStore interface {
	RecentRecords(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Record, error)
	SearchNotes(ctx context.Context, tenantID, userID, query string, limit int) ([]pkg.NoteExcerpt, error)
	UpcomingAppointments(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Appointment, error)
}

// Violation is one guardrail phrase-filter hit, recorded for audit review.
type Violation struct {
	TenantID         string
	UserID           string
	SessionID        string
	TruncatedRawText string
	PatternName      string
}

// AuditSink records guardrail violations. Appends are best-effort: a sink
// failure must never alter the already-computed response.
type AuditSink interface {
	Append(ctx context.Context, v Violation) error
}

// Executor holds the immutable topology (the name-keyed node table plus the
// two router functions) and drives node dispatch and state merging for one
// turn. Build it once at startup and share it across request handlers; it
// carries no per-turn mutable state.
type Executor struct {
	nodes map[NodeID]Node
	log   *zap.Logger
}

// NewExecutor builds an executor over the given node table. It panics if a
// node the dispatch order depends on is missing, since that is a wiring bug
// that no request should ever reach.
func NewExecutor(nodes map[NodeID]Node, log *zap.Logger) *Executor {
	for _, id := range []NodeID{
		NodeAssessment, NodeClassification, NodeRefusal,
		NodeNoteExplainer, NodeCareNavigator, NodeRecordCollector,
		NodeCalendar, NodeRecordLookup, NodeJargonExplainer,
		NodePreVisitPrep, NodeNoteSummarizer, NodeMedicationInfo,
		NodeGuardrail, NodeAssembler,
	} {
		if nodes[id] == nil {
			panic(fmt.Sprintf("agent: topology is missing node %q", id))
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{nodes: nodes, log: log}
}

// RunTurn executes exactly one path through the topology:
//
//	assessment → classification → RouteIntent → tool node (or refusal)
//	→ RouteToolOutcome → guardrail (or skipped) → assembler.
//
// The refusal node is terminal: its output is static text that never sees
// the guardrail or the provider. A node error is logged and its outcome
// discarded; the turn always continues so the user always gets safe text.
// The only error RunTurn itself returns is a recovered panic.
func (e *Executor) RunTurn(ctx context.Context, initial StateRecord) (final StateRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("turn panicked", zap.Any("panic", r), zap.String("session_id", initial.SessionID))
			final = initial
			err = fmt.Errorf("turn execution failed: %v", r)
		}
	}()

	state := initial

	state = e.step(ctx, NodeAssessment, state)
	state = e.step(ctx, NodeClassification, state)

	next := RouteIntent(state.Intent, state.Confidence)
	e.log.Debug("intent routed",
		zap.String("session_id", state.SessionID),
		zap.String("intent", string(state.Intent)),
		zap.Float64("confidence", state.Confidence),
		zap.Stringer("node", next))

	state = e.step(ctx, next, state)
	if next == NodeRefusal {
		return state, nil
	}

	if RouteToolOutcome(state) == NodeGuardrail {
		state = e.step(ctx, NodeGuardrail, state)
	}

	state = e.step(ctx, NodeAssembler, state)
	return state, nil
}

func (e *Executor) step(ctx context.Context, id NodeID, state StateRecord) StateRecord {
	out, err := e.nodes[id].Execute(ctx, state)
	if err != nil {
		// Unexpected: nodes degrade internally for expected failures.
		// Drop the outcome and keep going; never fail the turn.
		e.log.Warn("node returned error, outcome discarded",
			zap.Stringer("node", id),
			zap.String("session_id", state.SessionID),
			zap.Error(err))
		return state
	}
	return Merge(state, out)
}
