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

// AssessorNode reads the user's message and recent context to assess
// emotional state, care stage, and any new concrete facts. It always runs
// first so every downstream node can adapt its tone and pacing. Assessment
// failure is non-critical: the node falls back to neutral defaults and the
// turn continues.
type AssessorNode struct {
	LLM llm.Client
	Log *zap.Logger
}

type assessment struct {
	EmotionalState pkg.EmotionalState `json:"emotional_state"`
	CareStage      pkg.CareStage      `json:"care_stage"`
	NewFacts       []string           `json:"new_facts"`
}

func (n *AssessorNode) Execute(ctx context.Context, state StateRecord) (Outcome, error) {
	// Short conversation snippet for context (last 4 messages max).
	recent := state.Messages
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	var snippet strings.Builder
	for _, m := range recent {
		fmt.Fprintf(&snippet, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}

	raw, err := n.LLM.Complete(ctx, llm.Request{
		System: assessorSystem,
		Turns: []llm.Message{{
			Role: "user",
			Content: "Conversation so far:\n" + snippet.String() +
				"\nAssess the patient's emotional state and extract care context.",
		}},
		Temperature: 0.1,
		MaxTokens:   300,
		JSONMode:    true,
	})
	if err != nil || raw == "" {
		n.Log.Warn("emotional assessment failed, keeping neutral defaults",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return neutralAssessment(state), nil
	}

	var parsed assessment
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		n.Log.Warn("emotional assessment unparsable",
			zap.String("session_id", state.SessionID), zap.Error(err))
		return neutralAssessment(state), nil
	}

	out := Outcome{NewFacts: parsed.NewFacts}
	if parsed.EmotionalState != "" {
		out.EmotionalState = emotionPtr(parsed.EmotionalState)
	}
	// A non-answer never downgrades a stage established on a prior turn.
	if parsed.CareStage != "" && parsed.CareStage != pkg.StageUnknown {
		out.CareStage = stagePtr(parsed.CareStage)
	}
	return out, nil
}

func neutralAssessment(state StateRecord) Outcome {
	es := state.EmotionalState
	if es == "" {
		es = pkg.EmotionCalm
	}
	return Outcome{EmotionalState: emotionPtr(es)}
}
