package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"wellbridge/pkg"
)

func TestMergeLastWriterWins(t *testing.T) {
	base := StateRecord{
		TenantID:   "t1",
		UserID:     "u1",
		Intent:     pkg.IntentGeneral,
		Confidence: 0.9,
	}

	merged := Merge(base, Outcome{
		Intent:     intentPtr(pkg.IntentScheduling),
		Confidence: floatPtr(0.5),
	})

	assert.Equal(t, pkg.IntentScheduling, merged.Intent)
	assert.Equal(t, 0.5, merged.Confidence)
	// Identity untouched: Outcome has no identity fields at all.
	assert.Equal(t, "t1", merged.TenantID)
	assert.Equal(t, "u1", merged.UserID)
}

func TestMergeEmptyOutcomeIsNoOp(t *testing.T) {
	raw := "raw text"
	base := StateRecord{
		Intent:      pkg.IntentRecordLookup,
		Confidence:  0.8,
		RawResponse: &raw,
		JargonMap:   []pkg.JargonMapping{{Term: "stenosis"}},
		CareContext: CareContext{Facts: []string{"surgery on 2026-08-01"}},
	}

	merged := Merge(base, Outcome{})

	if diff := cmp.Diff(base, merged); diff != "" {
		t.Errorf("empty outcome changed state (-want +got):\n%s", diff)
	}
}

func TestMergeFactsUnion(t *testing.T) {
	base := StateRecord{
		CareContext: CareContext{Facts: []string{"knee surgery", "on lisinopril"}},
	}

	merged := Merge(base, Outcome{
		NewFacts: []string{"on lisinopril", "allergic to penicillin", "knee surgery"},
	})

	// Union with insertion order preserved and duplicates dropped.
	assert.Equal(t,
		[]string{"knee surgery", "on lisinopril", "allergic to penicillin"},
		merged.CareContext.Facts)
}

func TestMergeNilSliceVersusEmptySlice(t *testing.T) {
	base := StateRecord{
		JargonMap:   []pkg.JargonMapping{{Term: "effusion"}},
		ActionCards: []pkg.ActionCard{{ID: "card-1"}},
	}

	// nil slice: field untouched.
	merged := Merge(base, Outcome{JargonMap: nil})
	assert.Len(t, merged.JargonMap, 1)

	// non-nil empty slice: replace with empty (how the guardrail clears the
	// jargon map after replacing the text).
	merged = Merge(base, Outcome{JargonMap: []pkg.JargonMapping{}})
	assert.NotNil(t, merged.JargonMap)
	assert.Empty(t, merged.JargonMap)
	assert.Len(t, merged.ActionCards, 1, "untouched field survives")
}

func TestMergeRawAndFinalResponse(t *testing.T) {
	merged := Merge(StateRecord{}, Outcome{RawResponse: strPtr("draft")})
	assert.NotNil(t, merged.RawResponse)
	assert.Equal(t, "draft", *merged.RawResponse)
	assert.Empty(t, merged.FinalResponse)

	merged = Merge(merged, Outcome{FinalResponse: strPtr("checked")})
	assert.Equal(t, "checked", merged.FinalResponse)
	assert.Equal(t, "draft", *merged.RawResponse)
}

func TestLastUserMessage(t *testing.T) {
	assert.Empty(t, StateRecord{}.LastUserMessage())

	s := StateRecord{Messages: []pkg.Message{
		{Role: pkg.RoleUser, Content: "first"},
		{Role: pkg.RoleAssistant, Content: "reply"},
		{Role: pkg.RoleUser, Content: "second"},
	}}
	assert.Equal(t, "second", s.LastUserMessage())
}
