package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateJargonComputesOffsets(t *testing.T) {
	text := "Your note mentions spinal stenosis, which sounds scarier than it is."
	mappings := AnnotateJargon(text, []JargonCandidate{{
		Term:           "spinal stenosis",
		PlainEnglish:   "narrowing of the spaces in your spine",
		SourceRecordID: "rec-1",
		SourceSentence: "MRI confirms moderate spinal stenosis at L4-L5.",
	}})

	require.Len(t, mappings, 1)
	m := mappings[0]
	assert.Equal(t, strings.Index(text, "spinal stenosis"), m.CharOffsetStart)
	assert.Equal(t, m.CharOffsetStart+len("spinal stenosis"), m.CharOffsetEnd)
	// Half-open interval slices back to the exact term.
	assert.Equal(t, "spinal stenosis", text[m.CharOffsetStart:m.CharOffsetEnd])
	assert.Equal(t, "rec-1", m.SourceRecordID)
}

func TestAnnotateJargonIsCaseInsensitive(t *testing.T) {
	text := "The report notes Hypertension as a continuing condition."
	mappings := AnnotateJargon(text, []JargonCandidate{
		{Term: "hypertension", PlainEnglish: "high blood pressure"},
	})

	require.Len(t, mappings, 1)
	assert.Equal(t, strings.Index(text, "Hypertension"), mappings[0].CharOffsetStart)
}

func TestAnnotateJargonDropsAbsentTerms(t *testing.T) {
	mappings := AnnotateJargon("Your results look steady.", []JargonCandidate{
		{Term: "echocardiogram", PlainEnglish: "an ultrasound of the heart"},
		{Term: "steady", PlainEnglish: "unchanged"},
	})

	require.Len(t, mappings, 1, "an offset is never fabricated for a missing term")
	assert.Equal(t, "steady", mappings[0].Term)
}

func TestAnnotateJargonFirstOccurrenceOnly(t *testing.T) {
	text := "An MRI was ordered. The MRI is scheduled for Friday."
	mappings := AnnotateJargon(text, []JargonCandidate{
		{Term: "MRI", PlainEnglish: "a detailed scan using magnets"},
	})

	require.Len(t, mappings, 1)
	assert.Equal(t, 3, mappings[0].CharOffsetStart)
}

func TestAnnotateJargonEmptyCandidates(t *testing.T) {
	mappings := AnnotateJargon("Any text.", nil)
	assert.NotNil(t, mappings)
	assert.Empty(t, mappings)
}
