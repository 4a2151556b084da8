package guardrail

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeLevelEmptyText(t *testing.T) {
	assert.Zero(t, GradeLevel(""))
	assert.Zero(t, GradeLevel("   \n\t  "))
	assert.Zero(t, GradeLevel("... !!! ???"))
}

func TestGradeLevelClampsAtZero(t *testing.T) {
	// Three one-syllable words in one sentence grades far below zero.
	assert.Zero(t, GradeLevel("The cat sat."))
}

func TestGradeLevelKnownValue(t *testing.T) {
	// 5 words, 1 sentence, 15 syllables by the heuristic:
	// 0.39*5 + 11.8*3 - 15.59 = 21.76
	got := GradeLevel("The patient demonstrates significant improvement.")
	assert.InDelta(t, 21.76, got, 0.001)
}

func TestGradeLevelSimplerTextScoresLower(t *testing.T) {
	simple := GradeLevel("Your knee is healing well. The swelling went down. Keep up the walks.")
	complex := GradeLevel("The radiological evaluation demonstrates satisfactory anatomical " +
		"alignment alongside progressive osseous consolidation.")
	assert.Less(t, simple, complex)
	assert.LessOrEqual(t, simple, 8.0)
	assert.Greater(t, complex, 8.0)
}

func TestGradeLevelMonotonicity(t *testing.T) {
	// Same words, fewer sentences: longer average sentence grades higher.
	oneSentence := GradeLevel("one two three four five six.")
	twoSentences := GradeLevel("one two three. four five six.")
	assert.GreaterOrEqual(t, oneSentence, twoSentences)

	// Same word and sentence counts, more syllables per word grades higher.
	monosyllabic := GradeLevel("The plan was set for May.")
	polysyllabic := GradeLevel("The analysis was completed for evaluation.")
	assert.Greater(t, polysyllabic, monosyllabic)
}

func TestGradeLevelRoundsToTwoDecimals(t *testing.T) {
	got := GradeLevel("Several longer sentences produce fractional grades for verification purposes.")
	assert.Equal(t, math.Round(got*100)/100, got)
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":       1, // short word floor
		"a":         1,
		"the":       1,
		"doctor":    2,
		"healing":   2,
		"medicine":  3, // silent-e dropped before counting
		"hospital":  3,
		"monitored": 3, // "ed" ending subtracts one
		"squeezed":  1, // floor of one survives the "ed" rule
	}
	for word, want := range cases {
		assert.Equal(t, want, countSyllables(word), "word %q", word)
	}

	assert.Zero(t, countSyllables(""))
	assert.Zero(t, countSyllables("'.,!?"), "punctuation strips to an empty word")
}
