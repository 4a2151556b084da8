package guardrail

import (
	"math"
	"regexp"
	"strings"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	wordPattern   = regexp.MustCompile(`\b[a-zA-Z']+\b`)
	vowelGroups   = regexp.MustCompile(`[aeiou]+`)
)

// GradeLevel computes the Flesch-Kincaid grade level of text:
//
//	0.39*(words/sentences) + 11.8*(syllables/words) - 15.59
//
// clamped to a minimum of 0. Empty or wordless text scores 0. Grade 6 is
// accessible to most adults; anything above 8 gets a simplification pass.
func GradeLevel(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	numSentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			numSentences++
		}
	}
	if numSentences == 0 {
		return 0
	}

	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return 0
	}

	totalSyllables := 0
	for _, w := range words {
		totalSyllables += countSyllables(w)
	}

	asl := float64(len(words)) / float64(numSentences)
	asw := float64(totalSyllables) / float64(len(words))
	grade := 0.39*asl + 11.8*asw - 15.59

	// Two decimals, floor at zero, matching how grades are logged.
	return math.Round(math.Max(0, grade)*100) / 100
}

// countSyllables is a heuristic English syllable counter: accurate enough for
// Flesch-Kincaid scoring, not linguistically perfect.
func countSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, ".,!?;:\"'()"))
	if word == "" {
		return 0
	}
	if len(word) <= 3 {
		return 1
	}

	// Trailing silent 'e'
	if strings.HasSuffix(word, "e") && len(word) > 4 {
		word = word[:len(word)-1]
	}

	syllables := len(vowelGroups.FindAllString(word, -1))

	// Edge cases
	if strings.HasSuffix(word, "le") && len(word) > 2 && !strings.ContainsRune("aeiou", rune(word[len(word)-3])) {
		syllables++
	}
	if strings.HasSuffix(word, "ed") && syllables > 1 {
		syllables--
	}

	if syllables < 1 {
		return 1
	}
	return syllables
}
