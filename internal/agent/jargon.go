package agent

import (
	"strings"

	"wellbridge/pkg"
)

// JargonCandidate is an annotation candidate produced by a generation node:
// a medical term, its plain-English meaning, and the note it came from.
type JargonCandidate struct {
	Term           string `json:"term"`
	PlainEnglish   string `json:"plain_english"`
	SourceRecordID string `json:"source_record_id"`
	SourceSentence string `json:"source_sentence"`
}

// AnnotateJargon computes character-offset mappings for each candidate term
// against the given response text. The search is case-insensitive and takes
// the first occurrence; candidates whose term does not appear are silently
// dropped; an offset is never fabricated. Offsets are half-open and valid
// only for this exact text: call this again (never reuse mappings) whenever
// the base text changes.
func AnnotateJargon(text string, candidates []JargonCandidate) []pkg.JargonMapping {
	lower := strings.ToLower(text)
	mappings := make([]pkg.JargonMapping, 0, len(candidates))
	for _, c := range candidates {
		idx := strings.Index(lower, strings.ToLower(c.Term))
		if idx == -1 {
			continue
		}
		mappings = append(mappings, pkg.JargonMapping{
			Term:            c.Term,
			PlainEnglish:    c.PlainEnglish,
			SourceRecordID:  c.SourceRecordID,
			SourceSentence:  c.SourceSentence,
			CharOffsetStart: idx,
			CharOffsetEnd:   idx + len(c.Term),
		})
	}
	return mappings
}
