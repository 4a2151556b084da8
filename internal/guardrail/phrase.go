// Package guardrail holds the two deterministic output-filter stages: a
// prohibited-phrase scanner and a Flesch-Kincaid readability grade. Both are
// pure functions with no network dependency, so the last line of defense
// before a response reaches the user works even when the provider is down,
// and the audit log can record exactly which named rule fired.
package guardrail

import "regexp"

// SafeFallback wholly replaces any response that matched a prohibited
// pattern. It deliberately contains no phrasing that re-triggers the scanner.
const SafeFallback = "I wasn't able to generate a safe response for that request. " +
	"Please contact your care team directly for medical guidance.\n\n" +
	"You can reach me for factual questions about your own documented records."

// Pattern is one named prohibited-phrase rule. The name is what lands in the
// audit log, so it must stay stable once shipped.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

func mustPattern(name, expr string) Pattern {
	return Pattern{Name: name, re: regexp.MustCompile(`(?i)` + expr)}
}

// Patterns is the ordered, auditable list of prohibited-phrase rules.
// First match wins. Keep this a maintained list, not a model: reviewers must
// be able to read every rule that can replace a response.
var Patterns = []Pattern{
	mustPattern("I_diagnose", `\bI diagnose\b`),
	mustPattern("I_recommend", `\bI recommend\b`),
	mustPattern("I_suggest", `\bI suggest\b`),
	mustPattern("try_this_instead", `\btry this instead\b`),
	mustPattern("prescriptive_should", `\byou (should|must|need to) (take|stop|start|avoid|use)\b`),
	mustPattern("diagnostic_this_indicates", `\bThis (indicates|suggests|means) you have\b`),
	mustPattern("you_likely_have", `\bYou (likely|probably|definitely) have\b`),
	mustPattern("your_condition_is", `\bYour condition is\b`),
	mustPattern("prescribe", `\bI (would|will|can) prescribe\b`),
	mustPattern("you_are_developing", `\byou are (likely|probably) (developing|experiencing)\b`),
	mustPattern("dietary_advice", `\b(cut out|stop eating|avoid eating)\b`),
	mustPattern("dosage_recommendation", `\btake (\d+\s*)?(mg|milligram|tablet|pill|dose)\b`),
	mustPattern("emergency_directive", `\bseek (immediate|emergency|urgent) (medical )?(help|care|attention)\b`),
}

// Scan checks text against every prohibited pattern in order and returns the
// name of the first match. ok is false when the text is clean.
func Scan(text string) (name string, ok bool) {
	for _, p := range Patterns {
		if p.re.MatchString(text) {
			return p.Name, true
		}
	}
	return "", false
}
