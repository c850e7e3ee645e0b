package llm

import "regexp"

// The two malformations below are the ones observed in practice from the
// Gemini endpoint: a closing brace or bracket glued to the next key, and two
// adjacent string literals with the separator dropped. Each repair is kept as
// its own named pattern so a failed parse can still be attributed precisely.
var (
	missingCommaAfterClose     = regexp.MustCompile(`([}\]])\s*"`)
	missingCommaBetweenStrings = regexp.MustCompile(`"\s*"([a-z])`)
)

// repairJSON applies the narrow syntactic repairs above. It deliberately does
// not attempt anything resembling a permissive parse.
func repairJSON(text string) string {
	text = missingCommaAfterClose.ReplaceAllString(text, `$1,"`)
	text = missingCommaBetweenStrings.ReplaceAllString(text, `","$1`)
	return text
}
