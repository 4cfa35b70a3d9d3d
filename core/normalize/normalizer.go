// Package normalize implements the entity and whitespace normalizer.
// It rewrites a fixed set of HTML character entities left behind by the
// WordPress export into literal characters, and turns non-breaking spaces
// into regular spaces.
package normalize

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/mdrepair/core"
)

// entities maps lowercased entity names to their replacement text.
// &hellip; deliberately becomes three dots rather than U+2026.
var entities = map[string]string{
	"hellip": "...",
	"ndash":  "–",
	"mdash":  "—",
	"quot":   `"`,
	"apos":   "'",
	"#39":    "'",
	"lt":     "<",
	"gt":     ">",
	"amp":    "&",
	"nbsp":   " ",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"euro":   "€",
	"pound":  "£",
}

var entityPattern = regexp.MustCompile(
	`(?i)&(hellip|ndash|mdash|quot|apos|#39|lt|gt|amp|nbsp|copy|reg|trade|euro|pound);|\x{00A0}`,
)

// EntityNormalizer implements core.Rewriter for HTML entities and NBSP.
type EntityNormalizer struct{}

// New creates an EntityNormalizer.
func New() *EntityNormalizer {
	return &EntityNormalizer{}
}

// Name returns the stage name.
func (n *EntityNormalizer) Name() string {
	return core.StageEntities
}

// Rewrite normalizes the document's content.
func (n *EntityNormalizer) Rewrite(doc core.Document) (core.Rewrite, error) {
	text, count := Normalize(doc.Content)
	return core.Rewrite{Text: text, Count: count}, nil
}

// Normalize replaces known entities and U+00A0 in a single left-to-right
// pass and returns the new text with the number of substitutions.
func Normalize(text string) (string, int) {
	count := 0
	out := entityPattern.ReplaceAllStringFunc(text, func(m string) string {
		count++
		if m == "\u00a0" {
			return " "
		}
		name := strings.ToLower(m[1 : len(m)-1])
		return entities[name]
	})
	if count == 0 {
		return text, 0
	}
	return out, count
}
