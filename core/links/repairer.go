// Package links wraps bare URLs in Markdown link syntax with readable text.
//
// Two passes run over the document body. The first rewrites URLs that sit
// alone inside parentheses, the second wraps any remaining standalone URL.
// A URL is only touched when goldmark places it in plain prose, so link
// destinations, link text, autolinks, code and raw HTML are never rewritten.
// Front matter is split off first and left as is.
package links

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/markdown"
	"github.com/gaurav-prasanna/mdrepair/core/xref"
	"github.com/gaurav-prasanna/mdrepair/weburl"
)

// Rule names, in application order.
const (
	RuleParenthesized = "parenthesized-url"
	RuleStandalone    = "standalone-url"
)

var (
	parenthesizedPattern = regexp.MustCompile(`\((https?://[^\s()<>\[\]"'` + "`" + `]+)\)`)
	standalonePattern    = regexp.MustCompile(`https?://[^\s()<>\[\]"'` + "`" + `]+`)
)

// trailingPunct is stripped off the end of a standalone URL and kept
// after the rewritten link.
const trailingPunct = ".,;:!?*_~"

// Repairer implements core.Rewriter for bare URLs.
type Repairer struct {
	table xref.Table
}

// New creates a Repairer that prefers link text from table. A zero Table
// means heuristic text only.
func New(table xref.Table) *Repairer {
	return &Repairer{table: table}
}

// Name returns the stage name.
func (r *Repairer) Name() string {
	return core.StageLinks
}

// Rewrite wraps bare URLs in the document body.
func (r *Repairer) Rewrite(doc core.Document) (core.Rewrite, error) {
	front, body, err := markdown.Split(doc.Content)
	if err != nil {
		return core.Rewrite{}, fmt.Errorf("%s: %w", doc.Path, err)
	}
	out, count := r.Repair(body)
	if count == 0 {
		return core.Rewrite{Text: doc.Content}, nil
	}
	return core.Rewrite{Text: front + out, Count: count}, nil
}

// Repair runs both passes over a Markdown body without front matter.
func (r *Repairer) Repair(body string) (string, int) {
	total := 0

	pass1 := r.parenthesizedRule(markdown.ScanProse(body))
	body, s1 := pass1.Apply(body)
	total += s1.Rewritten

	pass2 := r.standaloneRule(markdown.ScanProse(body))
	body, s2 := pass2.Apply(body)
	total += s2.Rewritten

	return body, total
}

func (r *Repairer) parenthesizedRule(prose markdown.Prose) core.Rule {
	return core.Rule{
		Name:    RuleParenthesized,
		Pattern: parenthesizedPattern,
		Accept: func(text string, loc []int) bool {
			if loc[0] > 0 && text[loc[0]-1] == ']' {
				return false
			}
			return prose.Covers(loc[0], loc[1])
		},
		Rebuild: func(g []string) core.Result {
			return core.Replace(r.link(g[1]))
		},
	}
}

func (r *Repairer) standaloneRule(prose markdown.Prose) core.Rule {
	return core.Rule{
		Name:    RuleStandalone,
		Pattern: standalonePattern,
		Accept: func(text string, loc []int) bool {
			u := strings.TrimRight(text[loc[0]:loc[1]], trailingPunct)
			return prose.Covers(loc[0], loc[0]+len(u))
		},
		Rebuild: func(g []string) core.Result {
			u := strings.TrimRight(g[0], trailingPunct)
			if parsed, err := url.Parse(u); err != nil || parsed.Host == "" {
				return core.Unsure()
			}
			return core.Replace(r.link(u) + g[0][len(u):])
		},
	}
}

// link renders [text](url) using the cross-reference table first.
func (r *Repairer) link(u string) string {
	return fmt.Sprintf("[%s](%s)", escapeText(r.Text(u)), u)
}

// Text resolves the visible text for u: the cross-reference table, then the
// URL's last path segment, then its host, then a fixed fallback.
func (r *Repairer) Text(u string) string {
	if text, ok := r.table.Lookup(u); ok {
		return text
	}
	return weburl.TitleFromURL(u)
}

// escapeText backslash-escapes brackets that are not escaped already, and
// a trailing backslash that would otherwise escape the closing bracket.
func escapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '[' || c == ']') && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	trailing := len(s) - len(strings.TrimRight(s, `\`))
	if trailing%2 == 1 {
		b.WriteByte('\\')
	}
	return b.String()
}
