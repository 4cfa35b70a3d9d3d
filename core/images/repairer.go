// Package images repairs image references mangled by the CMS-to-Markdown
// conversion. Broken thumbnail/full-size link pairs and bare dimensioned
// references are rebuilt as canonical Markdown images, and images hosted on
// the retired blog domain become plain-text placeholders.
package images

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/weburl"
)

// Rule names, in application order.
const (
	RuleThumbWithSize = "thumb-with-size"
	RuleThumbPair     = "thumb-pair"
	RuleSized         = "sized"
	RuleLegacyImage   = "legacy-image"
)

var (
	// [alt WxH](thumb)][alt2](full)
	thumbWithSizePattern = regexp.MustCompile(
		`!?\[(?:([^\[\]]*?)\s+)?(\d+)x(\d+)\]\(([^()\s]+)\)\]\[([^\[\]]*)\]\(([^()\s]+)\)`)

	// [alt](thumb)][alt2](full)
	thumbPairPattern = regexp.MustCompile(
		`!?\[([^\[\]]*)\]\(([^()\s]+)\)\]\[([^\[\]]*)\]\(([^()\s]+)\)`)

	// [alt WxH](url)
	sizedPattern = regexp.MustCompile(
		`\[(?:([^\[\]]*?)\s+)?(\d+)x(\d+)\]\(([^()\s]+)\)`)

	// ![alt](url "title")
	imagePattern = regexp.MustCompile(
		`!\[([^\[\]]*)\]\(\s*<?([^()\s<>]+)>?(?:\s+"[^"]*")?\s*\)`)
)

// Repairer implements core.Rewriter for image references.
type Repairer struct {
	legacyHosts []string
	rules       core.RuleSet
}

// New creates a Repairer. Images served from legacyHosts (or their
// subdomains) are replaced by placeholders.
func New(legacyHosts []string) *Repairer {
	r := &Repairer{legacyHosts: append([]string(nil), legacyHosts...)}
	r.rules = core.RuleSet{
		{
			Name:    RuleThumbWithSize,
			Pattern: thumbWithSizePattern,
			Rebuild: func(g []string) core.Result {
				return r.emit(firstNonEmpty(g[5], g[1]), g[6])
			},
		},
		{
			Name:    RuleThumbPair,
			Pattern: thumbPairPattern,
			Rebuild: func(g []string) core.Result {
				return r.emit(firstNonEmpty(g[3], g[1]), g[4])
			},
		},
		{
			Name:    RuleSized,
			Pattern: sizedPattern,
			Accept:  notPrecededBy('!'),
			Rebuild: func(g []string) core.Result {
				if !weburl.IsImageURL(g[4]) {
					return core.Unsure()
				}
				return r.emit(g[1], g[4])
			},
		},
		{
			Name:    RuleLegacyImage,
			Pattern: imagePattern,
			Rebuild: func(g []string) core.Result {
				if !weburl.IsHost(g[2], r.legacyHosts) {
					return core.Skip()
				}
				return core.Replace(placeholder(g[1], g[2]))
			},
		},
	}
	return r
}

// Name returns the stage name.
func (r *Repairer) Name() string {
	return core.StageImages
}

// Rewrite repairs image references in the document.
func (r *Repairer) Rewrite(doc core.Document) (core.Rewrite, error) {
	text, stats := r.rules.Apply(doc.Content)
	total := core.Totals(stats)

	res := core.Rewrite{Text: text, Count: total.Rewritten}
	if total.Ambiguous > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s: %d image reference(s) left unchanged", doc.Path, total.Ambiguous))
	}
	return res, nil
}

// Repair runs every rule over text and returns the number of repairs.
func (r *Repairer) Repair(text string) (string, int) {
	out, stats := r.rules.Apply(text)
	return out, core.Totals(stats).Rewritten
}

// emit builds the canonical image, or a placeholder for legacy hosts.
func (r *Repairer) emit(alt, target string) core.Result {
	if _, err := url.Parse(target); err != nil {
		return core.Unsure()
	}
	alt = strings.TrimSpace(alt)
	if weburl.IsHost(target, r.legacyHosts) {
		return core.Replace(placeholder(alt, target))
	}
	return core.Replace(fmt.Sprintf("![%s](%s)", alt, target))
}

func placeholder(alt, target string) string {
	alt = strings.TrimSpace(alt)
	if alt == "" {
		alt = weburl.TitleFromURL(target)
	}
	return fmt.Sprintf("[Image: %s]", alt)
}

func notPrecededBy(c byte) func(string, []int) bool {
	return func(text string, loc []int) bool {
		return loc[0] == 0 || text[loc[0]-1] != c
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
