package markdown

import (
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Span is a half-open byte range [Start, Stop) into a body.
type Span struct {
	Start int
	Stop  int
}

// Prose is the set of byte ranges of a body that are plain text: text nodes
// that are not inside a link, image, autolink, code, or raw HTML.
type Prose struct {
	spans []Span
}

// proseParser parses with CommonMark defaults and no linkify extension so
// bare URLs stay ordinary text nodes.
var proseParser = goldmark.New()

// ScanProse parses body and records its plain text spans. Adjacent text
// nodes are merged so a URL split across nodes is still covered.
func ScanProse(body string) Prose {
	source := []byte(body)
	root := proseParser.Parser().Parse(text.NewReader(source))

	var spans []Span
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindLink, ast.KindImage, ast.KindAutoLink,
			ast.KindCodeSpan, ast.KindCodeBlock, ast.KindFencedCodeBlock,
			ast.KindHTMLBlock, ast.KindRawHTML:
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			seg := n.(*ast.Text).Segment
			if seg.Stop > seg.Start {
				spans = append(spans, Span{Start: seg.Start, Stop: seg.Stop})
			}
		}
		return ast.WalkContinue, nil
	})

	return Prose{spans: merge(spans)}
}

// Covers reports whether [start, stop) lies entirely inside plain text.
func (p Prose) Covers(start, stop int) bool {
	i := sort.Search(len(p.spans), func(i int) bool {
		return p.spans[i].Stop > start
	})
	if i == len(p.spans) {
		return false
	}
	s := p.spans[i]
	return s.Start <= start && stop <= s.Stop
}

// Spans returns a copy of the merged plain text spans.
func (p Prose) Spans() []Span {
	return append([]Span(nil), p.spans...)
}

func merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.Stop {
			if s.Stop > last.Stop {
				last.Stop = s.Stop
			}
			continue
		}
		out = append(out, s)
	}
	return out
}
