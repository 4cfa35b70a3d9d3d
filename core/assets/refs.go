package assets

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/weburl"
)

var (
	markdownImageRef = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)`)
	doubleQuotedSrc  = regexp.MustCompile(`(?i)\bsrc\s*=\s*"([^"]+)"`)
	singleQuotedSrc  = regexp.MustCompile(`(?i)\bsrc\s*=\s*'([^']+)'`)
	barePathRef      = regexp.MustCompile(`(?i)[^\s"'()<>\[\]=,]+\.(?:png|jpe?g|gif|webp|svg)\b`)

	// variantSuffix matches the suffixes WordPress and copy tools append to a
	// file name: -1234567, -copy, -scaled, -300x200, -e1361234567, -2.
	variantSuffix = regexp.MustCompile(`(?i)(?:-(?:\d+x\d+|\d+|[0-9a-f]{6,}|copy|scaled|e\d{6,}))+$`)
)

// refScanners extract image references from four syntaxes: Markdown images,
// double- and single-quoted src attributes, and bare paths.
var refScanners = []*regexp.Regexp{markdownImageRef, doubleQuotedSrc, singleQuotedSrc, barePathRef}

// UsedSet holds the image references found anywhere in the corpus, reduced
// to unescaped paths without query or fragment.
type UsedSet map[string]struct{}

// Collect adds every image reference in text.
func (u UsedSet) Collect(text string) {
	for _, re := range refScanners {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			ref := m[0]
			if len(m) > 1 {
				ref = m[1]
			}
			if ref = cleanRef(ref); ref != "" {
				u[ref] = struct{}{}
			}
		}
	}
}

// Has reports whether any reference ends in the file name.
func (u UsedSet) Has(name string) bool {
	for ref := range u {
		if path.Base(ref) == name {
			return true
		}
	}
	return false
}

// Uses reports whether some reference resolves to a. A reference that
// resolves to nothing keeps every asset sharing its file name.
func (u UsedSet) Uses(idx *Index, a Asset) bool {
	for ref := range u {
		if hit, ok := idx.Lookup(ref); ok {
			if hit.Path == a.Path {
				return true
			}
			continue
		}
		if path.Base(ref) == a.Name {
			return true
		}
	}
	return false
}

// cleanRef strips query and fragment and unescapes the path.
func cleanRef(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimSpace(ref)
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	if name := path.Base(ref); name == "." || name == "/" {
		return ""
	}
	return ref
}

// Rewriter repoints local image references at canonical asset names.
type Rewriter struct {
	idx *Index
}

// NewRewriter creates a Rewriter backed by idx.
func NewRewriter(idx *Index) *Rewriter {
	return &Rewriter{idx: idx}
}

// Name returns the stage name.
func (r *Rewriter) Name() string {
	return core.StageAssets
}

// Rewrite replaces duplicate and dangling file names in the document.
// Dangling references with no canonical match are reported as warnings.
func (r *Rewriter) Rewrite(doc core.Document) (core.Rewrite, error) {
	text, count, dangling := r.RewriteReferences(doc.Content)
	res := core.Rewrite{Text: text, Count: count}
	for _, ref := range dangling {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: dangling image reference %s", doc.Path, ref))
	}
	return res, nil
}

// RewriteReferences rewrites bare-path image tokens in text and returns the
// new text, the number of rewrites, and the unresolved references. Only the
// file name is replaced; the directory part of a token is kept.
func (r *Rewriter) RewriteReferences(text string) (string, int, []string) {
	matches := barePathRef.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text, 0, nil
	}

	var (
		b        strings.Builder
		last     int
		count    int
		dangling []string
	)
	for _, loc := range matches {
		token := text[loc[0]:loc[1]]
		if weburl.IsRemote(token) {
			continue
		}
		slash := strings.LastIndex(token, "/") + 1
		ref := cleanRef(token)

		target, ok, found := r.resolve(ref)
		if !ok {
			if !found {
				dangling = append(dangling, token)
			}
			continue
		}
		if ref != token {
			target = url.PathEscape(target)
		}
		b.WriteString(text[last : loc[0]+slash])
		b.WriteString(target)
		last = loc[1]
		count++
	}
	if count == 0 {
		return text, 0, dangling
	}
	b.WriteString(text[last:])
	return b.String(), count, dangling
}

// resolve finds the file name a reference should point at. found reports
// whether ref already names an asset on disk; ok reports a rewrite.
func (r *Rewriter) resolve(ref string) (target string, ok, found bool) {
	if a, hit := r.idx.Lookup(ref); hit {
		if c, dup := r.idx.Canonical(a.Path); dup {
			return c.Name, true, true
		}
		return "", false, true
	}
	target, ok = r.matchVariant(ref)
	return target, ok, false
}

// matchVariant maps a missing file onto the single canonical asset sharing
// its base-name pattern and extension. Candidates in other directories than
// the reference are not considered, since only the file name is rewritten.
func (r *Rewriter) matchVariant(ref string) (string, bool) {
	name := path.Base(ref)
	ext := path.Ext(name)
	base := stripVariant(strings.TrimSuffix(name, ext))
	refDir := path.Dir(path.Clean("/" + ref))

	var found []string
	for _, candidate := range r.idx.canonicals() {
		cext := path.Ext(candidate.Name)
		if !strings.EqualFold(cext, ext) || !sameDir(refDir, path.Dir(candidate.Path)) {
			continue
		}
		stem := strings.TrimSuffix(candidate.Name, cext)
		if stem != base && stripVariant(stem) != base {
			continue
		}
		if !slices.Contains(found, candidate.Name) {
			found = append(found, candidate.Name)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

// sameDir reports whether an asset directory (relative to the asset root)
// can be the directory a reference points into.
func sameDir(refDir, assetDir string) bool {
	if assetDir == "." {
		return true
	}
	return refDir == "/"+assetDir || strings.HasSuffix(refDir, "/"+assetDir)
}

func stripVariant(stem string) string {
	stripped := variantSuffix.ReplaceAllString(stem, "")
	if stripped == "" {
		return stem
	}
	return stripped
}
