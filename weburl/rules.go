// Package weburl holds URL helpers shared by the repair stages.
// It classifies URLs (image or not, legacy host or not), normalizes them for
// lookups, and synthesizes human-readable text from a URL path.
package weburl

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// imageExtensions are the file extensions treated as image references.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true,
}

// FallbackText is used when no text can be derived from a URL.
const FallbackText = "Link"

var titleCaser = cases.Title(language.English)

// IsImageExt reports whether ext (with leading dot) is a recognized image extension.
func IsImageExt(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// IsImageURL checks if a URL or path points at an image by its extension.
func IsImageURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return IsImageExt(path.Ext(parsed.Path))
}

// Host returns the lowercased host of rawURL without port or leading "www.".
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return bareHost(parsed.Hostname())
}

// IsHost checks if rawURL is served from one of hosts or a subdomain of one.
func IsHost(rawURL string, hosts []string) bool {
	host := Host(rawURL)
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = bareHost(h)
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// IsRemote reports whether ref carries a scheme or a protocol-relative host.
func IsRemote(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:")
}

// NormalizeURL produces a lookup key: scheme, leading "www.", fragment and
// trailing slash are dropped and the host is lowercased.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
	}

	parsed.Fragment = ""
	p := strings.TrimSuffix(parsed.EscapedPath(), "/")
	key := bareHost(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		key += ":" + port
	}
	key += p
	if parsed.RawQuery != "" {
		key += "?" + parsed.RawQuery
	}
	return key
}

// TitleFromURL synthesizes link text from a URL: the last non-empty path
// segment, title-cased, or the bare hostname when the path is empty.
// Unparsable URLs yield FallbackText.
func TitleFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return FallbackText
	}

	if seg := lastSegment(parsed.Path); seg != "" {
		if title := TitleFromName(seg); title != "" {
			return title
		}
	}
	if host := bareHost(parsed.Hostname()); host != "" {
		return host
	}
	return FallbackText
}

// TitleFromName turns a file or slug name into words: extension stripped,
// separators replaced by spaces, each word title-cased.
func TitleFromName(name string) string {
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if ext := path.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(name)
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(words, " "))
}

func lastSegment(p string) string {
	segs := strings.Split(p, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segs[i]); s != "" {
			return s
		}
	}
	return ""
}

func bareHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
