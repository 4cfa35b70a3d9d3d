// Package xref builds the cross-reference table: a read-only mapping from a
// URL to the link text it originally had in the CMS. The table is built once
// per run from an export file and passed to the link repairer by value.
package xref

import (
	"sort"

	"github.com/gaurav-prasanna/mdrepair/weburl"
)

// Table maps URLs to their original link text.
type Table struct {
	exact      map[string]string
	normalized map[string]string
}

// New builds a Table from url → text pairs. Empty keys or texts are dropped.
func New(entries map[string]string) Table {
	t := Table{
		exact:      make(map[string]string, len(entries)),
		normalized: make(map[string]string, len(entries)),
	}
	urls := make([]string, 0, len(entries))
	for u := range entries {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	for _, u := range urls {
		t.add(u, entries[u])
	}
	return t
}

// builder accumulates entries in order; the first text seen for a URL wins.
type builder struct {
	t Table
}

func newBuilder() *builder {
	return &builder{t: Table{
		exact:      make(map[string]string),
		normalized: make(map[string]string),
	}}
}

func (b *builder) add(u, text string) {
	if _, ok := b.t.exact[u]; ok {
		return
	}
	b.t.add(u, text)
}

func (t Table) add(u, text string) {
	if u == "" || text == "" {
		return
	}
	t.exact[u] = text
	key := weburl.NormalizeURL(u)
	if _, ok := t.normalized[key]; !ok {
		t.normalized[key] = text
	}
}

// Lookup returns the recorded text for rawURL, trying the exact URL first
// and then its normalized form.
func (t Table) Lookup(rawURL string) (string, bool) {
	if text, ok := t.exact[rawURL]; ok {
		return text, true
	}
	text, ok := t.normalized[weburl.NormalizeURL(rawURL)]
	return text, ok
}

// Len returns the number of distinct URLs in the table.
func (t Table) Len() int {
	return len(t.exact)
}
