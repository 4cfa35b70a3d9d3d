package xref

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"
)

const contentNS = "http://purl.org/rss/1.0/modules/content/"

// wxrFeed is the root of a WordPress eXtended RSS export.
type wxrFeed struct {
	Channel struct {
		Items []wxrItem `xml:"item"`
	} `xml:"channel"`
}

// wxrItem is a post, page, or attachment in the export. wp:* elements are
// matched by local name because the namespace version varies by export.
type wxrItem struct {
	Title    string `xml:"title"`
	Link     string `xml:"link"`
	Content  string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PostType string `xml:"post_type"`
	Status   string `xml:"status"`
}

// Load reads an export file. Files ending in .json are parsed as a flat
// {"url": "text"} object; anything else as a WordPress WXR export.
func Load(fs afero.Fs, path string) (Table, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	var table Table
	if strings.EqualFold(filepath.Ext(path), ".json") {
		table, err = ParseJSON(f)
	} else {
		table, err = ParseWXR(f)
	}
	if err != nil {
		return Table{}, fmt.Errorf("parsing export %s: %w", path, err)
	}
	return table, nil
}

// ParseJSON reads a flat JSON object of url → text. Whitespace in the text
// is collapsed as it is for WXR anchors.
func ParseJSON(r io.Reader) (Table, error) {
	var entries map[string]string
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return Table{}, fmt.Errorf("decoding JSON: %w", err)
	}
	cleaned := make(map[string]string, len(entries))
	for u, text := range entries {
		cleaned[strings.TrimSpace(u)] = collapse(text)
	}
	return New(cleaned), nil
}

// ParseWXR builds a table from a WordPress export. Anchor text found in post
// bodies is recorded first; post and page permalinks then map to their
// titles where no anchor text was seen.
func ParseWXR(r io.Reader) (Table, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var feed wxrFeed
	if err := dec.Decode(&feed); err != nil {
		return Table{}, fmt.Errorf("decoding WXR: %w", err)
	}

	b := newBuilder()
	for _, item := range feed.Channel.Items {
		if strings.TrimSpace(item.Content) == "" {
			continue
		}
		if err := extractAnchors(item.Content, b); err != nil {
			return Table{}, fmt.Errorf("reading anchors in %q: %w", item.Title, err)
		}
	}
	for _, item := range feed.Channel.Items {
		switch item.PostType {
		case "post", "page":
			b.add(strings.TrimSpace(item.Link), collapse(item.Title))
		}
	}
	return b.t, nil
}

// noiseSelectors are removed from post bodies before anchors are read.
// Links inside them are site chrome or embeds, not prose the author wrote.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "form",
	".sharedaddy", ".jp-relatedposts", ".wp-block-embed",
}

// extractAnchors records href → text for every absolute <a href> in html.
func extractAnchors(html string, b *builder) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return
		}
		text := anchorText(s)
		if text == "" || text == href {
			return
		}
		b.add(href, text)
	})
	return nil
}

// anchorText converts the anchor's inner HTML to inline Markdown so emphasis
// survives. Anchors wrapping images fall back to their plain text.
func anchorText(s *goquery.Selection) string {
	inner, err := s.Html()
	if err == nil {
		md, err := htmltomarkdown.ConvertString(inner)
		md = collapse(md)
		if err == nil && md != "" && !strings.Contains(md, "![") {
			return md
		}
	}
	return collapse(s.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
