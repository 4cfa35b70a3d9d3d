// Package markdown provides the structural Markdown helpers the repair
// stages need: splitting front matter off a document, and finding which byte
// ranges of a body are plain prose as opposed to links, code, or raw HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Split separates a document into its front matter block (delimiters
// included, empty when absent) and the Markdown body. Concatenating the two
// always reproduces the source.
func Split(source string) (front string, body string, err error) {
	var meta map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader([]byte(source)), &meta)
	if err != nil {
		return "", "", fmt.Errorf("parse frontmatter: %w", err)
	}
	if len(rest) == len(source) || !bytes.HasSuffix([]byte(source), rest) {
		return "", source, nil
	}
	cut := len(source) - len(rest)
	return source[:cut], source[cut:], nil
}
