// Package corpus enumerates, reads and writes the Markdown documents under a
// content root. All access goes through an afero.Fs so stages can run against
// the real disk or an in-memory tree.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/gaurav-prasanna/mdrepair/core"
)

// DefaultPatterns match Markdown and MDX files at any depth.
var DefaultPatterns = []string{"**/*.md", "**/*.mdx"}

// Corpus is a directory of Markdown documents.
type Corpus struct {
	fs       afero.Fs
	root     string
	patterns []string
	staged   bool
}

// New creates a Corpus rooted at root. Patterns are doublestar globs matched
// against slash-separated paths relative to root.
func New(fsys afero.Fs, root string, patterns []string) (*Corpus, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid document pattern %q", p)
		}
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening content root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", root)
	}

	return &Corpus{
		fs:       fsys,
		root:     filepath.Clean(root),
		patterns: append([]string(nil), patterns...),
	}, nil
}

// Root returns the content root.
func (c *Corpus) Root() string {
	return c.root
}

// Staged returns a view of the corpus whose writes land in memory and never
// reach the underlying filesystem. Reads see earlier staged writes, so a
// chain of stages can be previewed as a whole.
func (c *Corpus) Staged() *Corpus {
	overlay := afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(c.fs), afero.NewMemMapFs())
	return &Corpus{fs: overlay, root: c.root, patterns: c.patterns, staged: true}
}

// IsStaged reports whether writes stay in memory.
func (c *Corpus) IsStaged() bool {
	return c.staged
}

// FS returns the filesystem the corpus lives on.
func (c *Corpus) FS() afero.Fs {
	return c.fs
}

// Documents lists matching document paths in lexical order.
func (c *Corpus) Documents() ([]string, error) {
	var paths []string
	err := afero.Walk(c.fs, c.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if c.matches(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing documents in %s: %w", c.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (c *Corpus) matches(rel string) bool {
	for _, p := range c.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Read loads a document. Content that is not valid UTF-8 yields an error
// wrapping core.ErrInvalidUTF8.
func (c *Corpus) Read(rel string) (core.Document, error) {
	data, err := afero.ReadFile(c.fs, c.abs(rel))
	if err != nil {
		return core.Document{}, fmt.Errorf("reading %s: %w", rel, err)
	}
	if !utf8.Valid(data) {
		return core.Document{}, fmt.Errorf("reading %s: %w", rel, core.ErrInvalidUTF8)
	}
	return core.Document{Path: rel, Content: string(data)}, nil
}

// Write replaces the document's file contents, keeping its permissions.
func (c *Corpus) Write(doc core.Document) error {
	path := c.abs(doc.Path)
	mode := fs.FileMode(0o644)
	if info, err := c.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("writing %s: %w", doc.Path, err)
	}

	if err := afero.WriteFile(c.fs, path, []byte(doc.Content), mode); err != nil {
		return fmt.Errorf("writing %s: %w", doc.Path, err)
	}
	return nil
}

func (c *Corpus) abs(rel string) string {
	return filepath.Join(c.root, filepath.FromSlash(rel))
}
