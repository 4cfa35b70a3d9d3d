// Package assets deduplicates and garbage-collects the image directory.
//
// A run has three steps. BuildIndex fingerprints every image and groups
// byte-identical files, picking one canonical name per group. A Rewriter then
// repoints document references at canonical names. Finally PlanDuplicates and
// PlanUnused compute what may be deleted; Apply performs the deletion and is
// only called after the caller has confirmed it.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/gaurav-prasanna/mdrepair/weburl"
)

// Asset is one image file under the asset root.
type Asset struct {
	// Path is slash-separated and relative to the asset root.
	Path        string `json:"path"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
	MIME        string `json:"mime"`
}

// DuplicateGroup is a set of assets with identical content.
type DuplicateGroup struct {
	Fingerprint string
	Canonical   Asset
	Duplicates  []Asset
}

// Index is the immutable fingerprint index of the asset root. Lookups are
// keyed by the asset-relative path, so equal file names in different
// directories never stand in for each other.
type Index struct {
	root      string
	assets    []Asset
	groups    []DuplicateGroup
	byPath    map[string]Asset
	nameCount map[string]int
	alias     map[string]Asset
}

// BuildIndex walks root, fingerprints every image, and groups duplicates.
// Files are only grouped with identical files in the same directory, so a
// reference rewritten to the canonical name keeps resolving. The canonical
// member of a group has the shortest file name; ties go to the file seen
// first in lexical walk order.
func BuildIndex(fs afero.Fs, root string) (*Index, error) {
	root = filepath.Clean(root)
	idx := &Index{
		root:      root,
		byPath:    make(map[string]Asset),
		nameCount: make(map[string]int),
		alias:     make(map[string]Asset),
	}

	err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		asset, ok, err := fingerprint(fs, root, p, info)
		if err != nil {
			return err
		}
		if ok {
			idx.assets = append(idx.assets, asset)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexing assets in %s: %w", root, err)
	}

	idx.group()
	return idx, nil
}

func fingerprint(fs afero.Fs, root, p string, info os.FileInfo) (Asset, bool, error) {
	f, err := fs.Open(p)
	if err != nil {
		return Asset{}, false, fmt.Errorf("opening %s: %w", p, err)
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return Asset{}, false, fmt.Errorf("sniffing %s: %w", p, err)
	}
	isImage := strings.HasPrefix(mime.String(), "image/")
	if !isImage && !weburl.IsImageExt(filepath.Ext(p)) {
		return Asset{}, false, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Asset{}, false, fmt.Errorf("rewinding %s: %w", p, err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Asset{}, false, fmt.Errorf("hashing %s: %w", p, err)
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return Asset{}, false, err
	}
	rel = filepath.ToSlash(rel)
	return Asset{
		Path:        rel,
		Name:        path.Base(rel),
		Size:        info.Size(),
		Fingerprint: hex.EncodeToString(h.Sum(nil)),
		MIME:        mime.String(),
	}, true, nil
}

func (idx *Index) group() {
	order := []string{}
	members := map[string][]Asset{}
	for _, a := range idx.assets {
		key := path.Dir(a.Path) + "\x00" + a.Fingerprint
		if _, ok := members[key]; !ok {
			order = append(order, key)
		}
		members[key] = append(members[key], a)
		idx.byPath[a.Path] = a
		idx.nameCount[a.Name]++
	}

	for _, key := range order {
		group := members[key]
		canonical := 0
		for i, a := range group {
			if len(a.Name) < len(group[canonical].Name) {
				canonical = i
			}
		}
		g := DuplicateGroup{Fingerprint: group[canonical].Fingerprint, Canonical: group[canonical]}
		for i, a := range group {
			if i == canonical {
				continue
			}
			g.Duplicates = append(g.Duplicates, a)
			idx.alias[a.Path] = g.Canonical
		}
		idx.groups = append(idx.groups, g)
	}
}

// Root returns the asset root the index was built from.
func (idx *Index) Root() string {
	return idx.root
}

// Assets returns every indexed asset in walk order.
func (idx *Index) Assets() []Asset {
	return append([]Asset(nil), idx.assets...)
}

// Groups returns every fingerprint group, singletons included.
func (idx *Index) Groups() []DuplicateGroup {
	return append([]DuplicateGroup(nil), idx.groups...)
}

// DuplicateGroups returns only groups with more than one member.
func (idx *Index) DuplicateGroups() []DuplicateGroup {
	var out []DuplicateGroup
	for _, g := range idx.groups {
		if len(g.Duplicates) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// Lookup resolves a reference (a URL path, relative path or bare file name)
// to the asset it points at. The asset whose relative path is the longest
// suffix of ref wins. A bare file name only resolves when no other asset
// shares it.
func (idx *Index) Lookup(ref string) (Asset, bool) {
	ref = strings.TrimPrefix(path.Clean("/"+ref), "/")
	for rest := ref; rest != ""; {
		if a, ok := idx.byPath[rest]; ok {
			return a, true
		}
		i := strings.Index(rest, "/")
		if i < 0 {
			break
		}
		rest = rest[i+1:]
	}

	name := path.Base(ref)
	if idx.nameCount[name] != 1 {
		return Asset{}, false
	}
	for _, a := range idx.assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Exists reports whether ref resolves to an asset on disk.
func (idx *Index) Exists(ref string) bool {
	_, ok := idx.Lookup(ref)
	return ok
}

// Canonical returns the canonical member of the duplicate group holding the
// asset at rel. Canonical members and singletons report false.
func (idx *Index) Canonical(rel string) (Asset, bool) {
	c, ok := idx.alias[rel]
	return c, ok
}

// canonicals returns the canonical member of every group.
func (idx *Index) canonicals() []Asset {
	out := make([]Asset, 0, len(idx.groups))
	for _, g := range idx.groups {
		out = append(out, g.Canonical)
	}
	return out
}
