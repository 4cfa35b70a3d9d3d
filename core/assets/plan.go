package assets

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/gaurav-prasanna/mdrepair/core"
)

// Plan lists assets proposed for deletion.
type Plan struct {
	Candidates []Asset `json:"candidates"`
	Bytes      int64   `json:"bytes"`
}

// Len returns the number of candidates.
func (p Plan) Len() int {
	return len(p.Candidates)
}

func (p *Plan) add(a Asset) {
	p.Candidates = append(p.Candidates, a)
	p.Bytes += a.Size
}

func (p Plan) contains(rel string) bool {
	for _, a := range p.Candidates {
		if a.Path == rel {
			return true
		}
	}
	return false
}

// PlanDuplicates proposes every non-canonical member of a duplicate group.
func PlanDuplicates(idx *Index) Plan {
	var p Plan
	for _, g := range idx.DuplicateGroups() {
		for _, a := range g.Duplicates {
			p.add(a)
		}
	}
	return p
}

// PlanUnused proposes every asset no document reference resolves to.
// Assets already in exclude are left out so bytes are not counted twice.
func PlanUnused(idx *Index, used UsedSet, exclude Plan) Plan {
	var p Plan
	for _, a := range idx.assets {
		if exclude.contains(a.Path) || used.Uses(idx, a) {
			continue
		}
		p.add(a)
	}
	return p
}

// Report is the outcome of applying a plan.
type Report struct {
	Removed  int
	Bytes    int64
	Failures []core.Failure
}

// Apply deletes every candidate under root. A failed removal is recorded and
// the remaining candidates are still attempted.
func Apply(fs afero.Fs, root string, plan Plan) Report {
	var r Report
	for _, a := range plan.Candidates {
		p := filepath.Join(root, filepath.FromSlash(a.Path))
		if err := fs.Remove(p); err != nil {
			r.Failures = append(r.Failures, core.Failure{Path: a.Path, Error: err.Error()})
			continue
		}
		r.Removed++
		r.Bytes += a.Size
	}
	return r
}
