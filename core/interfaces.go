// Package core defines the shared types and stage interfaces for mdrepair.
// Each pipeline stage rewrites one Document at a time and never touches the
// filesystem itself; reading and writing are handled by the corpus package.
package core

// Document is a single Markdown/MDX file in the corpus.
type Document struct {
	// Path is slash-separated and relative to the content root.
	Path    string
	Content string
}

// Rewrite is the outcome of running one stage over one document.
type Rewrite struct {
	Text     string
	Count    int
	Warnings []string
}

// Rewriter transforms the text of a document. Implementations must be
// idempotent: rewriting already-repaired text reports a zero count.
type Rewriter interface {
	// Name identifies the stage in logs and summaries.
	Name() string
	Rewrite(doc Document) (Rewrite, error)
}

// Failure records a per-item error that did not abort the run.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// StageResult summarizes one stage over the whole corpus.
type StageResult struct {
	Stage     string    `json:"stage"`
	Scanned   int       `json:"scanned"`
	Changed   int       `json:"changed"`
	Count     int       `json:"count"`
	Failures  []Failure `json:"failures,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	DryRun    bool      `json:"dry_run,omitempty"`
	Cancelled bool      `json:"cancelled,omitempty"`
}

// Failed reports whether any document could not be processed.
func (r StageResult) Failed() bool {
	return len(r.Failures) > 0
}

// AssetTotals holds the outcome of the asset garbage collector.
type AssetTotals struct {
	DuplicatesRemoved int       `json:"duplicates_removed"`
	UnusedRemoved     int       `json:"unused_removed"`
	BytesReclaimed    int64     `json:"bytes_reclaimed"`
	PendingDeletion   int       `json:"pending_deletion"`
	PendingBytes      int64     `json:"pending_bytes"`
	DeleteFailures    []Failure `json:"delete_failures,omitempty"`
}

// Summary is the report for a whole run.
type Summary struct {
	Stages []StageResult `json:"stages"`
	Assets *AssetTotals  `json:"assets,omitempty"`
}

// Stage returns the result for the named stage, if it ran.
func (s Summary) Stage(name string) (StageResult, bool) {
	for _, r := range s.Stages {
		if r.Stage == name {
			return r, true
		}
	}
	return StageResult{}, false
}

// Failed reports whether any stage had failed documents or deletions.
func (s Summary) Failed() bool {
	for _, r := range s.Stages {
		if r.Failed() {
			return true
		}
	}
	return s.Assets != nil && len(s.Assets.DeleteFailures) > 0
}

// Renderer converts a run summary into an output format.
type Renderer interface {
	Render(summary Summary) ([]byte, error)
}
