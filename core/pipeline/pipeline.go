// Package pipeline runs a rewrite stage across every document in a corpus:
// enumerate → rewrite → write back only if changed → summarize.
// Per-document read and write errors are recorded and the loop moves on,
// unless the stage asks to stop at the first failure.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/corpus"
	"github.com/gaurav-prasanna/mdrepair/logger"
)

// Options tune a stage run.
type Options struct {
	// DryRun computes changes without writing any file. A staged corpus
	// still receives the writes in memory.
	DryRun bool
	// FailFast aborts on the first read or write error.
	FailFast bool
	// Out receives one progress line per changed document.
	Out io.Writer
	// Visit, when set, is called with every document's final text.
	Visit func(doc core.Document)
}

// Run applies rw to every document in c.
func Run(ctx context.Context, c *corpus.Corpus, rw core.Rewriter, opts Options) (core.StageResult, error) {
	log := logger.FromContext(ctx).With("stage", rw.Name())
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	result := core.StageResult{Stage: rw.Name(), DryRun: opts.DryRun}

	paths, err := c.Documents()
	if err != nil {
		return result, err
	}
	log.Debug("documents found", "count", len(paths), "root", c.Root())

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			log.Warn("run cancelled", "processed", result.Scanned)
			return result, err
		}

		doc, err := c.Read(path)
		if err != nil {
			if opts.FailFast {
				return result, err
			}
			log.Error("skipping document", "path", path, "err", err)
			result.Failures = append(result.Failures, core.Failure{Path: path, Error: err.Error()})
			continue
		}
		result.Scanned++

		rewrite, err := rw.Rewrite(doc)
		if err != nil {
			if opts.FailFast {
				return result, fmt.Errorf("%s: %w", rw.Name(), err)
			}
			log.Error("rewrite failed", "path", path, "err", err)
			result.Failures = append(result.Failures, core.Failure{Path: path, Error: err.Error()})
			continue
		}
		for _, w := range rewrite.Warnings {
			log.Warn(w)
		}
		result.Warnings = append(result.Warnings, rewrite.Warnings...)

		changed := rewrite.Count > 0 && rewrite.Text != doc.Content
		if changed {
			doc.Content = rewrite.Text
		}
		if opts.Visit != nil {
			opts.Visit(doc)
		}
		if !changed {
			continue
		}

		if !opts.DryRun || c.IsStaged() {
			if err := c.Write(doc); err != nil {
				if opts.FailFast {
					return result, err
				}
				log.Error("write failed", "path", path, "err", err)
				result.Failures = append(result.Failures, core.Failure{Path: path, Error: err.Error()})
				continue
			}
		}
		result.Changed++
		result.Count += rewrite.Count
		verb := "Fixed"
		if opts.DryRun {
			verb = "Would fix"
		}
		fmt.Fprintf(out, "  ✓ %s %s (%d)\n", verb, path, rewrite.Count)
	}

	log.Debug("stage finished", "changed", result.Changed, "count", result.Count,
		"failed", len(result.Failures))
	return result, nil
}
