package pipeline

import (
	"context"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/assets"
	"github.com/gaurav-prasanna/mdrepair/core/corpus"
	"github.com/gaurav-prasanna/mdrepair/logger"
)

// AssetPlan is the outcome of the non-destructive half of the assets stage.
type AssetPlan struct {
	Stage      core.StageResult
	Index      *assets.Index
	Duplicates assets.Plan
	Unused     assets.Plan
}

// Bytes returns the total size of every deletion candidate.
func (p AssetPlan) Bytes() int64 {
	return p.Duplicates.Bytes + p.Unused.Bytes
}

// Len returns the number of deletion candidates.
func (p AssetPlan) Len() int {
	return p.Duplicates.Len() + p.Unused.Len()
}

// PlanAssets indexes assetRoot, repoints document references at canonical
// names, and computes the deletion candidates. Nothing is deleted. Any
// filesystem error aborts the stage.
func PlanAssets(ctx context.Context, c *corpus.Corpus, assetRoot string, opts Options) (AssetPlan, error) {
	log := logger.FromContext(ctx).With("stage", core.StageAssets)

	idx, err := assets.BuildIndex(c.FS(), assetRoot)
	if err != nil {
		return AssetPlan{Stage: core.StageResult{Stage: core.StageAssets, DryRun: opts.DryRun}}, err
	}
	log.Debug("asset index built", "assets", len(idx.Assets()), "duplicate_groups", len(idx.DuplicateGroups()))

	used := assets.UsedSet{}
	visit := opts.Visit
	opts.FailFast = true
	opts.Visit = func(doc core.Document) {
		used.Collect(doc.Content)
		if visit != nil {
			visit(doc)
		}
	}

	stage, err := Run(ctx, c, assets.NewRewriter(idx), opts)
	plan := AssetPlan{Stage: stage, Index: idx}
	if err != nil {
		return plan, err
	}

	plan.Duplicates = assets.PlanDuplicates(idx)
	plan.Unused = assets.PlanUnused(idx, used, plan.Duplicates)
	log.Debug("deletion planned", "duplicates", plan.Duplicates.Len(), "unused", plan.Unused.Len(),
		"bytes", plan.Bytes())
	return plan, nil
}

// ApplyAssets deletes the planned candidates and folds the outcome into the
// run totals. The caller must have confirmed the deletion.
func ApplyAssets(ctx context.Context, c *corpus.Corpus, plan AssetPlan) core.AssetTotals {
	log := logger.FromContext(ctx).With("stage", core.StageAssets)
	root := plan.Index.Root()

	dups := assets.Apply(c.FS(), root, plan.Duplicates)
	unused := assets.Apply(c.FS(), root, plan.Unused)

	totals := core.AssetTotals{
		DuplicatesRemoved: dups.Removed,
		UnusedRemoved:     unused.Removed,
		BytesReclaimed:    dups.Bytes + unused.Bytes,
	}
	for _, f := range append(dups.Failures, unused.Failures...) {
		log.Error("delete failed", "path", f.Path, "err", f.Error)
		totals.DeleteFailures = append(totals.DeleteFailures, f)
	}
	return totals
}

// PendingTotals reports a plan that was not applied.
func PendingTotals(plan AssetPlan) core.AssetTotals {
	return core.AssetTotals{PendingDeletion: plan.Len(), PendingBytes: plan.Bytes()}
}
