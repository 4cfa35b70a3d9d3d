package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/assets"
	"github.com/gaurav-prasanna/mdrepair/core/pipeline"
	"github.com/gaurav-prasanna/mdrepair/logger"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Deduplicate images and remove the ones no document uses",
	Long: `Assets fingerprints every image, repoints document references at one
canonical file per set of identical images, and lists duplicates and unused
images for deletion. Nothing is deleted without confirmation (or --yes).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd, core.StageAssets)
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)
}

// runAssets plans the asset stage, asks for confirmation and applies it.
func runAssets(cmd *cobra.Command, e *env) (core.StageResult, *core.AssetTotals, error) {
	ctx := cmd.Context()
	out := progressOut(cmd)

	plan, err := pipeline.PlanAssets(ctx, e.corpus, e.cfg.AssetPath(), pipeline.Options{
		DryRun: flagDryRun,
		Out:    out,
	})
	if err != nil {
		return plan.Stage, nil, fmt.Errorf("%s: %w", core.StageAssets, err)
	}

	printCandidates(out, "Duplicate", plan.Duplicates)
	printCandidates(out, "Unused", plan.Unused)
	if plan.Len() == 0 {
		fmt.Fprintln(out, "  No images to delete")
		return plan.Stage, &core.AssetTotals{}, nil
	}

	pending := pipeline.PendingTotals(plan)
	if flagDryRun {
		return plan.Stage, &pending, nil
	}

	ok, err := confirmDeletion(plan)
	if err != nil {
		return plan.Stage, &pending, fmt.Errorf("confirming deletion: %w", err)
	}
	if !ok {
		fmt.Fprintln(out, "  Deletion skipped")
		return plan.Stage, &pending, nil
	}

	totals := pipeline.ApplyAssets(ctx, e.corpus, plan)
	for _, f := range totals.DeleteFailures {
		fmt.Fprintf(out, "  ✗ Could not delete %s: %s\n", f.Path, f.Error)
	}
	return plan.Stage, &totals, nil
}

func printCandidates(out io.Writer, kind string, plan assets.Plan) {
	for _, a := range plan.Candidates {
		fmt.Fprintf(out, "  - %s %s (%s)\n", kind, a.Path, humanize.Bytes(uint64(a.Size)))
	}
}

// confirmDeletion gates Apply. Without --yes it needs an interactive
// terminal; otherwise nothing is deleted.
var confirmDeletion = func(plan pipeline.AssetPlan) (bool, error) {
	if flagYes {
		return true, nil
	}
	if !stdinIsTerminal() {
		logger.Warn("stdin is not a terminal, pass --yes to delete", "pending", plan.Len())
		return false, nil
	}

	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete %d images (%s)?", plan.Len(), humanize.Bytes(uint64(plan.Bytes())))).
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
