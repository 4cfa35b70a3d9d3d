package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/mdrepair/core"
	"github.com/gaurav-prasanna/mdrepair/core/images"
	"github.com/gaurav-prasanna/mdrepair/core/links"
	"github.com/gaurav-prasanna/mdrepair/core/normalize"
	"github.com/gaurav-prasanna/mdrepair/core/pipeline"
	"github.com/gaurav-prasanna/mdrepair/core/render"
	"github.com/gaurav-prasanna/mdrepair/core/xref"
	"github.com/gaurav-prasanna/mdrepair/logger"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Replace HTML entities and non-breaking spaces with plain text",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd, core.StageEntities)
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Repair image syntax mangled by the CMS export",
	Long: `Images rewrites broken thumbnail pairs and sized image links into plain
Markdown images. Images on a legacy host become an [Image: alt] placeholder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd, core.StageImages)
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Give bare URLs link text",
	Long: `Links turns bare URLs into Markdown links. Link text comes from the CMS
export when one is configured, otherwise from the URL itself.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd, core.StageLinks)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStages(cmd, core.StageEntities, core.StageImages, core.StageLinks, core.StageAssets)
	},
}

func init() {
	rootCmd.AddCommand(entitiesCmd, imagesCmd, linksCmd, runCmd)
}

// runStages runs the named stages in order, prints the summary and reports
// partial failures as an error so the process exits non-zero.
func runStages(cmd *cobra.Command, stages ...string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := progressOut(cmd)

	var summary core.Summary
	for _, stage := range stages {
		fmt.Fprintf(out, "Running %s on %s...\n", stage, e.corpus.Root())

		if stage == core.StageAssets {
			result, totals, err := runAssets(cmd, e)
			summary.Stages = append(summary.Stages, result)
			summary.Assets = totals
			if err != nil {
				_ = printSummary(cmd, summary)
				return err
			}
			continue
		}

		rw, err := newRewriter(ctx, e, stage)
		if err != nil {
			return err
		}
		result, err := pipeline.Run(ctx, e.corpus, rw, pipeline.Options{DryRun: flagDryRun, Out: out})
		summary.Stages = append(summary.Stages, result)
		if err != nil {
			_ = printSummary(cmd, summary)
			return fmt.Errorf("%s: %w", stage, err)
		}
	}

	if err := printSummary(cmd, summary); err != nil {
		return err
	}
	if summary.Failed() {
		return core.ErrPartialRun
	}
	return nil
}

func newRewriter(ctx context.Context, e *env, stage string) (core.Rewriter, error) {
	switch stage {
	case core.StageEntities:
		return normalize.New(), nil
	case core.StageImages:
		return images.New(e.cfg.LegacyHosts), nil
	case core.StageLinks:
		return links.New(loadCrossReference(ctx, e)), nil
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
}

// loadCrossReference reads the CMS export. A missing or unreadable export
// leaves the link stage with URL-derived text only.
func loadCrossReference(ctx context.Context, e *env) xref.Table {
	log := logger.FromContext(ctx)
	p := e.cfg.ExportPath()
	if p == "" {
		log.Info("no export configured, deriving link text from URLs")
		return xref.New(nil)
	}
	table, err := xref.Load(appFS, p)
	if err != nil {
		log.Warn("export unavailable, deriving link text from URLs", "path", p, "err", err)
		return xref.New(nil)
	}
	log.Info("loaded cross-reference table", "path", p, "entries", table.Len())
	return table
}

func printSummary(cmd *cobra.Command, summary core.Summary) error {
	var r core.Renderer = render.NewTextRenderer()
	if flagJSON {
		r = render.NewJSONRenderer()
	}
	data, err := r.Render(summary)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !flagJSON {
		fmt.Fprintln(out)
	}
	_, err = out.Write(data)
	return err
}
