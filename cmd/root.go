// Package cmd implements the mdrepair CLI using Cobra.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/mdrepair/config"
	"github.com/gaurav-prasanna/mdrepair/core/corpus"
	"github.com/gaurav-prasanna/mdrepair/logger"
)

// Flag variables.
var (
	flagRoot       string
	flagConfig     string
	flagContentDir string
	flagAssetDir   string
	flagExport     string
	flagDryRun     bool
	flagYes        bool
	flagJSON       bool
	flagLogLevel   string
	flagLogJSON    bool
)

// appFS is the filesystem every command works on.
var appFS afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "mdrepair",
	Short: "mdrepair — repair Markdown content left behind by a CMS migration",
	Long: `mdrepair normalizes a corpus of Markdown/MDX documents and its image directory.
Each stage can be run on its own and is safe to re-run.

Usage:
  mdrepair entities   replace HTML entities and non-breaking spaces
  mdrepair images     repair broken image syntax
  mdrepair links      give bare URLs link text
  mdrepair assets     deduplicate images and remove unused ones
  mdrepair run        all of the above, in order`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRoot, "root", ".", "Site root holding the content and asset directories")
	pf.StringVar(&flagConfig, "config", "", "Config file (default: <root>/"+config.FileName+")")
	pf.StringVar(&flagContentDir, "content-dir", "", "Content directory, relative to --root")
	pf.StringVar(&flagAssetDir, "asset-dir", "", "Image directory, relative to --root")
	pf.StringVar(&flagExport, "export", "", "CMS export (WXR .xml or .json) used for link text")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Report changes without writing or deleting anything; each stage sees the changes of the ones before it")
	pf.BoolVar(&flagYes, "yes", false, "Delete asset candidates without asking")
	pf.BoolVar(&flagJSON, "json", false, "Print the summary as JSON")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.BoolVar(&flagLogJSON, "log-json", false, "Write logs as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func initLogging(cmd *cobra.Command, _ []string) error {
	cfg := logger.DefaultConfig()
	cfg.Level = flagLogLevel
	cfg.JSON = flagLogJSON
	cfg.Output = cmd.ErrOrStderr()
	if err := logger.Init(cfg); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, logger.Default()))
	return nil
}

// env is what a stage command needs to run.
type env struct {
	cfg    *config.Config
	corpus *corpus.Corpus
}

// loadEnv resolves configuration and opens the content corpus.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(appFS, flagRoot, flagConfig)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := corpus.New(appFS, cfg.ContentPath(), cfg.Patterns)
	if err != nil {
		return nil, err
	}
	if flagDryRun {
		c = c.Staged()
	}
	return &env{cfg: cfg, corpus: c}, nil
}

// applyFlags lets explicitly set flags override file and environment values.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("content-dir") {
		cfg.ContentDir = flagContentDir
	}
	if fs.Changed("asset-dir") {
		cfg.AssetDir = flagAssetDir
	}
	if fs.Changed("export") {
		cfg.ExportFile = flagExport
	}
}

// progressOut is where per-document progress lines go. JSON output owns
// stdout, so progress moves to stderr.
func progressOut(cmd *cobra.Command) io.Writer {
	if flagJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool {
	return isTerminal(os.Stdin)
}
