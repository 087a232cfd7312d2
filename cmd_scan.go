package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/i18nkit/builder"
	"github.com/minios-linux/i18nkit/config"
	"github.com/minios-linux/i18nkit/i18n"
	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/scan"
)

// ---------------------------------------------------------------------------
// scan (source tree -> defaults registry)
// ---------------------------------------------------------------------------

type scanArgs struct {
	include, exclude []string
	workers          int
	minConfidence    int
	noLiterals       bool
	explain          bool
	adoptKeys        bool
	dryRun           bool
	watch            bool
	debounce         time.Duration
}

// addScanFlags registers the file selection and tuning flags.
func addScanFlags(fs *pflag.FlagSet, a *scanArgs) {
	fs.StringSliceVar(&a.include, "include", nil, "Only scan files matching these globs")
	fs.StringSliceVar(&a.exclude, "exclude", nil, "Skip files matching these globs (adds to .i18nkit.yaml)")
	fs.IntVar(&a.workers, "workers", 0, "Parallel file workers (0 = configured or number of CPUs)")
	fs.IntVar(&a.minConfidence, "min-confidence", -1, "Minimum confidence for literal candidates (default: classifier threshold)")
	fs.BoolVar(&a.noLiterals, "no-literals", false, "Only collect translation call sites")
	fs.BoolVar(&a.explain, "explain", false, "Print why each skipped literal was ignored")
}

func newScanCmd() *cobra.Command {
	var a scanArgs

	cmd := &cobra.Command{
		Use:   "scan <src-dir> [out-file]",
		Short: i18n.T("Scan sources and update the defaults registry"),
		Long: `Scan a source tree for translation calls and user-facing string literals
and merge them into the defaults registry.

Keys referenced by translation calls but missing from the registry are
reported, not added (unless --adopt-keys is given and the call carries a
default text). Literal candidates get a derived key <prefix>.<group>.<slug>.
Keys no longer seen in the sources are reported as stale and kept.

The registry is written to out-file, or to the configured registry path.

Examples:
  i18nkit scan crates
  i18nkit scan src i18n/defaults.yaml --exclude 'tests/**'
  i18nkit scan crates --dry-run
  i18nkit scan crates --watch`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src := resolvePath(cfg, args[0])
			out := cfg.RegistryPath
			if len(args) == 2 {
				out = resolvePath(cfg, args[1])
			}
			if a.watch {
				return runScanWatch(cmd.Context(), cfg, src, out, a)
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), cfg, src, out, a)
		},
	}

	addScanFlags(cmd.Flags(), &a)
	cmd.Flags().BoolVar(&a.adoptKeys, "adopt-keys", false, "Register unknown call-site keys that carry a default text")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Print the registry changes without writing")
	cmd.Flags().BoolVar(&a.watch, "watch", false, "Rescan whenever a source file changes")
	cmd.Flags().DurationVar(&a.debounce, "debounce", 300*time.Millisecond, "Quiet period before a rescan (with --watch)")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "watch")

	return cmd
}

func scanOptions(cfg *config.Config, a scanArgs) scan.Options {
	opts := cfg.Scan
	if len(a.include) > 0 {
		opts.Include = a.include
	}
	opts.Exclude = append(append([]string(nil), opts.Exclude...), a.exclude...)
	if a.workers > 0 {
		opts.Workers = a.workers
	}
	opts.NoLiterals = a.noLiterals
	opts.Explain = a.explain
	opts.Logger = logger
	return opts
}

func builderOptions(cfg *config.Config, a scanArgs) builder.Options {
	opts := cfg.Builder
	if a.minConfidence >= 0 {
		opts.MinConfidence = a.minConfidence
	}
	opts.AdoptCallSites = a.adoptKeys
	opts.Logger = logger
	return opts
}

// rootRelative rewrites finding paths from the scanned directory to the
// project root, so that origins do not depend on where the scan started.
func rootRelative(cfg *config.Config, srcDir string, findings []scan.Finding) {
	prefix := cfg.Rel(srcDir)
	if prefix == "." {
		return
	}
	for i := range findings {
		findings[i].Pos.File = path.Join(prefix, findings[i].Pos.File)
	}
}

func runScan(ctx context.Context, w io.Writer, cfg *config.Config, srcDir, out string, a scanArgs) error {
	logInfo("Scanning %s", srcDir)
	res, err := scan.Run(ctx, srcDir, scanOptions(cfg, a))
	if err != nil {
		return err
	}
	return applyScan(w, cfg, srcDir, out, a, res)
}

func applyScan(w io.Writer, cfg *config.Config, srcDir, out string, a scanArgs, res *scan.Result) error {
	for _, skip := range res.Skipped {
		logWarning("Skipped %s: %v", skip.File, skip.Err)
	}
	if a.explain {
		for _, ig := range res.Ignored {
			fmt.Fprintf(w, "%s:%d:%d\t%s\t%q\n", ig.Pos.File, ig.Pos.Line, ig.Pos.Col, ig.Reason, ig.Text)
		}
	}
	logInfo("%s: %d call sites, %d literal candidates",
		i18n.N("Found %d file", "Found %d files", len(res.Files), len(res.Files)),
		len(res.CallSites()), len(res.Literals()))

	prev, err := registry.LoadOrEmpty(out)
	if err != nil {
		return err
	}
	rootRelative(cfg, srcDir, res.Findings)

	next, report, err := builder.Merge(prev, res.Findings, builderOptions(cfg, a))
	if err != nil {
		var dup *registry.DuplicateKeyError
		if errors.As(err, &dup) {
			return fmt.Errorf("%w; registry %s left unchanged", err, out)
		}
		return err
	}

	for _, f := range report.Unresolved {
		logWarning("%s: key %s is not in the registry", f.Pos, f.Key)
	}
	for _, f := range report.Invalid {
		logWarning("%s: key %q does not match %s", f.Pos, f.Key, cfg.KeyPattern)
	}
	for _, key := range report.Stale {
		logWarning("Key %s is no longer referenced in %s", key, srcDir)
	}

	if a.dryRun {
		changes := registry.Diff(prev, next)
		for _, c := range changes {
			switch c.Kind {
			case registry.Added:
				fmt.Fprintf(w, "+ %s: %q (%s)\n", c.Key, c.New.Text, c.New.Origin)
			case registry.Removed:
				fmt.Fprintf(w, "- %s: %q\n", c.Key, c.Old.Text)
			case registry.Changed:
				fmt.Fprintf(w, "~ %s: %q -> %q\n", c.Key, c.Old.Text, c.New.Text)
			}
		}
		logInfo("Dry run: %d changes, %s not written", len(changes), out)
		return nil
	}

	changed, err := registry.Save(out, next)
	if err != nil {
		return err
	}
	if !changed {
		logSuccess("Registry %s is up to date (%d keys)", out, next.Len())
		return nil
	}
	logSuccess("Wrote %s: %s", out, report.Summary())
	return nil
}

func runScanWatch(ctx context.Context, cfg *config.Config, srcDir, out string, a scanArgs) error {
	opts := scanOptions(cfg, a)
	logInfo("Watching %s (Ctrl+C to stop)", srcDir)
	err := scan.Watch(ctx, srcDir, opts, a.debounce, nil, func(res *scan.Result, err error) {
		if err != nil {
			logError("Scan failed: %v", err)
			return
		}
		if err := applyScan(io.Discard, cfg, srcDir, out, a, res); err != nil {
			logError("%v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolvePath makes p absolute against the project root unless it already is.
func resolvePath(cfg *config.Config, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Root, p)
}
