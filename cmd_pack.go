package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nkit/config"
	"github.com/minios-linux/i18nkit/i18n"
	"github.com/minios-linux/i18nkit/langmeta"
	"github.com/minios-linux/i18nkit/pack"
	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/reorganize"
	"github.com/minios-linux/i18nkit/validate"
)

// loadRegistry reads the configured registry; a pack command without one
// has nothing to compare against.
func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg, err := registry.Load(cfg.RegistryPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("registry %s not found; run 'i18nkit scan' first", cfg.RegistryPath)
	}
	return reg, err
}

// ---------------------------------------------------------------------------
// new (scaffold a language pack)
// ---------------------------------------------------------------------------

func newNewCmd() *cobra.Command {
	var (
		dir     string
		name    string
		authors []string
		ver     string
	)

	cmd := &cobra.Command{
		Use:   "new <lang-code>",
		Short: i18n.T("Create a language pack pre-filled with every key"),
		Long: `Create a new language pack i18n-<lang> in the packs directory.

The pack gets a descriptor (extension.toml) and a storage file that lists
every registry key in registry order as untranslated (null).

Examples:
  i18nkit new de
  i18nkit new pt_BR --author "Jane Doe"`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return []string{"de", "es", "fr", "it", "ja", "ko", "pt-BR", "ru", "uk", "zh-CN", "zh-TW"}, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runNew(cfg, args[0], dir, name, authors, ver)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Pack directory (default: <packs_dir>/i18n-<lang>)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: native language name)")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "Pack author (repeatable)")
	cmd.Flags().StringVar(&ver, "version", "0.1.0", "Initial pack version (semver)")

	return cmd
}

func runNew(cfg *config.Config, code, dir, name string, authors []string, ver string) error {
	meta, err := langmeta.Parse(code)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	id := "i18n-" + strings.ToLower(meta.Code)
	if dir == "" {
		dir = filepath.Join(cfg.PacksDir, id)
	} else {
		dir = resolvePath(cfg, dir)
	}
	if name == "" {
		name = meta.Name
		if meta.EnglishName != "" && meta.EnglishName != meta.Name {
			name = fmt.Sprintf("%s (%s)", meta.Name, meta.EnglishName)
		}
	}
	if len(authors) == 0 {
		authors = []string{"Translators"}
	}
	desc := &pack.Descriptor{
		ID:            id,
		Name:          name,
		Description:   fmt.Sprintf("%s translations", meta.EnglishName),
		Version:       ver,
		SchemaVersion: pack.SchemaVersion,
		Language:      meta.Code,
		Authors:       authors,
	}
	scaffold, err := reorganize.Reorganize(&pack.File{}, reg)
	if err != nil {
		return err
	}
	storage := scaffold.File

	if err := pack.Scaffold(dir, desc, storage, cfg.Layout); err != nil {
		return err
	}
	logSuccess("Created %s %s with %d untranslated keys", meta.Flag, dir, len(storage.Entries))
	return nil
}

// ---------------------------------------------------------------------------
// validate (read-only: pack vs registry)
// ---------------------------------------------------------------------------

func newValidateCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate [pack-dir...]",
		Short: i18n.T("Check packs against the registry"),
		Long: `Compare language packs with the defaults registry and report missing
keys, extra keys, malformed entries and missing files. All problems of a
pack are reported together. Untranslated and quarantined keys are shown
but do not fail validation.

Exits with status 1 if any pack has problems. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dirs := make([]string, len(args))
			for i, a := range args {
				dirs[i] = resolvePath(cfg, a)
			}
			if all {
				dirs = append(dirs, cfg.PackDirs()...)
			}
			if len(dirs) == 0 {
				return errors.New("no pack given; pass a pack directory or --all")
			}
			return runValidate(cmd.OutOrStdout(), cfg, dirs)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Validate every i18n-* pack in the packs directory")

	return cmd
}

func runValidate(w io.Writer, cfg *config.Config, dirs []string) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	opts := validate.Options{Layout: cfg.Layout, KeyPattern: cfg.KeyPattern}

	fmt.Fprintf(w, "%sPack Validation%s\n", colorBlue, colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	failed := 0
	for _, dir := range dirs {
		r, err := validate.Pack(dir, reg, opts)
		if err != nil {
			return err
		}
		translated := reg.Len() - len(r.Missing) - len(r.Untranslated)
		percent := 100
		if reg.Len() > 0 {
			percent = translated * 100 / reg.Len()
		}
		status := colorGreen + "ok" + colorReset
		if !r.OK() {
			status = colorRed + "FAIL" + colorReset
			failed++
		}
		fmt.Fprintf(w, "%s %s  %s\n", packCell(dir, 24), progressBar(percent, 20), status)
		if !r.OK() {
			for _, line := range strings.Split(strings.TrimRight(r.String(), "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		if len(r.Untranslated) > 0 || len(r.Quarantined) > 0 {
			fmt.Fprintf(w, "    %d untranslated, %d quarantined\n", len(r.Untranslated), len(r.Quarantined))
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "Registry keys: %d\n", reg.Len())

	if failed > 0 {
		return fmt.Errorf("%d of %d packs: %w", failed, len(dirs), validate.ErrReportNotEmpty)
	}
	logSuccess("%d packs valid", len(dirs))
	return nil
}

// packCell renders a pack directory with the flag of its language, padded
// to width columns.
func packCell(dir string, width int) string {
	base := filepath.Base(dir)
	flag := langmeta.Resolve(strings.TrimPrefix(base, "i18n-")).Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, base)
}

// ---------------------------------------------------------------------------
// reorganize (pack storage -> registry order)
// ---------------------------------------------------------------------------

func newReorganizeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reorganize <pack-file>",
		Short: i18n.T("Reorder a pack to match the registry"),
		Long: `Rewrite a pack's storage file so that its keys are exactly the registry
keys in registry order. Existing translations are kept, missing keys are
inserted as untranslated (null), and translations whose keys left the
registry are moved to the "_quarantine" section instead of being deleted.
A quarantined translation returns when its key is registered again.

<pack-file> may also be a pack directory. A malformed storage file is
refused and left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			target := resolvePath(cfg, args[0])
			if info, err := os.Stat(target); err == nil && info.IsDir() {
				target = cfg.Layout.StoragePath(target)
			}
			return runReorganize(cmd.OutOrStdout(), cfg, target, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")

	return cmd
}

func runReorganize(w io.Writer, cfg *config.Config, target string, dryRun bool) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	var res *reorganize.Result
	changed := false
	if dryRun {
		p, err := pack.ParseFile(target)
		if err != nil {
			return err
		}
		if len(p.Problems) > 0 {
			return &reorganize.ProblemsError{Path: target, Problems: p.Problems}
		}
		res, err = reorganize.Reorganize(p, reg)
		if err != nil {
			var perr *reorganize.ProblemsError
			if errors.As(err, &perr) {
				perr.Path = target
			}
			return err
		}
	} else {
		res, changed, err = reorganize.File(target, reg)
		if err != nil {
			return err
		}
	}

	report := func(label string, keys []string) {
		for _, k := range keys {
			fmt.Fprintf(w, "%s %s\n", label, k)
		}
	}
	report("+", res.Inserted)
	report("<", res.Restored)
	report(">", res.Quarantined)
	report("-", res.Dropped)

	summary := fmt.Sprintf("%d inserted, %d restored, %d quarantined, %d dropped",
		len(res.Inserted), len(res.Restored), len(res.Quarantined), len(res.Dropped))
	switch {
	case dryRun:
		logInfo("Dry run: %s", summary)
	case changed:
		logSuccess("Reorganized %s: %s", target, summary)
	default:
		logSuccess("%s already matches the registry", target)
	}
	return nil
}
