package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nkit/i18n"
	"github.com/minios-linux/i18nkit/menus"
)

// ---------------------------------------------------------------------------
// scan-app-menus (two-phase menu extraction and rewrite)
// ---------------------------------------------------------------------------

func newScanAppMenusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan-app-menus",
		Short: i18n.T("Two-phase extraction and rewrite of menu definitions"),
		Long: `Extract menu labels from a menu definition file, then, after review,
rewrite them into translation calls.

  scan     writes the menu defaults file; the source is not modified
  replace  rewrites each label into the configured call (default
           t!(cx, "<key>")) using the reviewed defaults file

replace matches labels to defaults entries by text. If any label has no
entry, or several entries and none recorded at its line, nothing is written.
Labels already inside a translation call are left alone, so running replace
again is a no-op.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "scan <src-file> <defaults-file>",
			Short: i18n.T("Write the menu defaults file"),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				src, defaults := resolvePath(cfg, args[0]), resolvePath(cfg, args[1])
				mc := cfg.Menus
				mc.Logger = logger
				reg, changed, err := menus.Scan(src, cfg.Rel(src), defaults, mc)
				if err != nil {
					return err
				}
				if !changed {
					logSuccess("Menu defaults %s are up to date (%d keys)", defaults, reg.Len())
					return nil
				}
				logSuccess("Wrote %d menu keys to %s; review it, then run replace", reg.Len(), defaults)
				return nil
			},
		},
		&cobra.Command{
			Use:   "replace <src-file> <defaults-file>",
			Short: i18n.T("Rewrite menu labels into translation calls"),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				src, defaults := resolvePath(cfg, args[0]), resolvePath(cfg, args[1])
				mc := cfg.Menus
				mc.Logger = logger
				n, err := menus.ReplaceFile(src, cfg.Rel(src), defaults, mc)
				if err != nil {
					var merr *menus.MatchError
					if errors.As(err, &merr) {
						return fmt.Errorf("%w\n%s left unchanged", err, src)
					}
					return err
				}
				if n == 0 {
					logSuccess("%s has no menu labels left to replace", src)
					return nil
				}
				logSuccess("Replaced %d menu labels in %s", n, src)
				return nil
			},
		},
	)

	return cmd
}
