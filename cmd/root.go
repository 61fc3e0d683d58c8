package cmd

import (
	"errors"
	"os"

	"github.com/creativeprojects/folderfix/cfg"
	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/term"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "folderfix",
	Short: "Merge locale leftover mailbox folders back into their canonical folders",
	Long: "\nAfter a mailbox regional setting change, well-known folders can exist twice:" +
		"\nonce under the new locale display name and once under the old one." +
		"\nfolderfix merges the old-locale folder trees into the canonical folders" +
		"\nand removes the emptied leftovers.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig, initLog)
	flag := rootCmd.PersistentFlags()
	flag.StringVarP(&global.configFile, "config", "c", "folderfix.yaml", "configuration file")
	flag.BoolVarP(&global.quiet, "quiet", "q", false, "only display warnings and errors")
	flag.BoolVarP(&global.verbose, "verbose", "v", false, "display debugging information")
}

func initConfig() {
	var err error
	config, err = cfg.LoadFromFile(global.configFile)
	if err != nil {
		term.Errorf("cannot open or read configuration file: %s", err)
		os.Exit(exitCodeResolution)
	}
}

func initLog() {
	switch {
	case global.verbose:
		term.SetLevel(term.LevelDebug)
	case global.quiet:
		term.SetLevel(term.LevelWarn)
	}
}

// exit codes: a resolution error (locale, role, configuration) is
// distinguishable from a partial merge failure
const (
	exitCodeMerge      = 1
	exitCodeResolution = 2
)

func Execute(version, commit, date, builtBy string) {
	setApp(version, commit, date, builtBy)
	if err := rootCmd.Execute(); err != nil {
		term.Error(err)
		if errors.Is(err, lib.ErrLocaleNotFound) || errors.Is(err, lib.ErrRoleNotBound) {
			os.Exit(exitCodeResolution)
		}
		os.Exit(exitCodeMerge)
	}
}
