package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/folderfix/cfg"
	"github.com/creativeprojects/folderfix/locale"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/merge"
	"github.com/creativeprojects/folderfix/storage"
	"github.com/creativeprojects/folderfix/term"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <account>",
	Short: "Merge old-locale folders into the canonical well-known folders",
	RunE:  runMerge,
}

var mergeFlags struct {
	toLocale       string
	fromLocale     string
	scanNumericals bool
	numericalMax   int
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFlags.toLocale, "to", "", "target locale of the mailbox (mandatory)")
	mergeCmd.Flags().StringVar(&mergeFlags.fromLocale, "from", "", "locale the leftover folders were named in (defaults to the locale configured on the account)")
	mergeCmd.Flags().BoolVar(&mergeFlags.scanNumericals, "scan-numericals", false, "also scan for numeric-suffix folder names (\"Inbox1\")")
	mergeCmd.Flags().IntVar(&mergeFlags.numericalMax, "numerical-max", merge.DefaultNumericalMax, "highest numeric suffix to scan for")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("missing account name")
	}
	accountName := args[0]
	account, ok := config.Accounts[accountName]
	if !ok {
		return fmt.Errorf("account not found: %s", accountName)
	}
	if mergeFlags.toLocale == "" {
		return errors.New("missing target locale (--to)")
	}
	fromLocale := mergeFlags.fromLocale
	if fromLocale == "" {
		// the locale configured on the account stands in for the
		// regional configuration of the mailbox
		fromLocale = account.Locale
	}
	if fromLocale == "" {
		return errors.New("missing source locale: use --from or set a locale on the account")
	}

	table, err := locale.LoadTable()
	if err != nil {
		return err
	}
	// both locales need a complete entry before anything is touched
	fromNames, err := table.Lookup(fromLocale)
	if err != nil {
		return err
	}
	if _, err = table.Lookup(mergeFlags.toLocale); err != nil {
		return err
	}

	dir, err := storage.NewDirectory(account)
	if err != nil {
		return fmt.Errorf("cannot open account %q: %w", accountName, err)
	}
	defer dir.Close()
	if global.verbose {
		dir.DebugLogger(debugLogger())
	}

	term.Infof("Processing mailbox %s (%s -> %s)", accountName, fromLocale, mergeFlags.toLocale)

	spinner, _ := pterm.DefaultSpinner.Start("merging folders")
	merger := merge.NewMerger(dir, merge.Options{
		Logger:   debugLogger(),
		Progress: newSpinnerProgress(spinner),
	})
	results := merger.MergeAll(fromNames, merge.SweepOptions{
		ScanNumericals: mergeFlags.scanNumericals,
		NumericalMax:   mergeFlags.numericalMax,
	})
	if spinner != nil {
		_ = spinner.Stop()
	}

	reportResults(results)
	saveJournal(account, fromLocale, mergeFlags.toLocale, results)

	if merge.Failed(results) {
		return fmt.Errorf("mailbox %s was not fully merged", accountName)
	}
	totals := merge.Totals(results)
	term.Infof("Done: %d items moved, %d folders moved, %d folders deleted",
		totals.ItemsMoved, totals.FoldersMoved, totals.FoldersDeleted)
	return nil
}

func reportResults(results []merge.Result) {
	for _, result := range results {
		switch result.Status {
		case merge.StatusNotFound:
			term.Debugf("%s: no folder named %q", result.Role, result.Candidate)
		case merge.StatusMerged:
			term.Infof("%s: merged folder %q (%d items moved, %d folders moved, %d folders deleted)",
				result.Role, result.Candidate,
				result.Stats.ItemsMoved, result.Stats.FoldersMoved, result.Stats.FoldersDeleted)
		case merge.StatusFailed:
			term.Warnf("%s: problem merging folder %q: %s", result.Role, result.Candidate, result.Err)
		}
	}
}

// saveJournal appends the run to the account journal. A journal problem is
// only worth a warning: the merge itself went through.
func saveJournal(account cfg.Account, fromLocale, toLocale string, results []merge.Result) {
	run := mailbox.JournalRun{
		Date:       time.Now(),
		FromLocale: fromLocale,
		ToLocale:   toLocale,
		Entries:    make([]mailbox.JournalEntry, 0, len(results)),
	}
	for _, result := range results {
		entry := mailbox.JournalEntry{
			Role:           result.Role,
			Candidate:      result.Candidate,
			Status:         result.Status.String(),
			FoldersMoved:   result.Stats.FoldersMoved,
			ItemsMoved:     result.Stats.ItemsMoved,
			FoldersDeleted: result.Stats.FoldersDeleted,
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		run.Entries = append(run.Entries, entry)
	}

	filename := journalFile(account)
	journal, err := mailbox.GetJournalFromFile(filename)
	if err != nil {
		term.Warnf("cannot read journal: %s", err)
		journal = &mailbox.Journal{}
	}
	journal.Runs = append(journal.Runs, run)
	if err = mailbox.SaveJournalToFile(filename, journal); err != nil {
		term.Warnf("cannot save journal: %s", err)
	}
}

func journalFile(account cfg.Account) string {
	server := account.ServerURL
	if server == "" {
		// local and maildir accounts
		server = account.File + account.Root
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}
	cacheDir := filepath.Join(base, "folderfix")
	_ = os.MkdirAll(cacheDir, 0700)
	return filepath.Join(cacheDir, mailbox.AccountTag(server, account.Username)+".journal.json")
}
