package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/creativeprojects/folderfix/merge"
	"github.com/creativeprojects/folderfix/storage"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <account>",
	Short: "Display the folders of an account",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("missing account name")
	}
	accountName := args[0]
	account, ok := config.Accounts[accountName]
	if !ok {
		return fmt.Errorf("account not found: %s", accountName)
	}
	dir, err := storage.NewDirectory(account)
	if err != nil {
		return fmt.Errorf("cannot open account %q: %w", accountName, err)
	}
	defer dir.Close()
	if global.verbose {
		dir.DebugLogger(debugLogger())
	}

	root, err := dir.Root()
	if err != nil {
		return fmt.Errorf("cannot access the mailbox root: %w", err)
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Folder", "Items"},
	})
	// breadth first keeps the top level folders together
	queue := []mailbox.Folder{root}
	for len(queue) > 0 {
		folder := queue[0]
		queue = queue[1:]

		if folder.ID != root.ID {
			var items string
			count, err := countItems(dir, folder)
			if err == nil {
				items = strconv.Itoa(count)
			}
			table.Data = append(table.Data, []string{storage.ResolvePath(dir, folder), items})
		}
		children, err := dir.ListChildren(folder, storage.MaxListChildren)
		if err != nil {
			return fmt.Errorf("cannot list folder %q: %w", folder.Name, err)
		}
		queue = append(queue, children...)
	}
	return table.Render()
}

func countItems(dir storage.Directory, folder mailbox.Folder) (int, error) {
	count := 0
	offset := 0
	for {
		page, hasMore, err := dir.ListItemPage(folder, offset, merge.DefaultBatchSize)
		if err != nil {
			return 0, err
		}
		count += len(page)
		offset += len(page)
		if !hasMore {
			return count, nil
		}
	}
}
