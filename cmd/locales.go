package cmd

import (
	"github.com/creativeprojects/folderfix/locale"
	"github.com/creativeprojects/folderfix/mailbox"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var localesCmd = &cobra.Command{
	Use:   "locales [tag]",
	Short: "Display the supported locales, or the folder names of one locale",
	RunE:  runLocales,
}

func init() {
	rootCmd.AddCommand(localesCmd)
}

func runLocales(cmd *cobra.Command, args []string) error {
	table, err := locale.LoadTable()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		names, err := table.Lookup(args[0])
		if err != nil {
			return err
		}
		display := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
			{"Folder", "Name"},
		})
		for _, role := range mailbox.Roles {
			name, err := names.Name(role)
			if err != nil {
				return err
			}
			display.Data = append(display.Data, []string{string(role), name})
		}
		return display.Render()
	}

	display := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Locale", "Inbox", "Date format", "Time format"},
	})
	for _, tag := range table.Tags() {
		names, err := table.Lookup(tag)
		if err != nil {
			return err
		}
		inbox, err := names.Name(mailbox.RoleInbox)
		if err != nil {
			return err
		}
		display.Data = append(display.Data, []string{tag, inbox, names.DateFormat, names.TimeFormat})
	}
	return display.Render()
}
