// deskmate watches desktop activity snapshots and automates the boring
// parts of a work day: focus mode, break reminders, night mode, auto-save,
// and meeting scheduling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "deskmate",
		Short:        "Activity-driven desktop automation assistant",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "deskmate.yaml", "config file path")

	root.AddCommand(runCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(autosavesCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(mcpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
