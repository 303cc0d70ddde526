package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "autostudy",
		Short:        "Unattended course video monitor",
		Long:         "autostudy opens a course page in Chromium, keeps its video playing, shows the study progress and moves to the next lesson once the current one is complete.",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newProgressCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}
