package main

import (
	"fmt"

	"github.com/entrhq/autostudy/pkg/course"
	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	var verbosity string

	cmd := &cobra.Command{
		Use:   "progress STUDIED TOTAL",
		Short: "Print the completion percentage of two study clocks",
		Long:  "Computes round(100 * STUDIED / TOTAL) for clocks such as 05:00 and 10:00, the same way the monitor does. Malformed input yields 0.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(verbosity)
			if err != nil {
				return err
			}
			calc := course.NewCalculator(logging.NewWriterLogger(cmd.ErrOrStderr(), "progress", level))
			fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", calc.Percent(args[0], args[1]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&verbosity, "verbosity", "v", "normal", "Logging verbosity: quiet, normal, verbose or debug")
	return cmd
}
