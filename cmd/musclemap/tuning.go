package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTuningCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tuning [file]",
		Short: "Write the effective tuning table as YAML",
		Long: `tuning prints the table the other commands would use: the built-in
defaults, or the defaults overlaid with --tuning. With a file argument the
table is written there instead, ready to edit and pass back with --tuning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tuning, err := loadTuning(root.tuning)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return tuning.Encode(cmd.OutOrStdout())
			}
			if err := tuning.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", args[0])
			return nil
		},
	}
}
