package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch-or-commit>",
		Short: "Switch the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}
			if err := r.Checkout(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", args[0])
			return nil
		},
	}
}
