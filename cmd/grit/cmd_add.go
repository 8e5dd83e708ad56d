package main

import (
	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newAddCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Stage file contents for the next commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			if all {
				return r.AddAll()
			}
			if len(args) == 0 {
				return cmd.Usage()
			}
			for _, p := range args {
				if err := r.Add(p); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage all changes, including deletions")
	return cmd
}
