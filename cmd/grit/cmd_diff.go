package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/diff"
	"grit/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	var staged bool
	var head bool

	cmd := &cobra.Command{
		Use:   "diff [commit]",
		Short: "Show changed paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			var d *diff.Diff
			switch {
			case len(args) == 1:
				commit, err := r.Commit(args[0])
				if err != nil {
					return err
				}
				d, err = r.CommitDiff(commit)
				if err != nil {
					return err
				}
			case staged:
				d, err = r.DiffHeadToIndex()
				if err != nil {
					return err
				}
			case head:
				d, err = r.DiffHeadToWorkdir()
				if err != nil {
					return err
				}
			default:
				d, err = r.DiffIndexToWorkdir()
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, delta := range d.Deltas {
				if delta.Status == diff.Renamed {
					fmt.Fprintf(out, "%c\t%s -> %s\n", delta.Status.Char(), delta.OldPath, delta.Path)
					continue
				}
				fmt.Fprintf(out, "%c\t%s\n", delta.Status.Char(), delta.Path)
			}

			stats := d.Stats()
			if stats.Total() > 0 {
				fmt.Fprintf(out, "%d file(s) changed\n", stats.Total())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&staged, "staged", false, "compare HEAD with the index")
	cmd.Flags().BoolVar(&head, "head", false, "compare HEAD with the working tree")
	return cmd
}
