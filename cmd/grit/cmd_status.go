package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"grit/pkg/giterr"
	"grit/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			branch, attached, err := r.CurrentBranch()
			switch {
			case err == nil && attached:
				if _, headErr := r.Head(); giterr.HasKind(headErr, giterr.KindRefNotFound) {
					fmt.Fprintf(out, "On branch %s (no commits yet)\n", branch)
				} else {
					fmt.Fprintf(out, "On branch %s\n", branch)
				}
			case err == nil:
				head, headErr := r.Head()
				if headErr == nil {
					fmt.Fprintf(out, "HEAD detached at %s\n", head.Oid.Short())
				}
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
				return nil
			}

			var staged, unstaged, untracked []repo.StatusEntry
			for _, e := range entries {
				switch {
				case e.Status == repo.StatusUntracked:
					untracked = append(untracked, e)
				case e.Status.IsStaged():
					staged = append(staged, e)
				default:
					unstaged = append(unstaged, e)
				}
			}

			printGroup(out, "Changes to be committed:", staged)
			printGroup(out, "Changes not staged for commit:", unstaged)
			printGroup(out, "Untracked files:", untracked)
			return nil
		},
	}
}

func printGroup(out io.Writer, title string, entries []repo.StatusEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(out, title)
	for _, e := range entries {
		fmt.Fprintf(out, "  %-16s %s\n", e.Status, e.Path)
	}
	fmt.Fprintln(out)
}
