package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/object"
	"grit/pkg/repo"
)

func newBranchCmd() *cobra.Command {
	var deleteName string
	var remotes bool

	cmd := &cobra.Command{
		Use:   "branch [name [start-point]]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if deleteName != "" {
				if err := r.DeleteBranch(deleteName); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted branch %s\n", deleteName)
				return nil
			}

			if len(args) == 0 {
				if remotes {
					branches, err := r.RemoteBranches()
					if err != nil {
						return err
					}
					for _, b := range branches {
						fmt.Fprintf(out, "  %s/%s\n", b.Remote, b.Name)
					}
					return nil
				}

				current, attached, _ := r.CurrentBranch()
				branches, err := r.Branches()
				if err != nil {
					return err
				}
				for _, b := range branches {
					marker := " "
					if attached && b.Name == current {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, b.Name)
				}
				return nil
			}

			var target *object.Oid
			if len(args) == 2 {
				oid, err := r.ResolveShortOid(args[1])
				if err != nil {
					return err
				}
				target = &oid
			}
			_, err = r.CreateBranch(args[0], target)
			return err
		},
	}

	cmd.Flags().StringVarP(&deleteName, "delete", "d", "", "delete the named branch")
	cmd.Flags().BoolVarP(&remotes, "remotes", "r", false, "list remote-tracking branches")
	return cmd
}
