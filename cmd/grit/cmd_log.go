package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var (
		maxCount    int
		firstParent bool
		author      string
		since       string
		until       string
		paths       []string
	)

	cmd := &cobra.Command{
		Use:   "log [start]",
		Short: "Show commit history, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			opts := repo.LogOptions{
				MaxCount:    maxCount,
				FirstParent: firstParent,
				Author:      author,
				Paths:       paths,
			}
			if len(args) == 1 {
				oid, err := r.ResolveShortOid(args[0])
				if err != nil {
					return err
				}
				opts.From = oid
			}
			if since != "" {
				t, err := repo.ParseDate(since)
				if err != nil {
					return err
				}
				opts.Since = &t
			}
			if until != "" {
				t, err := repo.ParseDate(until)
				if err != nil {
					return err
				}
				opts.Until = &t
			}

			it, err := r.LogWithOptions(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for {
				commit, err := it.Next()
				if err != nil {
					return err
				}
				if commit == nil {
					return nil
				}

				when := time.Unix(commit.Author.When, 0).
					In(time.FixedZone("", int(commit.Author.TzOffset)*60))
				fmt.Fprintf(out, "commit %s\n", commit.Oid.Hex())
				fmt.Fprintf(out, "Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n\n", when.Format("Mon Jan 2 15:04:05 2006 -0700"))
				fmt.Fprintf(out, "    %s\n\n", commit.Summary())
			}
		},
	}

	cmd.Flags().IntVarP(&maxCount, "max-count", "n", 0, "limit the number of commits")
	cmd.Flags().BoolVar(&firstParent, "first-parent", false, "follow only the mainline parent at merges")
	cmd.Flags().StringVar(&author, "author", "", "filter by author substring")
	cmd.Flags().StringVar(&since, "since", "", "only commits on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "only commits on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&paths, "path", nil, "only commits touching this path")
	return cmd
}
