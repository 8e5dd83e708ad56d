package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"grit/pkg/object"
	"grit/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var authorOverride string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			sig, err := commitSignature(r, authorOverride)
			if err != nil {
				return err
			}

			oid, err := r.CreateCommit(message, sig, sig)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", oid.Short(), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&authorOverride, "author", "", "override author (\"Name <email>\")")
	return cmd
}

// commitSignature builds the signature from --author, user.name/user.email
// in the repository config, or a hostname-derived fallback, stamped with
// the current local time.
func commitSignature(r *repo.Repository, override string) (object.Signature, error) {
	now := time.Now()
	_, offsetSec := now.Zone()

	sig := object.Signature{
		When:     now.Unix(),
		TzOffset: int32(offsetSec / 60),
	}

	if override != "" {
		parsed, err := object.ParseSignature(fmt.Sprintf("%s %d +0000", override, now.Unix()))
		if err != nil {
			return object.Signature{}, fmt.Errorf("malformed --author %q", override)
		}
		sig.Name = parsed.Name
		sig.Email = parsed.Email
		return sig, nil
	}

	cfg, err := r.Config()
	if err != nil {
		return object.Signature{}, err
	}
	if name, err := cfg.Get("user.name"); err == nil {
		sig.Name = name
	}
	if email, err := cfg.Get("user.email"); err == nil {
		sig.Email = email
	}

	if sig.Name == "" {
		host, _ := os.Hostname()
		sig.Name = os.Getenv("USER")
		if sig.Name == "" {
			sig.Name = "unknown"
		}
		sig.Email = sig.Name + "@" + host
	}
	return sig, nil
}
