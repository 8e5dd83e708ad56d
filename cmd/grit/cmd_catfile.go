package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/object"
	"grit/pkg/repo"
)

func newCatFileCmd() *cobra.Command {
	var showType bool

	cmd := &cobra.Command{
		Use:   "cat-file <oid>",
		Short: "Show an object's content or type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Discover(".")
			if err != nil {
				return err
			}

			obj, err := r.Object(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showType {
				fmt.Fprintln(out, obj.Type())
				return nil
			}

			switch o := obj.(type) {
			case *object.Blob:
				out.Write(o.Data)
			case *object.Tree:
				for _, e := range o.Entries {
					kind := object.TypeBlob
					if e.IsDir() {
						kind = object.TypeTree
					}
					fmt.Fprintf(out, "%06o %s %s\t%s\n", uint32(e.Mode), kind, e.Oid.Hex(), e.Name)
				}
			case *object.Commit:
				fmt.Fprintf(out, "tree %s\n", o.Tree.Hex())
				for _, p := range o.Parents {
					fmt.Fprintf(out, "parent %s\n", p.Hex())
				}
				fmt.Fprintf(out, "author %s\n", object.FormatSignature(o.Author))
				fmt.Fprintf(out, "committer %s\n\n%s", object.FormatSignature(o.Committer), o.Message)
			case *object.TagObject:
				fmt.Fprintf(out, "object %s\ntype %s\ntag %s\n\n%s", o.Object.Hex(), o.ObjectType, o.Name, o.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type instead of its content")
	return cmd
}
