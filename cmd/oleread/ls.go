package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	oleread "github.com/asalih/go-oleread"
)

func newLsCmd(opts *globalOptions) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "ls FILE",
		Short: "List directory entries",
		Long: `List the directory entries of FILE in on-disk order, or with --tree
as paths through the storage hierarchy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.open(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tTYPE\tSTART\tSIZE\tNAME")

			row := func(index int, name string, entry *oleread.DirEntry) {
				fmt.Fprintf(w, "%d\t%v\t%v\t%d\t%q\n", index, entry.ObjType, entry.StartLink(), entry.StreamSize, name)
			}

			if tree {
				err = f.Walk(func(path string, index int, entry *oleread.DirEntry) error {
					row(index, path, entry)
					return nil
				})
				if err != nil {
					return err
				}
			} else {
				for index, entry := range f.Entries() {
					if entry.ObjType == oleread.Unallocated {
						continue
					}
					row(index, entry.DisplayName, entry)
				}
			}

			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "List entries by storage path")

	return cmd
}
