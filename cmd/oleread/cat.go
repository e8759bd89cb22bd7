package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	oleread "github.com/asalih/go-oleread"
)

func newCatCmd(opts *globalOptions) *cobra.Command {
	var (
		trim       bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "cat FILE [STREAM]",
		Short: "Write a stream to stdout",
		Long: `Write the Workbook stream of FILE, or the stream at the given path, to
stdout. Streams are written in whole sectors unless --trim is set.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.open(args[0])
			if err != nil {
				return err
			}

			var (
				data  []byte
				entry *oleread.DirEntry
			)
			if len(args) == 2 {
				index, err := f.Lookup(streamArg(args[1]))
				if err != nil {
					return err
				}
				if data, err = f.StreamAt(index); err != nil {
					return err
				}
				entry = f.Entries()[index]
			} else {
				if data, err = f.Workbook(); err != nil {
					return err
				}
				entry = f.WorkbookEntry()
			}

			if trim {
				data = oleread.TrimToSize(data, entry)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&trim, "trim", false, "Cut the stream to its declared size")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")

	return cmd
}
