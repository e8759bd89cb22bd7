package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/richardlehane/msoleps"
	"github.com/spf13/cobra"
)

const summaryInformation = "\x05SummaryInformation"

func newPropsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "props FILE [STREAM]",
		Short: "Print an OLE property set",
		Long: `Decode a property set stream of FILE and print its properties. The
default stream is "\x05SummaryInformation"; pass e.g.
"\x05DocumentSummaryInformation" for the other standard set.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.open(args[0])
			if err != nil {
				return err
			}

			name := summaryInformation
			if len(args) == 2 {
				name = streamArg(args[1])
			}

			s, err := f.OpenStream(name)
			if err != nil {
				return err
			}

			props, err := msoleps.NewFrom(s)
			if err != nil {
				return fmt.Errorf("decoding property set %q: %w", name, err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, prop := range props.Property {
				fmt.Fprintf(w, "%s\t%s\n", prop.Name, prop.String())
			}

			return w.Flush()
		},
	}

	return cmd
}
