// Package main provides the oleread command, a small inspector for OLE2
// compound files such as legacy .xls workbooks.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	oleread "github.com/asalih/go-oleread"
)

type globalOptions struct {
	strict bool
	debug  bool
}

func (o *globalOptions) bind(flags *pflag.FlagSet) {
	flags.BoolVar(&o.strict, "strict", false, "Validate the whole container structure")
	flags.BoolVar(&o.debug, "debug", false, "Log container decoding to stderr")
}

func (o *globalOptions) validation() oleread.Validation {
	if o.strict {
		return oleread.ValidationStrict
	}
	return oleread.ValidationPermissive
}

func (o *globalOptions) open(path string) (*oleread.File, error) {
	if o.debug {
		oleread.EnableDebug()
	}

	return oleread.Open(path, o.validation())
}

// streamArg lets stream names with control characters be typed as Go
// escapes, e.g. "\x05SummaryInformation".
func streamArg(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "oleread",
		Short: "Inspect OLE2 compound files",
		Long: `oleread lists the entries of an OLE2 compound file and extracts
its streams, most notably the Workbook stream of legacy Excel files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newLsCmd(opts),
		newCatCmd(opts),
		newPropsCmd(opts),
		newVerifyCmd(opts),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
