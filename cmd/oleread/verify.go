package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/richardlehane/mscfb"
	"github.com/spf13/cobra"

	oleread "github.com/asalih/go-oleread"
)

var errMismatch = errors.New("readers disagree")

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Cross-check FILE against an independent CFB reader",
		Long: `Read FILE with both oleread and github.com/richardlehane/mscfb and
compare every stream's path, declared size and content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.open(args[0])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			mismatches, checked, err := verify(f, data, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d streams checked, %d mismatches\n", checked, mismatches)
			if mismatches > 0 {
				return fmt.Errorf("%s: %d mismatches: %w", args[0], mismatches, errMismatch)
			}
			return nil
		},
	}

	return cmd
}

func verify(f *oleread.File, data []byte, w io.Writer) (mismatches, checked int, err error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("mscfb: %w", err)
	}

	for {
		entry, err := doc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mismatches, checked, fmt.Errorf("mscfb: %w", err)
		}

		// mscfb drops a leading control character from Name and keeps it in
		// Initial. Printable initials stay part of Name.
		name := entry.Name
		if entry.Initial != 0 && !unicode.IsPrint(rune(entry.Initial)) {
			name = string(rune(entry.Initial)) + name
		}
		path := oleread.PathFromNameChain(append(append([]string{}, entry.Path...), name))

		index, err := f.Lookup(path)
		if err != nil {
			fmt.Fprintf(w, "missing\t%q\n", path)
			mismatches++
			continue
		}

		own := f.Entries()[index]
		if own.ObjType != oleread.Stream {
			continue
		}
		checked++

		if int64(own.StreamSize) != entry.Size {
			fmt.Fprintf(w, "size\t%q\t%d != %d\n", path, own.StreamSize, entry.Size)
			mismatches++
			continue
		}

		s, err := f.OpenStream(path)
		if err != nil {
			return mismatches, checked, err
		}
		theirs, err := io.ReadAll(entry)
		if err != nil {
			return mismatches, checked, fmt.Errorf("mscfb: reading %q: %w", path, err)
		}
		ours, err := io.ReadAll(s)
		if err != nil {
			return mismatches, checked, err
		}
		if !bytes.Equal(ours, theirs) {
			fmt.Fprintf(w, "content\t%q\n", path)
			mismatches++
		}
	}

	return mismatches, checked, nil
}
