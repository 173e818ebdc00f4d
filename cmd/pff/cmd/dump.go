/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/pff/pkg/reader"
)

// dumpOptions controls what dumpEvents prints
type dumpOptions struct {
	Limit    int // 0 = all events
	Payloads bool
	MaxBytes int // payload bytes shown per item
}

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "Print events, channels and data items",
	Long: `Print every event with its channels and data items, rolling over
numbered files until the run ends.

Examples:
  pff dump /data/run_0042_
  pff dump /data/run_0042_000000.pff --limit 10 --payload`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		payloads, _ := cmd.Flags().GetBool("payload")
		maxBytes, _ := cmd.Flags().GetInt("payload-bytes")

		r, err := openReader(cmd, args)
		if err != nil {
			return err
		}
		defer r.Close()

		n, err := dumpEvents(cmd.OutOrStdout(), r, dumpOptions{Limit: limit, Payloads: payloads, MaxBytes: maxBytes})
		fmt.Fprintf(cmd.OutOrStdout(), "%d events\n", n)
		return err
	},
}

func init() {
	dumpCmd.Flags().IntP("limit", "n", 0, "Stop after this many events (0 = all)")
	dumpCmd.Flags().Bool("payload", false, "Print payload bytes as hex")
	dumpCmd.Flags().Int("payload-bytes", 32, "Payload bytes printed per data item")
	rootCmd.AddCommand(dumpCmd)
}

// dumpEvents prints events from r until the stream ends or opts.Limit is
// reached, returning the number printed
func dumpEvents(w io.Writer, r *reader.Reader, opts dumpOptions) (int, error) {
	count := 0
	lastFile := -1
	for opts.Limit == 0 || count < opts.Limit {
		err := r.Next()
		if errors.Is(err, reader.ErrEndOfStream) {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		if r.FileIndex() != lastFile {
			lastFile = r.FileIndex()
			h, err := r.Header()
			if err != nil {
				return count, err
			}
			fmt.Fprintf(w, "== %s (run %s, compressed=%t)\n", r.FilePath(), h.RunIdentifier, h.Zipped)
		}

		if err := dumpEvent(w, r, opts); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func dumpEvent(w io.Writer, r *reader.Reader, opts dumpOptions) error {
	number, err := r.EventNumber()
	if err != nil {
		return err
	}
	channels, err := r.ChannelCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "event %d: %d channels\n", number, channels)

	for c := 0; c < channels; c++ {
		id, module, err := r.ChannelKeyAt(c)
		if err != nil {
			return err
		}
		items, err := r.DataCount(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  channel %d module %d: %d items\n", id, module, items)

		for d := 0; d < items; d++ {
			payload, ts, err := r.DataAt(c, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "    [%d] time=%d size=%d", d, ts, len(payload))
			if opts.Payloads {
				shown := payload
				if opts.MaxBytes > 0 && len(shown) > opts.MaxBytes {
					shown = shown[:opts.MaxBytes]
				}
				fmt.Fprintf(w, " %s", hex.EncodeToString(shown))
				if len(shown) < len(payload) {
					fmt.Fprint(w, "...")
				}
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
