package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/changeline/changeline/pkg/errors"
	"github.com/changeline/changeline/pkg/narrative"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Split an announcement body into narrative sections",
	Long: `Segment reads an announcement body from a file (or stdin when no file
is given), splits it into Summary, Changes, Impact, and Actions sections,
and prints the sections as JSON. HTML input is flattened first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	var body []byte
	var err error

	if len(args) == 1 {
		body, err = os.ReadFile(args[0])
		if err != nil {
			return errors.WrapIO("read", args[0], err)
		}
	} else {
		body, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.WrapIO("read", "stdin", err)
		}
	}

	sections := narrative.Segment(string(body))

	out, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
