package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/topliner/chord"
	"github.com/jsphweid/topliner/midi"
	"github.com/jsphweid/topliner/model"
	"github.com/jsphweid/topliner/topliner"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Prints the events of a midi file",
	Long:  `Prints the events of a midi file in sample frames, followed by the chords the top note engine would collapse.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		return inspect(cmd.OutOrStdout(), midi.ToTimeline(s, cfg.SampleRate))
	},
}

func inspect(w io.Writer, timeline model.Timeline) error {
	if err := midi.Dump(w, timeline); err != nil {
		return err
	}
	for _, c := range chord.Detect(timeline, uint64(topliner.Window)) {
		_, err := fmt.Fprintf(w, "chord at %v: %v (top %v, span %v)\n", c.Frame, chord.CreateChordKey(c.Notes), c.Top(), c.Span)
		if err != nil {
			return err
		}
	}
	return nil
}
