package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jsphweid/topliner/db"
	"github.com/jsphweid/topliner/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Lists recorded renders",
	Long:  `Lists the render reports stored with render --record.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.NewStore(cfg.Dynamo)
		if err != nil {
			return err
		}
		reports, err := store.ListReports()
		if err != nil {
			return err
		}
		printReports(cmd.OutOrStdout(), reports)
		return nil
	},
}

func printReports(w io.Writer, reports []model.RenderReport) {
	var notesIn, notesOut, chords int
	for _, r := range reports {
		fmt.Fprintf(w, "%v  %v -> %v  notes %v -> %v  chords %v\n",
			r.CreatedAt.Format(time.RFC3339), r.Source, r.Output, r.NotesIn, r.NotesOut, r.Chords)
		notesIn += r.NotesIn
		notesOut += r.NotesOut
		chords += r.Chords
	}
	fmt.Fprintf(w, "renders: %v\n", len(reports))
	fmt.Fprintf(w, "notes in: %v\n", notesIn)
	fmt.Fprintf(w, "notes out: %v\n", notesOut)
	fmt.Fprintf(w, "chords collapsed: %v\n", chords)
}
