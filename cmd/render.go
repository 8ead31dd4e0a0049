package cmd

import (
	"os"
	"path/filepath"

	"github.com/jsphweid/topliner/db"
	"github.com/jsphweid/topliner/render"
	"github.com/jsphweid/topliner/util"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	renderMaxNum int
	renderRecord bool
	renderPanic  int64
)

func init() {
	renderCmd.Flags().IntVar(&renderMaxNum, "max", 0, "render at most this many files from a directory (0 for all)")
	renderCmd.Flags().BoolVar(&renderRecord, "record", false, "store a report of each render in DynamoDB")
	renderCmd.Flags().Int64Var(&renderPanic, "panic-at", -1, "send a panic burst at this frame")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <file.mid|dir> [out dir]",
	Short: "Renders the top line of midi files",
	Long: `Runs each midi file through the top note engine and writes the
monophonic result to the output directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir := cfg.OutDir
		if len(args) == 2 {
			outDir = args[1]
		}
		return Render(args[0], outDir)
	},
}

func renderOptions() render.Options {
	opts := render.Options{SampleRate: cfg.SampleRate, BlockSize: cfg.BlockSize}
	if renderPanic >= 0 {
		at := uint64(renderPanic)
		opts.PanicAt = &at
	}
	return opts
}

// Render renders a midi file, or every midi file under a directory, into outDir.
func Render(src string, outDir string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrap(err, "could not render")
	}

	paths := []string{src}
	if info.IsDir() {
		paths, err = util.GatherAllMidiPaths(src, renderMaxNum)
		if err != nil {
			return err
		}
	}

	var store *db.Store
	if renderRecord {
		store, err = db.NewStore(cfg.Dynamo)
		if err != nil {
			return err
		}
	}

	opts := renderOptions()
	var failed int
	for i, path := range paths {
		log.Info().Msgf("Processing %v of %v midi files", i+1, len(paths))
		dst := render.OutputPath(src, path, outDir)
		if err := util.EnsureDir(filepath.Dir(dst)); err != nil {
			return err
		}

		report, err := render.File(path, dst, opts)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping")
			failed++
			continue
		}
		log.Info().
			Str("file", path).
			Str("output", dst).
			Int("notes_in", report.NotesIn).
			Int("notes_out", report.NotesOut).
			Int("chords", report.Chords).
			Msg("rendered")

		if store != nil {
			if err := store.PutReport(report); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return errors.Errorf("%v of %v files failed to render", failed, len(paths))
	}
	return nil
}
