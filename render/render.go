// Package render runs MIDI files through the top-note processor offline.
package render

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/topliner/chord"
	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/midi"
	"github.com/jsphweid/topliner/midipanic"
	"github.com/jsphweid/topliner/model"
	"github.com/jsphweid/topliner/topliner"
	"github.com/pkg/errors"
)

type Options struct {
	SampleRate uint32
	BlockSize  uint32

	// PanicAt raises the panic trigger from the block containing this
	// frame onwards. Nil disables it.
	PanicAt *uint64
}

type Stats struct {
	NotesIn  int
	NotesOut int
	Chords   int
}

// Timeline runs the top-note engine, followed by the panic processor, over
// an absolute timeline.
func Timeline(in model.Timeline, opts Options) (model.Timeline, Stats) {
	engine := topliner.New()
	burst := midipanic.New()
	chain := host.NewChain(engine, burst)

	d := host.NewDriver(opts.BlockSize, uint64(topliner.Window)+uint64(opts.BlockSize))
	if opts.PanicAt != nil {
		at := *opts.PanicAt
		d.BeforeBlock = func(start uint64) {
			burst.SetTrigger(start+uint64(d.BlockSize) > at)
		}
	}
	out := d.Run(chain, in)

	stats := Stats{
		NotesIn:  midi.CountNotes(in),
		NotesOut: midi.CountNotes(out),
		Chords:   len(chord.Detect(in, uint64(topliner.Window))),
	}
	return out, stats
}

// File renders src into dst and returns a report describing the run.
func File(src, dst string, opts Options) (model.RenderReport, error) {
	s, err := midi.ReadMidiFile(src)
	if err != nil {
		return model.RenderReport{}, err
	}

	out, stats := Timeline(midi.ToTimeline(s, opts.SampleRate), opts)

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	rendered, err := midi.FromTimeline(out, opts.SampleRate, name+" (top line)")
	if err != nil {
		return model.RenderReport{}, errors.Wrapf(err, "could not render %v", src)
	}
	if err := midi.WriteMidiFile(dst, rendered); err != nil {
		return model.RenderReport{}, err
	}

	return model.RenderReport{
		ID:         uuid.New().String(),
		Source:     src,
		Output:     dst,
		SampleRate: opts.SampleRate,
		BlockSize:  opts.BlockSize,
		NotesIn:    stats.NotesIn,
		NotesOut:   stats.NotesOut,
		Chords:     stats.Chords,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// OutputPath maps a source file to its location under outDir, keeping the
// path relative to root when the source came from a directory walk.
func OutputPath(root, src, outDir string) string {
	rel, err := filepath.Rel(root, src)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	return filepath.Join(outDir, rel)
}
