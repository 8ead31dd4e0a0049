package chord

import (
	"fmt"

	"github.com/jsphweid/topliner/model"
	"golang.org/x/exp/slices"
)

// CreateChordKey returns the sorted notes joined by dashes, e.g. "60-64-67".
func CreateChordKey(notes model.Notes) string {
	sorted := slices.Clone(notes)
	slices.Sort(sorted)
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// Detect groups note-ons that start within window frames of the first
// onset of their group. Only groups of two or more distinct notes are
// returned. The timeline must be sorted by frame.
func Detect(timeline model.Timeline, window uint64) []model.Chord {
	var chords []model.Chord
	var curr model.Chord
	var last uint64

	flush := func() {
		if len(curr.Notes) > 1 {
			curr.Span = last - curr.Frame
			chords = append(chords, curr)
		}
		curr = model.Chord{}
	}

	for _, te := range timeline {
		if te.Event.Kind != model.NoteOn {
			continue
		}
		if len(curr.Notes) > 0 && te.Frame-curr.Frame >= window {
			flush()
		}
		if len(curr.Notes) == 0 {
			curr.Frame = te.Frame
		}
		if !slices.Contains(curr.Notes, te.Event.Note) {
			curr.Notes = append(curr.Notes, te.Event.Note)
			last = te.Frame
		}
	}
	flush()

	return chords
}
