package midi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jsphweid/topliner/model"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"
)

const (
	// Files written by FromTimeline use a fixed resolution and tempo, so
	// frames map to ticks without a tempo map.
	OutputTicks smf.MetricTicks = 960
	OutputBPM                   = 120.0
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = &blank
			e = errors.Errorf("parsing midi file panicked: %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "error reading midi file")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "error parsing midi file")
	}

	return res, nil
}

func WriteMidiFile(filepath string, s *smf.SMF) error {
	if err := s.WriteFile(filepath); err != nil {
		return errors.Wrapf(err, "error writing midi file %v", filepath)
	}
	return nil
}

// ToTimeline merges every track into a single timeline measured in sample
// frames. Meta messages are dropped.
func ToTimeline(s *smf.SMF, sampleRate uint32) model.Timeline {
	var res model.Timeline
	for _, track := range s.Tracks {
		var absTicks int64
		for _, evt := range track {
			absTicks += int64(evt.Delta)
			if evt.Message.IsMeta() || !evt.Message.IsPlayable() {
				continue
			}
			frame := microsToFrames(s.TimeAt(absTicks), sampleRate)
			res = append(res, model.TimedEvent{Frame: frame, Event: toEvent(evt.Message)})
		}
	}

	// prioritize smaller frames then releases
	slices.SortStableFunc(res, func(a, b model.TimedEvent) bool {
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Event.IsRelease() && !b.Event.IsRelease()
	})
	return res
}

func toEvent(msg smf.Message) model.Event {
	return EventFromMessage(gomidi.Message(msg))
}

// EventFromMessage converts a channel message. Timing is left at zero.
func EventFromMessage(msg gomidi.Message) model.Event {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return model.Event{
			Kind:     model.NoteOn,
			Channel:  channel,
			Note:     key,
			Velocity: float32(velocity) / 127,
		}
	case msg.GetNoteOff(&channel, &key, &velocity):
		return model.Event{
			Kind:     model.NoteOff,
			Channel:  channel,
			Note:     key,
			Velocity: float32(velocity) / 127,
		}
	case msg.GetNoteEnd(&channel, &key):
		// note-on with zero velocity
		return model.Event{Kind: model.NoteOff, Channel: channel, Note: key}
	default:
		raw := make([]byte, len(msg))
		copy(raw, msg)
		return model.Event{Kind: model.Other, Raw: gomidi.Message(raw)}
	}
}

// MessageFromEvent is the inverse of EventFromMessage. It returns nil for
// an Other event without data.
func MessageFromEvent(e model.Event) gomidi.Message {
	switch e.Kind {
	case model.NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, denormalize(e.Velocity, 1))
	case model.NoteOff, model.Choke:
		return gomidi.NoteOffVelocity(e.Channel, e.Note, denormalize(e.Velocity, 0))
	default:
		if len(e.Raw) == 0 {
			return nil
		}
		return e.Raw
	}
}

func microsToFrames(micros int64, sampleRate uint32) uint64 {
	if micros <= 0 {
		return 0
	}
	return (uint64(micros)*uint64(sampleRate) + 500_000) / 1_000_000
}

func framesToTicks(frame uint64, sampleRate uint32) uint64 {
	if sampleRate == 0 {
		return 0
	}
	// ticks per second at the output tempo
	tps := uint64(float64(OutputTicks) * OutputBPM / 60)
	return (frame*tps + uint64(sampleRate)/2) / uint64(sampleRate)
}

func denormalize(v float32, floor uint8) uint8 {
	scaled := math.Round(float64(v) * 127)
	if scaled < float64(floor) {
		return floor
	}
	if scaled > 127 {
		return 127
	}
	return uint8(scaled)
}

// FromTimeline writes a timeline into a single-track SMF.
func FromTimeline(timeline model.Timeline, sampleRate uint32, name string) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = OutputTicks

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(name))
	track.Add(0, smf.MetaTempo(OutputBPM))

	var lastTicks uint64
	for _, te := range timeline {
		msg := MessageFromEvent(te.Event)
		if msg == nil {
			continue
		}
		ticks := framesToTicks(te.Frame, sampleRate)
		if ticks < lastTicks {
			return nil, errors.Errorf("timeline goes backwards at frame %d", te.Frame)
		}
		delta := uint32(ticks - lastTicks)
		lastTicks = ticks

		track.Add(delta, msg)
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, errors.Wrap(err, "could not add track")
	}
	return s, nil
}

// CountNotes returns the number of note-ons in a timeline.
func CountNotes(timeline model.Timeline) int {
	var n int
	for _, te := range timeline {
		if te.Event.Kind == model.NoteOn {
			n++
		}
	}
	return n
}

func Dump(w io.Writer, timeline model.Timeline) error {
	for _, te := range timeline {
		e := te.Event
		var err error
		switch e.Kind {
		case model.Other:
			_, err = fmt.Fprintf(w, "%d other % X\n", te.Frame, e.Raw.Bytes())
		default:
			_, err = fmt.Fprintf(w, "%d %v ch=%d note=%d vel=%.3f\n", te.Frame, e.Kind, e.Channel, e.Note, e.Velocity)
		}
		if err != nil {
			return errors.Wrap(err, "could not dump timeline")
		}
	}
	return nil
}
