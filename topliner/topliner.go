// Package topliner collapses overlapping notes into a single monophonic
// line where the highest note wins.
//
// A note-on arriving while nothing is playing opens a chord window of
// Window frames. Higher notes that arrive inside the window replace the
// candidate, and when the window closes the highest one is played at the
// window's deadline. Once a note sounds, only a strictly higher note-on
// takes over; lower or equal ones are dropped.
package topliner

import (
	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/model"
)

// Window is the chord detection delay in frames.
const Window uint32 = 1024

type phase uint8

const (
	idle phase = iota
	detecting
	holding
)

func (p phase) String() string {
	switch p {
	case detecting:
		return "detecting"
	case holding:
		return "holding"
	default:
		return "idle"
	}
}

// CapturedNoteOn is what is kept of a note-on so it can be replayed later
// with a different note and timing.
type CapturedNoteOn struct {
	Timing   uint32
	Voice    model.VoiceID
	Channel  uint8
	Velocity float32
}

func capture(e model.Event) CapturedNoteOn {
	return CapturedNoteOn{
		Timing:   e.Timing,
		Voice:    e.Voice,
		Channel:  e.Channel,
		Velocity: e.Velocity,
	}
}

// state is idle, detecting{deadline, note, captured} or holding{channel, note}.
// Fields not used by the current phase are zero.
type state struct {
	phase    phase
	deadline uint32
	channel  uint8
	note     uint8
	captured CapturedNoteOn
}

// Engine lets through only the top note of each chord, one voice at a time.
type Engine struct {
	state state
}

// New returns an idle engine.
func New() *Engine {
	return &Engine{}
}

// HandleEvent arbitrates a single input event, emitting whatever it lets
// through to out.
func (e *Engine) HandleEvent(ev model.Event, out host.Sink) {
	switch {
	case ev.IsRelease():
		e.release(ev, out)
	case ev.Kind == model.NoteOn:
		e.noteOn(ev, out)
	default:
		out.Emit(ev)
	}
}

func (e *Engine) release(ev model.Event, out host.Sink) {
	switch e.state.phase {
	case detecting:
		// chord abandoned before it sounded
		e.state = state{}
	case holding:
		if ev.Channel == e.state.channel && ev.Note == e.state.note {
			out.Emit(ev)
			e.state = state{}
		}
	}
}

func (e *Engine) noteOn(ev model.Event, out host.Sink) {
	switch e.state.phase {
	case idle:
		e.state = state{
			phase:    detecting,
			deadline: ev.Timing + Window,
			note:     ev.Note,
			captured: capture(ev),
		}
	case detecting:
		if ev.Note > e.state.note {
			e.state.note = ev.Note
			e.state.captured = capture(ev)
		}
	case holding:
		if ev.Note <= e.state.note {
			return
		}
		out.Emit(model.Event{
			Kind:     model.NoteOff,
			Timing:   ev.Timing,
			Voice:    ev.Voice,
			Channel:  e.state.channel,
			Note:     e.state.note,
			Velocity: ev.Velocity,
		})
		out.Emit(ev)
		e.state = state{phase: holding, channel: ev.Channel, note: ev.Note}
	}
}

// AdvanceBlock is called once all events of a block have been handled. It
// plays the chord candidate if its window closes inside this block,
// otherwise it rebases the deadline onto the next block.
func (e *Engine) AdvanceBlock(numSamples uint32, out host.Sink) {
	if e.state.phase != detecting {
		return
	}
	if e.state.deadline >= numSamples {
		e.state.deadline -= numSamples
		return
	}
	c := e.state.captured
	out.Emit(model.Event{
		Kind:     model.NoteOn,
		Timing:   e.state.deadline,
		Voice:    c.Voice,
		Channel:  c.Channel,
		Note:     e.state.note,
		Velocity: c.Velocity,
	})
	e.state = state{phase: holding, channel: c.Channel, note: e.state.note}
}

// Process runs one block: every input event in order, then the block advance.
func (e *Engine) Process(numSamples uint32, in []model.Event, out host.Sink) {
	for _, ev := range in {
		e.HandleEvent(ev, out)
	}
	e.AdvanceBlock(numSamples, out)
}

// Status describes the engine state for logging and debugging. It is not
// meant to be called from the processing thread.
type Status struct {
	Phase    string
	Deadline uint32
	Channel  uint8
	Note     uint8
	Captured CapturedNoteOn
}

func (e *Engine) Status() Status {
	s := Status{Phase: e.state.phase.String(), Note: e.state.note}
	switch e.state.phase {
	case detecting:
		s.Deadline = e.state.deadline
		s.Captured = e.state.captured
		s.Channel = e.state.captured.Channel
	case holding:
		s.Channel = e.state.channel
	}
	return s
}

var _ host.Processor = (*Engine)(nil)
