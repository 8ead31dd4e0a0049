package model

import "gitlab.com/gomidi/midi/v2"

type Kind uint8

const (
	// Other covers every event the processors don't interpret.
	Other Kind = iota
	NoteOn
	NoteOff
	Choke
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case Choke:
		return "choke"
	default:
		return "other"
	}
}

// VoiceID is an optional host voice identifier. The zero value is unset.
type VoiceID struct {
	ID  int32
	Set bool
}

func NewVoiceID(id int32) VoiceID {
	return VoiceID{ID: id, Set: true}
}

// Event is a single note event inside a block. Timing is a frame offset
// from the start of the block being processed.
type Event struct {
	Kind     Kind
	Timing   uint32
	Voice    VoiceID
	Channel  uint8
	Note     uint8
	Velocity float32

	// Raw holds the original message of an Other event.
	Raw midi.Message
}

// IsRelease reports whether the event ends a note (NoteOff or Choke).
func (e Event) IsRelease() bool {
	return e.Kind == NoteOff || e.Kind == Choke
}

// TimedEvent places an event on an absolute frame timeline.
type TimedEvent struct {
	Frame uint64
	Event Event
}

type Timeline = []TimedEvent
