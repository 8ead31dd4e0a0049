package model

import (
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
)

type WireEvent struct {
	Type     string  `json:"type"`
	Timing   uint32  `json:"timing"`
	VoiceID  *int32  `json:"voice_id,omitempty"`
	Channel  uint8   `json:"channel"`
	Note     uint8   `json:"note"`
	Velocity float32 `json:"velocity"`

	// Data carries the raw bytes of an "other" event.
	Data []byte `json:"data,omitempty"`
}

type WireBlock struct {
	NumSamples uint32      `json:"num_samples"`
	Events     []WireEvent `json:"events"`
}

type ProcessRequestBody struct {
	Blocks []WireBlock `json:"blocks"`
}

type ProcessResponse struct {
	Blocks []WireBlock `json:"blocks"`
}

type SessionResponse struct {
	ID string `json:"id"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

func ToWire(e Event) WireEvent {
	w := WireEvent{
		Type:     e.Kind.String(),
		Timing:   e.Timing,
		Channel:  e.Channel,
		Note:     e.Note,
		Velocity: e.Velocity,
	}
	if e.Voice.Set {
		id := e.Voice.ID
		w.VoiceID = &id
	}
	if e.Kind == Other {
		w.Data = e.Raw.Bytes()
	}
	return w
}

func FromWire(w WireEvent) (Event, error) {
	e := Event{
		Timing:   w.Timing,
		Channel:  w.Channel,
		Note:     w.Note,
		Velocity: w.Velocity,
	}
	if w.VoiceID != nil {
		e.Voice = NewVoiceID(*w.VoiceID)
	}
	switch w.Type {
	case "note_on":
		e.Kind = NoteOn
	case "note_off":
		e.Kind = NoteOff
	case "choke":
		e.Kind = Choke
	case "other":
		e.Kind = Other
		e.Raw = midi.Message(w.Data)
	default:
		return Event{}, errors.Errorf("unknown event type %q", w.Type)
	}
	return e, nil
}

// EventsFromWire decodes a block's events and checks that they fit inside it.
func EventsFromWire(b WireBlock) ([]Event, error) {
	events := make([]Event, 0, len(b.Events))
	var last uint32
	for i, w := range b.Events {
		e, err := FromWire(w)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		if e.Timing >= b.NumSamples {
			return nil, errors.Errorf("event %d: timing %d outside block of %d samples", i, e.Timing, b.NumSamples)
		}
		if e.Timing < last {
			return nil, errors.Errorf("event %d: timing %d before previous event at %d", i, e.Timing, last)
		}
		last = e.Timing
		events = append(events, e)
	}
	return events, nil
}

func BlockToWire(numSamples uint32, events []Event) WireBlock {
	b := WireBlock{NumSamples: numSamples, Events: make([]WireEvent, 0, len(events))}
	for _, e := range events {
		b.Events = append(b.Events, ToWire(e))
	}
	return b
}
