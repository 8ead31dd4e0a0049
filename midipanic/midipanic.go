// Package midipanic forwards events untouched and, on a rising edge of its
// trigger, sends a note-off for every key on every channel.
package midipanic

import (
	"sync/atomic"

	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/model"
)

const (
	NumChannels = 16
	NumNotes    = 128

	// Velocity is MIDI velocity 64 in the normalized host scale.
	Velocity float32 = 64.0 / 127.0
)

type Panic struct {
	trigger atomic.Bool
	sent    bool
}

func New() *Panic {
	return &Panic{}
}

// SetTrigger may be called from any goroutine.
func (p *Panic) SetTrigger(on bool) {
	p.trigger.Store(on)
}

func (p *Panic) Trigger() bool {
	return p.trigger.Load()
}

func (p *Panic) Process(numSamples uint32, in []model.Event, out host.Sink) {
	for _, e := range in {
		out.Emit(e)
	}

	if !p.trigger.Load() {
		p.sent = false
		return
	}
	if p.sent {
		return
	}
	p.sent = true

	var last uint32
	if numSamples > 0 {
		last = numSamples - 1
	}
	for channel := 0; channel < NumChannels; channel++ {
		for note := 0; note < NumNotes; note++ {
			out.Emit(model.Event{
				Kind:     model.NoteOff,
				Timing:   last,
				Channel:  uint8(channel),
				Note:     uint8(note),
				Velocity: Velocity,
			})
		}
	}
}

var _ host.Processor = (*Panic)(nil)
