// Package host plays the part of a plugin host: it hands each processor a
// block's input events and collects what the processor emits.
package host

import "github.com/jsphweid/topliner/model"

// Sink accepts output events in the order they are emitted.
type Sink interface {
	Emit(e model.Event)
}

// Processor transforms one block of events. Implementations run on the
// processing thread and must not block.
type Processor interface {
	Process(numSamples uint32, in []model.Event, out Sink)
}

// EventBuffer is a reusable Sink. Reset keeps the backing array, so after
// warm-up a block is collected without allocating.
type EventBuffer struct {
	events []model.Event
}

func NewEventBuffer(capacity int) *EventBuffer {
	return &EventBuffer{events: make([]model.Event, 0, capacity)}
}

func (b *EventBuffer) Emit(e model.Event) {
	b.events = append(b.events, e)
}

func (b *EventBuffer) Events() []model.Event {
	return b.events
}

func (b *EventBuffer) Len() int {
	return len(b.events)
}

func (b *EventBuffer) Reset() {
	b.events = b.events[:0]
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e model.Event)

func (f SinkFunc) Emit(e model.Event) {
	f(e)
}

// Chain runs processors in series: the output of one is the input of the
// next, all within the same block.
type Chain struct {
	processors []Processor
	buffers    []*EventBuffer
}

func NewChain(processors ...Processor) *Chain {
	c := &Chain{processors: processors}
	for i := 0; i < len(processors)-1; i++ {
		c.buffers = append(c.buffers, NewEventBuffer(256))
	}
	return c
}

func (c *Chain) Process(numSamples uint32, in []model.Event, out Sink) {
	if len(c.processors) == 0 {
		for _, e := range in {
			out.Emit(e)
		}
		return
	}
	for i, p := range c.processors {
		if i == len(c.processors)-1 {
			p.Process(numSamples, in, out)
			return
		}
		buf := c.buffers[i]
		buf.Reset()
		p.Process(numSamples, in, buf)
		in = buf.Events()
	}
}
