// Package live drives the processing chain from a real-time MIDI input,
// one block per block period of wall clock time.
package live

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/midi"
	"github.com/jsphweid/topliner/midipanic"
	"github.com/jsphweid/topliner/model"
	"github.com/jsphweid/topliner/topliner"
	"github.com/rs/zerolog/log"
	gomidi "gitlab.com/gomidi/midi/v2"
)

const queueSize = 1024

type received struct {
	msg gomidi.Message
	at  time.Time
}

// Bridge turns incoming messages into blocks and sends whatever the chain
// emits straight back out.
type Bridge struct {
	sampleRate uint32
	blockSize  uint32
	period     time.Duration

	queue  chan received
	engine *topliner.Engine
	burst  *midipanic.Panic
	chain  *host.Chain
	send   func(msg gomidi.Message) error
	sink   host.Sink
	in     []model.Event

	blockStart time.Time
	dropped    atomic.Int64
}

func NewBridge(sampleRate, blockSize uint32, send func(msg gomidi.Message) error) *Bridge {
	b := &Bridge{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		period:     time.Duration(blockSize) * time.Second / time.Duration(sampleRate),
		queue:      make(chan received, queueSize),
		engine:     topliner.New(),
		burst:      midipanic.New(),
		send:       send,
		in:         make([]model.Event, 0, queueSize),
	}
	b.chain = host.NewChain(b.engine, b.burst)
	b.sink = host.SinkFunc(b.emit)
	return b
}

// Receive queues a message. It is called from the driver's listener and
// never blocks; messages are dropped when the queue is full.
func (b *Bridge) Receive(msg gomidi.Message, at time.Time) {
	select {
	case b.queue <- received{msg: msg, at: at}:
	default:
		b.dropped.Add(1)
	}
}

// emit sends e as soon as the block is processed. Timing is not honoured, so
// live output is quantised to block boundaries.
func (b *Bridge) emit(e model.Event) {
	msg := midi.MessageFromEvent(e)
	if msg == nil {
		return
	}
	if err := b.send(msg); err != nil {
		log.Warn().Err(err).Stringer("msg", msg).Msg("could not send")
	}
}

// frameOf maps a receive time onto a frame inside the current block.
func (b *Bridge) frameOf(at time.Time, floor uint32) uint32 {
	var frame uint32
	if elapsed := at.Sub(b.blockStart); elapsed > 0 {
		frame = uint32(int64(elapsed) * int64(b.sampleRate) / int64(time.Second))
	}
	if frame >= b.blockSize {
		frame = b.blockSize - 1
	}
	if frame < floor {
		frame = floor
	}
	return frame
}

// ProcessBlock runs the block that ends at now with everything queued so far.
func (b *Bridge) ProcessBlock(now time.Time) {
	b.in = b.in[:0]
	var last uint32
	for len(b.queue) > 0 {
		r := <-b.queue
		e := midi.EventFromMessage(r.msg)
		e.Timing = b.frameOf(r.at, last)
		last = e.Timing
		b.in = append(b.in, e)
	}
	b.chain.Process(b.blockSize, b.in, b.sink)
	b.blockStart = now
}

// Run processes a block every block period until ctx is done, then sends
// a panic burst so no note is left hanging.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.period)
	defer ticker.Stop()

	b.blockStart = time.Now()
	log.Info().Dur("period", b.period).Uint32("block_size", b.blockSize).Msg("live")
	for {
		select {
		case <-ctx.Done():
			b.burst.SetTrigger(true)
			b.ProcessBlock(time.Now())
			if n := b.dropped.Load(); n > 0 {
				log.Warn().Int64("dropped", n).Msg("input queue overflowed")
			}
			return nil
		case now := <-ticker.C:
			b.ProcessBlock(now)
		}
	}
}

// Status must not be called while Run is active.
func (b *Bridge) Status() topliner.Status {
	return b.engine.Status()
}
