package host

import (
	"github.com/jsphweid/topliner/model"
)

// Driver runs a processor over an absolute-frame timeline, the way a host
// would feed it block by block during playback.
type Driver struct {
	BlockSize uint32

	// Tail is the number of extra frames processed after the last input
	// event, so that anything a processor is still holding back gets out.
	Tail uint64

	// BeforeBlock, if set, is called with the absolute start frame of each
	// block before it is processed.
	BeforeBlock func(start uint64)
}

func NewDriver(blockSize uint32, tail uint64) *Driver {
	if blockSize == 0 {
		blockSize = 1
	}
	return &Driver{BlockSize: blockSize, Tail: tail}
}

// Run feeds the timeline to p and returns the output on the same absolute
// timeline. Input must be sorted by frame.
func (d *Driver) Run(p Processor, timeline model.Timeline) model.Timeline {
	var end uint64
	if len(timeline) > 0 {
		end = timeline[len(timeline)-1].Frame + 1
	}
	end += d.Tail

	var res model.Timeline
	in := make([]model.Event, 0, 64)
	out := NewEventBuffer(64)
	next := 0
	for start := uint64(0); start < end; start += uint64(d.BlockSize) {
		blockEnd := start + uint64(d.BlockSize)
		in = in[:0]
		for next < len(timeline) && timeline[next].Frame < blockEnd {
			e := timeline[next].Event
			e.Timing = uint32(timeline[next].Frame - start)
			in = append(in, e)
			next++
		}

		if d.BeforeBlock != nil {
			d.BeforeBlock(start)
		}
		out.Reset()
		p.Process(d.BlockSize, in, out)
		for _, e := range out.Events() {
			res = append(res, model.TimedEvent{Frame: start + uint64(e.Timing), Event: e})
		}
	}
	return res
}
