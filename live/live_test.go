package live

import (
	"context"
	"testing"
	"time"

	"github.com/jsphweid/topliner/midipanic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	sent []gomidi.Message
}

func (r *recorder) send(msg gomidi.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestBridgePlaysTopNoteAfterWindow(t *testing.T) {
	rec := &recorder{}
	// 1000 Hz keeps the arithmetic in milliseconds: 1 frame per ms
	b := NewBridge(1000, 512, rec.send)
	start := time.Unix(0, 0)
	b.blockStart = start

	b.Receive(gomidi.NoteOn(0, 60, 100), start.Add(10*time.Millisecond))
	b.Receive(gomidi.NoteOn(0, 67, 90), start.Add(20*time.Millisecond))
	b.Receive(gomidi.NoteOn(0, 64, 80), start.Add(30*time.Millisecond))
	b.Receive(gomidi.ControlChange(0, 1, 5), start.Add(40*time.Millisecond))

	b.ProcessBlock(start.Add(512 * time.Millisecond))
	assert.Equal(t, []gomidi.Message{gomidi.ControlChange(0, 1, 5)}, rec.sent)
	assert.Equal(t, "detecting", b.Status().Phase)
	assert.Equal(t, uint32(10+1024-512), b.Status().Deadline)

	b.ProcessBlock(start.Add(1024 * time.Millisecond))
	b.ProcessBlock(start.Add(1536 * time.Millisecond))
	require.Len(t, rec.sent, 2)
	assert.Equal(t, gomidi.NoteOn(0, 67, 90), rec.sent[1])
	assert.Equal(t, "holding", b.Status().Phase)
}

func TestFrameOfClampsIntoBlock(t *testing.T) {
	b := NewBridge(1000, 100, (&recorder{}).send)
	start := time.Unix(10, 0)
	b.blockStart = start

	assert := assert.New(t)
	assert.Equal(uint32(0), b.frameOf(start.Add(-time.Second), 0))
	assert.Equal(uint32(42), b.frameOf(start.Add(42*time.Millisecond), 0))
	assert.Equal(uint32(99), b.frameOf(start.Add(time.Second), 0))
	assert.Equal(uint32(50), b.frameOf(start.Add(10*time.Millisecond), 50))
}

func TestRunSendsPanicOnShutdown(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(48000, 4800, rec.send)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))

	assert.Len(t, rec.sent, midipanic.NumChannels*midipanic.NumNotes)
	assert.Equal(t, gomidi.NoteOffVelocity(15, 127, 64), rec.sent[len(rec.sent)-1])
}

func TestReceiveDropsWhenFull(t *testing.T) {
	b := NewBridge(1000, 100, (&recorder{}).send)
	for i := 0; i < queueSize+3; i++ {
		b.Receive(gomidi.NoteOn(0, 60, 1), time.Now())
	}
	assert.Equal(t, int64(3), b.dropped.Load())
}

func TestEmitSendsWholeBlockAtOnce(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(1000, 2048, rec.send)
	start := time.Unix(0, 0)
	b.blockStart = start

	b.Receive(gomidi.NoteOn(0, 60, 100), start)
	b.ProcessBlock(start.Add(2048 * time.Millisecond))

	// the note-on is due at frame 1024 but goes out with the block
	assert.Equal(t, []gomidi.Message{gomidi.NoteOn(0, 60, 100)}, rec.sent)
}
