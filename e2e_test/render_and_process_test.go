//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jsphweid/topliner/cmd"
	"github.com/jsphweid/topliner/midi"
	"github.com/jsphweid/topliner/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProcessReqBody(blocks ...model.WireBlock) io.Reader {
	data, err := json.Marshal(model.ProcessRequestBody{Blocks: blocks})
	if err != nil {
		panic(err.Error())
	}
	return bytes.NewReader(data)
}

func TestRenderDirectoryE2E(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	// a C major triad rolled over 50ms, then a lone D
	in := model.Timeline{
		{Frame: 0, Event: model.Event{Kind: model.NoteOn, Note: 60, Velocity: 1}},
		{Frame: 1200, Event: model.Event{Kind: model.NoteOn, Note: 64, Velocity: 1}},
		{Frame: 2400, Event: model.Event{Kind: model.NoteOn, Note: 67, Velocity: 1}},
		{Frame: 48000, Event: model.Event{Kind: model.NoteOff, Note: 60}},
		{Frame: 48000, Event: model.Event{Kind: model.NoteOff, Note: 64}},
		{Frame: 48000, Event: model.Event{Kind: model.NoteOff, Note: 67}},
		{Frame: 96000, Event: model.Event{Kind: model.NoteOn, Note: 62, Velocity: 1}},
		{Frame: 120000, Event: model.Event{Kind: model.NoteOff, Note: 62}},
	}
	s, err := midi.FromTimeline(in, 48000, "triad")
	require.NoError(t, err)
	require.NoError(t, midi.WriteMidiFile(filepath.Join(src, "triad.mid"), s))

	require.NoError(t, cmd.Render(src, out))

	written, err := midi.ReadMidiFile(filepath.Join(out, "triad.mid"))
	require.NoError(t, err)

	var notes []uint8
	for _, te := range midi.ToTimeline(written, 44100) {
		if te.Event.Kind == model.NoteOn {
			notes = append(notes, te.Event.Note)
		}
	}
	// at 44.1kHz and 512 frame blocks the window closes in the block the E
	// arrives in, so the E wins the chord and the late G takes over from it
	assert.Equal(t, []uint8{64, 67, 62}, notes)
}

func TestProcessE2E(t *testing.T) {
	body := createProcessReqBody(
		model.WireBlock{NumSamples: 512, Events: []model.WireEvent{
			{Type: "note_on", Timing: 0, Note: 60, Velocity: 0.5},
			{Type: "note_on", Timing: 100, Note: 72, Velocity: 0.7},
		}},
		model.WireBlock{NumSamples: 512},
		model.WireBlock{NumSamples: 512},
		model.WireBlock{NumSamples: 512, Events: []model.WireEvent{
			{Type: "note_on", Timing: 10, Note: 74, Velocity: 0.9},
		}},
	)
	req := httptest.NewRequest(http.MethodPost, "/process", body)
	w := httptest.NewRecorder()
	cmd.HandleProcess(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	var processResponse model.ProcessResponse
	err := json.Unmarshal(respBody, &processResponse)
	if err != nil {
		panic(err.Error())
	}

	assert.Equal(model.ProcessResponse{Blocks: []model.WireBlock{
		{NumSamples: 512, Events: []model.WireEvent{}},
		{NumSamples: 512, Events: []model.WireEvent{}},
		{NumSamples: 512, Events: []model.WireEvent{
			{Type: "note_on", Timing: 0, Note: 72, Velocity: 0.7},
		}},
		{NumSamples: 512, Events: []model.WireEvent{
			{Type: "note_off", Timing: 10, Note: 72, Velocity: 0.9},
			{Type: "note_on", Timing: 10, Note: 74, Velocity: 0.9},
		}},
	}}, processResponse)
}
