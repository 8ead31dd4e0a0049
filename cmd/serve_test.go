package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jsphweid/topliner/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestProcessSingleNote(t *testing.T) {
	body := model.ProcessRequestBody{Blocks: []model.WireBlock{{
		NumSamples: 2048,
		Events:     []model.WireEvent{{Type: "note_on", Timing: 0, Channel: 0, Note: 60, Velocity: 0.8}},
	}}}
	w := do(t, NewRouter(), http.MethodPost, "/process", body)
	require.Equal(t, http.StatusOK, w.Code)

	var res model.ProcessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, model.ProcessResponse{Blocks: []model.WireBlock{{
		NumSamples: 2048,
		Events:     []model.WireEvent{{Type: "note_on", Timing: 1024, Channel: 0, Note: 60, Velocity: 0.8}},
	}}}, res)
}

func TestProcessRejectsEventOutsideBlock(t *testing.T) {
	body := model.ProcessRequestBody{Blocks: []model.WireBlock{{
		NumSamples: 16,
		Events:     []model.WireEvent{{Type: "note_on", Timing: 16, Note: 60}},
	}}}
	w := do(t, NewRouter(), http.MethodPost, "/process", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.Error, "outside block")
}

func TestProcessRejectsUnknownType(t *testing.T) {
	body := model.ProcessRequestBody{Blocks: []model.WireBlock{{
		NumSamples: 16,
		Events:     []model.WireEvent{{Type: "aftertouch"}},
	}}}
	w := do(t, NewRouter(), http.MethodPost, "/process", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessRejectsOversizedBody(t *testing.T) {
	body := append(bytes.Repeat([]byte(" "), maxBodyBytes+1), "{}"...)
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewReader(body))
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	assert := assert.New(t)
	router := NewRouter()

	w := do(t, router, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	voice := int32(9)
	w = do(t, router, http.MethodPost, "/sessions/"+created.ID+"/blocks", model.WireBlock{
		NumSamples: 1000,
		Events:     []model.WireEvent{{Type: "note_on", Timing: 500, VoiceID: &voice, Channel: 1, Note: 72, Velocity: 0.5}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var block model.WireBlock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &block))
	assert.Empty(block.Events)

	w = do(t, router, http.MethodPost, "/sessions/"+created.ID+"/blocks", model.WireBlock{NumSamples: 1000})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &block))
	assert.Equal([]model.WireEvent{{Type: "note_on", Timing: 524, VoiceID: &voice, Channel: 1, Note: 72, Velocity: 0.5}}, block.Events)

	w = do(t, router, http.MethodPost, "/sessions/"+created.ID+"/panic", nil)
	assert.Equal(http.StatusAccepted, w.Code)

	w = do(t, router, http.MethodDelete, "/sessions/"+created.ID, nil)
	assert.Equal(http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodPost, "/sessions/"+created.ID+"/blocks", model.WireBlock{NumSamples: 1})
	assert.Equal(http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter()
	do(t, router, http.MethodPost, "/process", model.ProcessRequestBody{Blocks: []model.WireBlock{{NumSamples: 8}}})

	w := do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "topliner_http_blocks_total")
}
