package cmd

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/metrics"
	"github.com/jsphweid/topliner/model"
	"github.com/jsphweid/topliner/session"
	"github.com/jsphweid/topliner/topliner"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

var sessions = session.NewManager(session.PanicRelease)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the engine over HTTP",
	Long:  `Serves the top note engine over HTTP, either one request per run of blocks or as long-lived sessions fed one block at a time.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cfg.HTTPAddr)
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("could not write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return s, true
}

// HandleProcess runs every block of the request through a fresh engine.
func HandleProcess(w http.ResponseWriter, r *http.Request) {
	var input model.ProcessRequestBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode request body"))
		return
	}

	engine := topliner.New()
	buf := host.NewEventBuffer(16)
	res := model.ProcessResponse{Blocks: make([]model.WireBlock, 0, len(input.Blocks))}
	for i, b := range input.Blocks {
		in, err := model.EventsFromWire(b)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrapf(err, "block %d", i))
			return
		}
		buf.Reset()
		engine.Process(b.NumSamples, in, buf)
		metrics.ObserveBlock("batch", in, buf.Events())
		res.Blocks = append(res.Blocks, model.BlockToWire(b.NumSamples, buf.Events()))
	}
	writeJSON(w, http.StatusOK, res)
}

func HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := sessions.Create()
	metrics.SetSessions(sessions.Len())
	log.Debug().Str("session", s.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, model.SessionResponse{ID: s.ID})
}

func HandleSessionBlock(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	var b model.WireBlock
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "could not decode request body"))
		return
	}
	in, err := model.EventsFromWire(b)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	out := s.Process(b.NumSamples, in)
	metrics.ObserveBlock("session", in, out)
	writeJSON(w, http.StatusOK, model.BlockToWire(b.NumSamples, out))
}

func HandleSessionPanic(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}
	s.Panic()
	w.WriteHeader(http.StatusAccepted)
}

func HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	metrics.SetSessions(sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func NewRouter() http.Handler {
	metrics.Register()

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/process", HandleProcess).Methods("POST")
	router.HandleFunc("/sessions", HandleCreateSession).Methods("POST")
	router.HandleFunc("/sessions/{id}/blocks", HandleSessionBlock).Methods("POST")
	router.HandleFunc("/sessions/{id}/panic", HandleSessionPanic).Methods("POST")
	router.HandleFunc("/sessions/{id}", HandleDeleteSession).Methods("DELETE")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})
	return c.Handler(router)
}

func serve(addr string) error {
	log.Info().Str("addr", addr).Msg("serving")
	return http.ListenAndServe(addr, NewRouter())
}
