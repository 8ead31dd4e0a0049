// Package session keeps long-lived processing chains for remote hosts that
// send one block per request.
package session

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/topliner/host"
	"github.com/jsphweid/topliner/midipanic"
	"github.com/jsphweid/topliner/model"
	"github.com/jsphweid/topliner/topliner"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("session not found")

// PanicRelease is how long the panic trigger stays high after the block
// that sent the burst.
const PanicRelease = 250 * time.Millisecond

type Session struct {
	ID string

	mu      sync.Mutex
	engine  *topliner.Engine
	burst   *midipanic.Panic
	chain   *host.Chain
	out     *host.EventBuffer
	pending bool
	release func(f func())
}

func newSession(releaseAfter time.Duration) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		engine:  topliner.New(),
		burst:   midipanic.New(),
		out:     host.NewEventBuffer(64),
		release: debounce.New(releaseAfter),
	}
	s.chain = host.NewChain(s.engine, s.burst)
	return s
}

// Process runs one block and returns a copy of the output.
func (s *Session) Process(numSamples uint32, in []model.Event) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.Reset()
	s.chain.Process(numSamples, in, s.out)
	if s.pending {
		// the burst went out in this block
		s.pending = false
		s.release(s.lower)
	}
	res := make([]model.Event, s.out.Len())
	copy(res, s.out.Events())
	return res
}

// Panic raises the trigger and holds it until the next block has been
// processed. It drops back once no further Panic call has arrived for the
// release period after that block, so repeated calls send one burst.
func (s *Session) Panic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = true
	s.burst.SetTrigger(true)
}

func (s *Session) lower() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return
	}
	s.burst.SetTrigger(false)
}

func (s *Session) Status() topliner.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Status()
}

type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	releaseAfter time.Duration
}

func NewManager(releaseAfter time.Duration) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		releaseAfter: releaseAfter,
	}
}

func (m *Manager) Create() *Session {
	s := newSession(m.releaseAfter)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return errors.Wrap(ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
