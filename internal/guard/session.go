// AngelaMos | 2026
// session.go

package guard

import (
	"context"
	"sync"

	"github.com/carterperez-dev/templates/admin-dashboard/internal/role"
)

// Lookup is one answer from the identity and directory sources. Record is
// nil for an authenticated caller without a directory entry.
type Lookup struct {
	Authenticated bool
	Record        *role.Permissions
}

// Loader fetches the caller's state. A non-nil error means the caller is
// signed in but the directory could not be read.
type Loader interface {
	Load(ctx context.Context) (Lookup, error)
}

type LoaderFunc func(ctx context.Context) (Lookup, error)

func (f LoaderFunc) Load(ctx context.Context) (Lookup, error) {
	return f(ctx)
}

// Session runs Evaluate over successive lookups. Every lookup is tagged with
// a generation and only the newest one may change the state, so a slow
// earlier lookup can never overwrite a later recheck.
type Session struct {
	loader       Loader
	requirements Requirements

	mu         sync.Mutex
	generation uint64
	inputs     Inputs
	decision   Decision
	observers  []func(Decision)
}

func NewSession(loader Loader, req Requirements) *Session {
	s := &Session{
		loader:       loader,
		requirements: req,
	}
	s.decision = Evaluate(s.inputs, req)
	return s
}

func (s *Session) Start(ctx context.Context) Decision {
	return s.refresh(ctx)
}

// Recheck reloads the caller's record. Calling it repeatedly is safe; only
// the last call's result is kept.
func (s *Session) Recheck(ctx context.Context) Decision {
	return s.refresh(ctx)
}

func (s *Session) State() Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision
}

func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Observe registers fn to be called after every state transition.
func (s *Session) Observe(fn func(Decision)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) refresh(ctx context.Context) Decision {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	rechecking := s.inputs.IdentityLoaded
	if rechecking {
		s.inputs.DirectoryLoading = true
		s.decision = checking()
	}
	s.mu.Unlock()
	if rechecking {
		s.notify()
	}

	lookup, err := s.loader.Load(ctx)

	s.mu.Lock()
	if gen != s.generation {
		current := s.decision
		s.mu.Unlock()
		return current
	}

	s.inputs = Inputs{
		IdentityLoaded: true,
		Authenticated:  lookup.Authenticated,
		DirectoryError: err,
		Record:         lookup.Record,
	}
	if err != nil {
		s.inputs.Authenticated = true
	}
	decision := Evaluate(s.inputs, s.requirements)
	s.decision = decision
	s.mu.Unlock()
	s.notify()

	return decision
}

func (s *Session) notify() {
	s.mu.Lock()
	d := s.decision
	observers := make([]func(Decision), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(d)
	}
}
