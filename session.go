package gpuctl

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session owns the lifecycle of one native API handle and every resource
// handle derived from it. All methods are safe for concurrent use; calls are
// serialized on an internal lock because the native layer gives no
// thread-safety guarantee.
type Session struct {
	backend    Backend
	logger     *slog.Logger
	id         uuid.UUID
	appID      uuid.UUID
	appVersion APIVersion

	state atomic.Int32

	mu      sync.Mutex
	api     NativeHandle
	flags   InitFlags
	version APIVersion
	arena   []handleEntry
	index   map[arenaKey]int
	free    []int
}

// handleEntry is one native handle tracked by the session arena.
// Slots of released upgraded handles are reused; gen tells the occupants
// of a slot apart.
type handleEntry struct {
	native   NativeHandle
	kind     ResourceKind
	iface    uint32
	gen      uint32
	upgraded bool
	released bool
}

type arenaKey struct {
	native NativeHandle
	kind   ResourceKind
}

// Handle is a non-owning reference to a resource of a [Session].
// The zero Handle is invalid. Handles are comparable and become unusable
// once their session is closed.
type Handle struct {
	s     *Session
	idx   int
	gen   uint32
	kind  ResourceKind
	iface uint32
}

// Kind returns the resource kind of h.
func (h Handle) Kind() ResourceKind { return h.kind }

// Interface returns the interface generation h was obtained for.
func (h Handle) Interface() InterfaceID { return Interface(h.kind, h.iface) }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.s == nil }

func (h Handle) String() string {
	if h.s == nil {
		return "handle(nil)"
	}
	return fmt.Sprintf("%s#%d/v%d", h.kind, h.idx, h.iface)
}

// Option configures a [Session].
type Option func(*Session)

// WithLogger sets the session logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithApplicationID sets the application UID sent at init.
// The default is a random UUID.
func WithApplicationID(id uuid.UUID) Option {
	return func(s *Session) { s.appID = id }
}

// WithAppVersion sets the API version the application is written against.
// The default is [CurrentAPIVersion].
func WithAppVersion(v APIVersion) Option {
	return func(s *Session) { s.appVersion = v }
}

// NewSession returns an uninitialized session over backend.
func NewSession(backend Backend, opts ...Option) *Session {
	s := &Session{
		backend:    backend,
		logger:     slog.New(slog.DiscardHandler),
		id:         uuid.New(),
		appID:      uuid.New(),
		appVersion: CurrentAPIVersion,
		index:      map[arenaKey]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id.String())
	return s
}

// OpenSession creates a session over backend and opens it with flags.
func OpenSession(backend Backend, flags InitFlags, opts ...Option) (*Session, error) {
	s := NewSession(backend, opts...)
	if err := s.Open(flags); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Version returns the API version reported by the native library.
// It is zero until the session is open.
func (s *Session) Version() APIVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Flags returns the init flags the session was opened with.
func (s *Session) Flags() InitFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Open initializes the native API. It fails with [ErrInitialization] when
// the library cannot be reached and with [ErrUnsupportedBackend] when flags
// name a backend this host lacks. On failure the session stays
// uninitialized and may be opened again.
func (s *Session) Open(flags InitFlags) error {
	const op = "open session"

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case StateOpen:
		return &StatusError{Op: op, Err: fmt.Errorf("%w: session already open", ErrInvalidOperation)}
	case StateClosed:
		return &StatusError{Op: op, Err: ErrSessionClosed}
	}

	if err := s.backend.Load(); err != nil {
		s.logger.Warn("native library unavailable", "error", err)
		return &StatusError{Op: op, Err: fmt.Errorf("%w: %w", ErrInitialization, err)}
	}

	args := InitArgs{AppVersion: s.appVersion, Flags: flags}
	args.Size = uint32(binary.Size(args))
	copy(args.ApplicationUID[:], s.appID[:])

	var api NativeHandle
	st := s.backend.Init(&args, &api)
	if !st.IsSuccess() {
		s.logger.Warn("init failed", "flags", flags, "status", st)
		return &StatusError{Op: op, Status: st, Err: initError(st, flags)}
	}
	if api == 0 {
		return &StatusError{Op: op, Status: st, Err: fmt.Errorf("%w: null API handle", ErrInitialization)}
	}

	version := args.SupportedVersion
	if version == 0 {
		version = s.appVersion
	}
	if !s.appVersion.Compatible(version) {
		s.backend.Close(api)
		return &StatusError{Op: op, Err: fmt.Errorf("%w: library API %s, application %s",
			ErrUnsupportedBackend, version, s.appVersion)}
	}

	s.api = api
	s.flags = flags
	s.version = version
	s.state.Store(int32(StateOpen))
	s.logger.Debug("session opened", "flags", flags, "version", version)
	return nil
}

func initError(st Status, flags InitFlags) error {
	switch {
	case st == StatusErrorZeLoader && flags&InitUseLevelZero != 0:
		return ErrUnsupportedBackend
	case st == StatusErrorUnsupportedFeature, st == StatusErrorUnsupportedVersion:
		return ErrUnsupportedBackend
	default:
		return ErrInitialization
	}
}

// Close releases every upgraded handle still live, then closes the native
// API handle. Every handle of the session becomes invalid. Closing a session
// that is not open, or a nil session, is a no-op.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != StateOpen {
		return nil
	}

	released := 0
	for i := range s.arena {
		e := &s.arena[i]
		if !e.upgraded || e.released {
			continue
		}
		if st := s.backend.Release(e.native); !st.IsSuccess() {
			s.logger.Warn("release failed", "kind", e.kind, "status", st)
		}
		e.released = true
		released++
	}

	st := s.backend.Close(s.api)
	s.api = 0
	s.arena = nil
	s.index = nil
	s.free = nil
	s.state.Store(int32(StateClosed))
	s.logger.Debug("session closed", "released", released)

	if !st.IsSuccess() {
		return &StatusError{Op: "close session", Status: st, Err: ErrTransport}
	}
	return nil
}

// track returns the handle for a base native handle, reusing the arena slot
// when the same resource was enumerated before.
func (s *Session) track(native NativeHandle, kind ResourceKind) Handle {
	key := arenaKey{native: native, kind: kind}
	if idx, ok := s.index[key]; ok {
		return Handle{s: s, idx: idx, kind: kind, iface: 1}
	}
	idx := s.add(handleEntry{native: native, kind: kind, iface: 1})
	s.index[key] = idx
	return Handle{s: s, idx: idx, kind: kind, iface: 1}
}

func (s *Session) add(e handleEntry) int {
	s.arena = append(s.arena, e)
	return len(s.arena) - 1
}

// addUpgraded stores an upgraded handle, taking the slot of a released one
// when there is any. It returns the slot and its generation.
func (s *Session) addUpgraded(e handleEntry) (int, uint32) {
	e.upgraded = true
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		e.gen = s.arena[idx].gen + 1
		s.arena[idx] = e
		return idx, e.gen
	}
	return s.add(e), e.gen
}

// checkOpen must be called with s.mu held.
func (s *Session) checkOpen(op string) error {
	switch s.State() {
	case StateOpen:
		return nil
	case StateClosed:
		return &StatusError{Op: op, Err: ErrSessionClosed}
	default:
		return &StatusError{Op: op, Err: fmt.Errorf("%w: session not open", ErrInvalidOperation)}
	}
}

// lookup maps h to its arena entry, released or not. It must be called with
// s.mu held.
func (s *Session) lookup(op string, h Handle) (*handleEntry, error) {
	if h.s == nil {
		return nil, &StatusError{Op: op, Err: ErrInvalidHandle}
	}
	if s.State() == StateClosed || h.s.State() == StateClosed {
		return nil, &StatusError{Op: op, Err: ErrSessionClosed}
	}
	if h.s != s {
		return nil, &StatusError{Op: op, Err: fmt.Errorf("%w: handle belongs to another session", ErrInvalidHandle)}
	}
	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	if h.idx < 0 || h.idx >= len(s.arena) {
		return nil, &StatusError{Op: op, Err: ErrInvalidHandle}
	}
	return &s.arena[h.idx], nil
}

// resolve is lookup for handles about to be passed to the backend.
func (s *Session) resolve(op string, h Handle) (*handleEntry, error) {
	e, err := s.lookup(op, h)
	if err != nil {
		return nil, err
	}
	if e.released || e.gen != h.gen {
		return nil, &StatusError{Op: op, Err: fmt.Errorf("%w: handle released", ErrInvalidHandle)}
	}
	return e, nil
}
