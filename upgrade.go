package gpuctl

import "fmt"

// TryUpgradeInterface asks for a handle to a newer interface generation of
// the resource h refers to. The boolean is false when the resource does not
// offer it, which is the common case and not an error. The original handle
// stays valid either way, and the upgraded handle must be released on its
// own with [Session.Release] or by closing the session.
//
// Asking for a version at or below the one h already has returns h.
func (s *Session) TryUpgradeInterface(h Handle, id InterfaceID) (Handle, bool, error) {
	op := "upgrade to " + id.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.resolve(op, h)
	if err != nil {
		return Handle{}, false, err
	}
	if id.Version == 0 {
		return Handle{}, false, &StatusError{Op: op, Err: fmt.Errorf("%w: interface version 0", ErrInvalidOperation)}
	}
	if id.Kind != h.kind {
		s.logger.Debug("interface kind mismatch", "kind", h.kind, "interface", id)
		return Handle{}, false, nil
	}
	if id.Version <= h.iface {
		return h, true, nil
	}

	var native NativeHandle
	st := s.backend.QueryInterface(e.native, id, &native)
	switch {
	case st.IsSuccess():
		if native == 0 {
			return Handle{}, false, &StatusError{Op: op, Status: st, Err: fmt.Errorf("%w: null interface handle", ErrTransport)}
		}
		idx, gen := s.addUpgraded(handleEntry{native: native, kind: h.kind, iface: id.Version})
		s.logger.Debug("interface upgraded", "interface", id)
		return Handle{s: s, idx: idx, gen: gen, kind: h.kind, iface: id.Version}, true, nil
	case st.Result() == ResultUnsupported, st == StatusErrorUnsupportedVersion:
		s.logger.Debug("interface unavailable", "interface", id, "status", st)
		return Handle{}, false, nil
	default:
		s.logger.Warn("interface query failed", "interface", id, "status", st)
		return Handle{}, false, statusError(op, st)
	}
}

// Release drops an upgraded handle and frees its slot for the next upgrade.
// Releasing a base handle, releasing twice, or releasing after the session
// closed are no-ops.
func (s *Session) Release(h Handle) error {
	const op = "release"

	s.mu.Lock()
	defer s.mu.Unlock()

	if h.s == s && s.State() == StateClosed {
		return nil
	}
	e, err := s.lookup(op, h)
	if err != nil {
		return err
	}
	if !e.upgraded || e.released || e.gen != h.gen {
		return nil
	}
	e.released = true
	s.free = append(s.free, h.idx)
	if st := s.backend.Release(e.native); !st.IsSuccess() {
		return statusError(op, st)
	}
	return nil
}
