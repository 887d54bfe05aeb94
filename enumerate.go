package gpuctl

import "fmt"

// enumerateAttempts bounds the count-then-fill protocol. A count that changes
// between the two calls is retried once.
const enumerateAttempts = 2

// EnumerateAdapters lists the adapters visible to the session.
// No adapters is an empty slice and a nil error.
func (s *Session) EnumerateAdapters() ([]Handle, error) {
	const op = "enumerate adapter"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}
	return s.enumerate(op, s.api, ResourceAdapter)
}

// EnumerateResources lists the resources of kind under parent.
// No resources is an empty slice and a nil error.
func (s *Session) EnumerateResources(parent Handle, kind ResourceKind) ([]Handle, error) {
	op := "enumerate " + kind.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.resolve(op, parent)
	if err != nil {
		return nil, err
	}
	if want, ok := kind.Parent(); !ok || want != parent.kind {
		return nil, &StatusError{Op: op, Err: fmt.Errorf("%w: %s is not enumerated from %s",
			ErrInvalidOperation, kind, parent.kind)}
	}
	return s.enumerate(op, e.native, kind)
}

// enumerate runs the count-then-fill protocol. It must be called with s.mu held.
func (s *Session) enumerate(op string, parent NativeHandle, kind ResourceKind) ([]Handle, error) {
	var counted, filled uint32
	for attempt := 1; attempt <= enumerateAttempts; attempt++ {
		counted = 0
		st := s.backend.Enumerate(parent, kind, &counted, nil)
		if !st.IsSuccess() {
			return s.enumerateFailed(op, kind, st)
		}
		if counted == 0 {
			return []Handle{}, nil
		}

		out := make([]NativeHandle, counted)
		filled = counted
		st = s.backend.Enumerate(parent, kind, &filled, out)
		if !st.IsSuccess() {
			return s.enumerateFailed(op, kind, st)
		}
		if filled == counted {
			handles := make([]Handle, 0, counted)
			for _, n := range out {
				handles = append(handles, s.track(n, kind))
			}
			s.logger.Debug("enumerated", "kind", kind, "count", counted)
			return handles, nil
		}
		s.logger.Debug("resource count changed during enumeration",
			"kind", kind, "attempt", attempt, "counted", counted, "filled", filled)
	}
	return nil, &StatusError{Op: op, Err: fmt.Errorf("%w: %s count changed from %d to %d",
		ErrTransientEnumeration, kind, counted, filled)}
}

// enumerateFailed folds an unsupported resource class into an empty result.
func (s *Session) enumerateFailed(op string, kind ResourceKind, st Status) ([]Handle, error) {
	if st.Result() == ResultUnsupported {
		s.logger.Debug("resource class unsupported", "kind", kind, "status", st)
		return []Handle{}, nil
	}
	s.logger.Warn("enumeration failed", "kind", kind, "status", st)
	return nil, statusError(op, st)
}
