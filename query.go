package gpuctl

import "fmt"

// Outcome is the classified result of a capability query.
type Outcome struct {
	Kind   RecordKind `json:"kind" yaml:"kind"`
	Result Result     `json:"result" yaml:"result"`
	// Status is the raw native status. It is zero when the query was
	// rejected before reaching the native layer.
	Status Status `json:"status" yaml:"status"`
	// Record holds the decoded record of a successful Get, or the applied
	// record of a successful Set.
	Record Record `json:"record,omitempty" yaml:"record,omitempty"`
}

// OK reports whether the query succeeded.
func (o Outcome) OK() bool { return o.Result == ResultSuccess }

// Err returns nil for a successful outcome, otherwise a *[StatusError]
// wrapping the sentinel that matches the result.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	err := o.Result.sentinel()
	if err == nil {
		err = ErrTransport
	}
	return &StatusError{Op: "query " + o.Kind.String(), Status: o.Status, Err: err}
}

// Query reads (ModeGet) or applies (ModeSet) a record on the resource h.
//
// A missing feature, missing permissions, a record or mode that does not
// apply to the resource, and other native failures are all reported through
// the returned [Outcome] with a nil error. The error is non-nil only when no
// outcome exists: a closed session, an invalid handle, or a schema mismatch
// ([ErrSchemaMismatch]).
//
// For ModeGet, rec may be nil; a prepared record of kind is allocated. When
// rec is provided it is filled in place. For ModeSet, rec must be prepared
// with [Prepare] or [NewRecord].
func (s *Session) Query(h Handle, kind RecordKind, mode Mode, rec Record) (Outcome, error) {
	op := fmt.Sprintf("%s %s", mode, kind)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.resolve(op, h)
	if err != nil {
		return Outcome{}, err
	}
	if !kind.Valid() {
		return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: unknown record kind", ErrInvalidOperation)}
	}
	if mode != ModeGet && mode != ModeSet {
		return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: mode must be get or set", ErrInvalidOperation)}
	}

	out := Outcome{Kind: kind}
	if kind.Resource() != h.kind || kind.Modes()&mode == 0 {
		out.Result = ResultInvalidOperation
		s.logger.Warn("query rejected", "kind", h.kind, "record", kind, "mode", mode, "modes", kind.Modes())
		return out, nil
	}

	if rec == nil {
		if mode == ModeSet {
			return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: set needs a record", ErrInvalidOperation)}
		}
		rec, err = NewRecord(kind)
		if err != nil {
			return Outcome{}, &StatusError{Op: op, Err: err}
		}
	}
	if rec.Kind() != kind {
		return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: record is %s", ErrSchemaMismatch, rec.Kind())}
	}
	allocated := *rec.RecordHeader()
	if allocated.Size != kind.Size() || allocated.Version == 0 || allocated.Version > kind.SchemaVersion() {
		return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: header size %d version %d, want size %d version 1..%d",
			ErrSchemaMismatch, allocated.Size, allocated.Version, kind.Size(), kind.SchemaVersion())}
	}

	buf, err := Encode(rec)
	if err != nil {
		return Outcome{}, &StatusError{Op: op, Err: fmt.Errorf("%w: %w", ErrSchemaMismatch, err)}
	}

	st := s.backend.Call(e.native, kind, mode, buf)
	out.Status = st
	if st.IsSchemaMismatch() {
		s.logger.Warn("record rejected", "record", kind, "status", st)
		return Outcome{}, &StatusError{Op: op, Status: st, Err: ErrSchemaMismatch}
	}
	out.Result = st.Result()
	if !out.OK() {
		s.logOutcome(out, mode)
		return out, nil
	}

	if mode == ModeGet {
		if err := decodeInto(buf, rec, allocated); err != nil {
			s.logger.Warn("decode failed", "record", kind, "error", err)
			return Outcome{}, &StatusError{Op: op, Status: st, Err: err}
		}
	}
	out.Record = rec
	s.logOutcome(out, mode)
	return out, nil
}

// Get reads a fresh record of kind from h.
func (s *Session) Get(h Handle, kind RecordKind) (Outcome, error) {
	return s.Query(h, kind, ModeGet, nil)
}

// Set applies rec to h.
func (s *Session) Set(h Handle, rec Record) (Outcome, error) {
	if rec == nil {
		return Outcome{}, &StatusError{Op: "set", Err: fmt.Errorf("%w: nil record", ErrInvalidOperation)}
	}
	return s.Query(h, rec.Kind(), ModeSet, rec)
}

func (s *Session) logOutcome(o Outcome, mode Mode) {
	attrs := []any{"record", o.Kind, "mode", mode, "result", o.Result}
	if o.Status != StatusSuccess {
		attrs = append(attrs, "status", o.Status)
	}
	if o.Result.Expected() {
		s.logger.Debug("query", attrs...)
		return
	}
	s.logger.Warn("query", attrs...)
}
