package gpuctl

import (
	"errors"
	"fmt"
)

// probeConfig holds the configuration for a probe operation.
type probeConfig struct {
	resources  map[ResourceKind]bool
	records    map[RecordKind]bool
	recordsSet bool
}

// ProbeOption configures what [Probe] collects.
type ProbeOption func(*probeConfig)

// WithResourceKinds restricts enumeration to the given sub-resource kinds.
// Adapters are always enumerated.
func WithResourceKinds(kinds ...ResourceKind) ProbeOption {
	return func(c *probeConfig) {
		if c.resources == nil {
			c.resources = map[ResourceKind]bool{}
		}
		for _, k := range kinds {
			c.resources[k] = true
		}
	}
}

// WithRecordKinds restricts queries to the given record kinds. The resources
// those records live on are enumerated even when [WithResourceKinds] leaves
// them out. Passing no kinds disables queries.
func WithRecordKinds(kinds ...RecordKind) ProbeOption {
	return func(c *probeConfig) {
		if c.records == nil {
			c.records = map[RecordKind]bool{}
		}
		c.recordsSet = true
		for _, k := range kinds {
			c.records[k] = true
		}
	}
}

// WithAll clears any previous restriction.
func WithAll() ProbeOption {
	return func(c *probeConfig) {
		*c = probeConfig{}
	}
}

func (c *probeConfig) wantRecord(k RecordKind) bool {
	return !c.recordsSet || c.records[k]
}

func (c *probeConfig) wantResource(kind ResourceKind) bool {
	if c.resources == nil && !c.recordsSet {
		return true
	}
	if c.resources[kind] {
		return true
	}
	for k := range c.records {
		if k.Resource() == kind {
			return true
		}
	}
	return false
}

// Probe walks every adapter of s, enumerates its sub-resources and issues a
// Get query for every readable record kind. Unsupported features and failed
// enumerations are recorded in the report; only a session that is not open
// fails the whole probe.
func Probe(s *Session, opts ...ProbeOption) (*Report, error) {
	cfg := &probeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	adapters, err := s.EnumerateAdapters()
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	rep := &Report{
		APIVersion: s.Version(),
		Adapters:   make([]AdapterReport, 0, len(adapters)),
	}
	for i, a := range adapters {
		ar := AdapterReport{Index: i}
		if ar.Records, err = probeRecords(s, a, cfg); err != nil {
			return nil, err
		}
		for _, kind := range SubResourceKinds() {
			if !cfg.wantResource(kind) {
				continue
			}
			handles, err := s.EnumerateResources(a, kind)
			if err != nil {
				if errors.Is(err, ErrSessionClosed) {
					return nil, fmt.Errorf("probe: %w", err)
				}
				if ar.Errors == nil {
					ar.Errors = map[string]string{}
				}
				ar.Errors[kind.String()] = err.Error()
				continue
			}
			for j, h := range handles {
				rr := ResourceReport{Kind: kind, Index: j}
				if rr.Records, err = probeRecords(s, h, cfg); err != nil {
					return nil, err
				}
				ar.Resources = append(ar.Resources, rr)
			}
		}
		rep.Adapters = append(rep.Adapters, ar)
	}
	return rep, nil
}

func probeRecords(s *Session, h Handle, cfg *probeConfig) ([]RecordResult, error) {
	var results []RecordResult
	for _, k := range RecordKindsFor(h.Kind(), ModeGet) {
		if !cfg.wantRecord(k) {
			continue
		}
		out, err := s.Get(h, k)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return nil, fmt.Errorf("probe: %w", err)
			}
			var se *StatusError
			status := StatusSuccess
			if errors.As(err, &se) {
				status = se.Status
			}
			results = append(results, RecordResult{
				Outcome: Outcome{Kind: k, Status: status},
				Error:   err.Error(),
			})
			continue
		}
		rr := RecordResult{Outcome: out}
		if v, ok := out.Record.(Validator); ok && out.OK() {
			rr.Violations = v.Violations()
		}
		results = append(results, rr)
	}
	return results, nil
}
