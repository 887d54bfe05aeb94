package gpuctl

import (
	"errors"
	"fmt"
)

// Check validates the specified requirements against the adapters of s and
// returns a *[CapabilityError] for the first unsatisfied requirement, or nil
// if all are met. Only the resources and records the requirements name are
// probed.
func Check(s *Session, required ...Requirement) error {
	rs := normalizeRequirements(required)

	rep, err := Probe(s, rs.probeOptions()...)
	if err != nil {
		return fmt.Errorf("probe capabilities: %w", err)
	}

	for _, k := range rs.records {
		if !k.Valid() {
			return &CapabilityError{Capability: k.String(), Reason: "unknown record kind"}
		}
		if rep.Supported(k) {
			continue
		}
		ce := &CapabilityError{Capability: k.String(), Reason: rep.Diagnose(k)}
		if best, ok := rep.Result(k); ok {
			if best.Error != "" {
				ce.Err = errors.New(best.Error)
			} else {
				ce.Err = best.Err()
			}
		}
		return ce
	}

	for _, kind := range rs.resources {
		if kind == ResourceAdapter {
			if len(rep.Adapters) == 0 {
				return &CapabilityError{Capability: "adapter", Reason: "no adapters found"}
			}
			continue
		}
		if rep.Count(kind) == 0 {
			reason := fmt.Sprintf("no %s resources on any adapter", kind)
			if msg := rep.enumerationError(kind); msg != "" {
				reason = msg
			}
			return &CapabilityError{Capability: kind.String(), Reason: reason}
		}
	}

	for _, id := range rs.interfaces {
		ok, err := anyUpgrades(s, id)
		if err != nil {
			return &CapabilityError{Capability: "interface " + id.String(), Reason: "interface query failed", Err: err}
		}
		if !ok {
			return &CapabilityError{
				Capability: "interface " + id.String(),
				Reason:     fmt.Sprintf("no %s offers interface version %d", id.Kind, id.Version),
				Err:        ErrUnsupported,
			}
		}
	}

	return nil
}

// anyUpgrades reports whether some resource of id.Kind can be upgraded to id.
func anyUpgrades(s *Session, id InterfaceID) (bool, error) {
	adapters, err := s.EnumerateAdapters()
	if err != nil {
		return false, err
	}
	var candidates []Handle
	for _, a := range adapters {
		if id.Kind == ResourceAdapter {
			candidates = append(candidates, a)
			continue
		}
		if _, ok := id.Kind.Parent(); !ok {
			break
		}
		hs, err := s.EnumerateResources(a, id.Kind)
		if err != nil {
			return false, err
		}
		candidates = append(candidates, hs...)
	}
	for _, h := range candidates {
		up, ok, err := s.TryUpgradeInterface(h, id)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if up != h {
			if err := s.Release(up); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return false, nil
}

// Supported reports whether any resource answered a Get of k.
func (r *Report) Supported(k RecordKind) bool {
	best, ok := r.Result(k)
	return ok && best.Supported()
}

// Result returns the most informative result for k across every adapter and
// resource: a success if there is one, otherwise the most actionable failure.
// Returns false if k was never queried.
func (r *Report) Result(k RecordKind) (RecordResult, bool) {
	var best RecordResult
	found := false
	r.each(func(res RecordResult) {
		if res.Kind != k {
			return
		}
		if !found || resultRank(res) < resultRank(best) {
			best = res
			found = true
		}
	})
	return best, found
}

func resultRank(r RecordResult) int {
	if r.Supported() {
		return 0
	}
	if r.Error != "" {
		return 5
	}
	switch r.Result {
	case ResultInsufficientPermissions:
		return 1
	case ResultUnsupported:
		return 2
	case ResultInvalidOperation:
		return 3
	default:
		return 4
	}
}

// Count returns the number of resources of kind across all adapters.
func (r *Report) Count(kind ResourceKind) int {
	if kind == ResourceAdapter {
		return len(r.Adapters)
	}
	n := 0
	for _, a := range r.Adapters {
		for _, res := range a.Resources {
			if res.Kind == kind {
				n++
			}
		}
	}
	return n
}

// Diagnose returns an enriched reason string explaining why a record kind is
// not supported and what the operator can do about it.
func (r *Report) Diagnose(k RecordKind) string {
	if len(r.Adapters) == 0 {
		return "no adapters found; check that a supported GPU and driver are installed"
	}
	best, ok := r.Result(k)
	if !ok {
		if msg := r.enumerationError(k.Resource()); msg != "" {
			return msg
		}
		return fmt.Sprintf("no %s resources on any adapter", k.Resource())
	}
	if best.Error != "" {
		return best.Error
	}
	switch best.Result {
	case ResultUnsupported:
		return fmt.Sprintf("not supported by any %s (%s)", k.Resource(), best.Status)
	case ResultInsufficientPermissions:
		return "insufficient permissions; run as administrator"
	case ResultInvalidOperation:
		return fmt.Sprintf("%s cannot be read from a %s", k, k.Resource())
	case ResultTransportError:
		return fmt.Sprintf("native call failed (%s)", best.Status)
	}
	return "not supported"
}

func (r *Report) enumerationError(kind ResourceKind) string {
	for _, a := range r.Adapters {
		if msg, ok := a.Errors[kind.String()]; ok {
			return msg
		}
	}
	return ""
}

func (r *Report) each(fn func(RecordResult)) {
	for _, a := range r.Adapters {
		for _, res := range a.Records {
			fn(res)
		}
		for _, rr := range a.Resources {
			for _, res := range rr.Records {
				fn(res)
			}
		}
	}
}
