// Package gpuctl provides a capability-negotiating session manager for GPU
// control libraries in the style of Intel's Graphics Control Library.
//
// The package owns the lifecycle of a native API session, enumerates adapters
// and their sub-resources with the count-then-fill idiom, exchanges
// fixed-layout, size- and version-stamped records with the native layer, and
// classifies every query into an [Outcome] so callers can tell "this GPU
// lacks the feature" apart from "the call failed".
//
// # API Model
//
// gpuctl exposes two API families:
//   - [Session] for direct resource access: [Session.EnumerateAdapters],
//     [Session.EnumerateResources], [Session.Query] and
//     [Session.TryUpgradeInterface]
//   - [Check]/[Probe] for readiness validation and diagnostics across every
//     adapter, using [Requirement] items and WithX options
//
// Baseline API contract:
//   - [Baseline] returns [RequirementGroup] items consumable by [Check]
//   - output is deterministic (deduplicated, stable order)
//
// # Sessions
//
// A session moves from uninitialized to open to closed. Closing is idempotent
// and invalidates every handle obtained from the session; any later use fails
// with [ErrSessionClosed]:
//
//	s, err := gpuctl.OpenSession(gpuctl.NewNativeBackend(), 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	adapters, err := s.EnumerateAdapters()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range adapters {
//	    domains, _ := s.EnumerateResources(a, gpuctl.ResourceFrequency)
//	    for _, d := range domains {
//	        out, err := s.Get(d, gpuctl.RecordFrequencyRange)
//	        if err != nil {
//	            log.Fatal(err)
//	        }
//	        if !out.OK() {
//	            continue // unsupported on this domain
//	        }
//	        r := out.Record.(*gpuctl.FrequencyRange)
//	        fmt.Printf("%g..%g MHz\n", r.Min, r.Max)
//	    }
//	}
//
// # Quick Check
//
//	if err := gpuctl.Check(s, gpuctl.RecordTemperatureState, gpuctl.RequireResource(gpuctl.ResourceFan)); err != nil {
//	    var ce *gpuctl.CapabilityError
//	    if errors.As(err, &ce) {
//	        log.Fatalf("host not ready: %s: %s", ce.Capability, ce.Reason)
//	    }
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Every error wraps one sentinel of the taxonomy ([ErrInitialization],
// [ErrUnsupportedBackend], [ErrSessionClosed], [ErrTransientEnumeration],
// [ErrSchemaMismatch], [ErrUnsupported], [ErrInsufficientPermissions],
// [ErrInvalidOperation], [ErrTransport]). [StatusError] carries the raw native
// [Status] next to it.
//
// Records carry raw native units (degrees Celsius, milliwatts, MHz); no
// conversion is applied.
package gpuctl
