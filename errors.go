package gpuctl

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by this package wraps exactly one of
// these sentinels, so callers branch with errors.Is.
var (
	// ErrInitialization means the native backend could not be reached.
	ErrInitialization = errors.New("initialization failed")
	// ErrUnsupportedBackend means the requested init flags are not available on this host.
	ErrUnsupportedBackend = errors.New("unsupported backend")
	// ErrSessionClosed is returned for any use of a closed session or its handles.
	ErrSessionClosed = errors.New("session closed")
	// ErrTransientEnumeration means the resource count kept changing between
	// the count and fill calls of an enumeration.
	ErrTransientEnumeration = errors.New("transient enumeration error")
	// ErrSchemaMismatch means a record's size or version was rejected.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnsupported means the resource lacks the requested feature.
	ErrUnsupported = errors.New("unsupported")
	// ErrInsufficientPermissions means the caller lacks the rights for the operation.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	// ErrInvalidOperation means the operation does not apply to the resource or mode.
	ErrInvalidOperation = errors.New("invalid operation for resource")
	// ErrTransport is the catch-all for unclassified native failures.
	ErrTransport = errors.New("transport error")
	// ErrInvalidHandle means the handle is zero, released, or owned by another session.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrUnsupportedPlatform is returned by the native backend on hosts without
	// the vendor control library.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// StatusError reports a failed operation together with the raw native status
// that caused it. Status is zero when the failure was detected before any
// native call.
type StatusError struct {
	Op     string
	Status Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Status != StatusSuccess {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// CapabilityError represents a required capability that no resource on the
// host provides.
type CapabilityError struct {
	Capability string
	Reason     string
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capability %s: %s: %v", e.Capability, e.Reason, e.Err)
	}
	return fmt.Sprintf("capability %s: %s", e.Capability, e.Reason)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
