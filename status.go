package gpuctl

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is a raw result code returned by the native control library.
type Status uint32

// Native result codes. Values below StatusSuccessEnd are successes.
const (
	StatusSuccess                      Status = 0x00000000
	StatusSuccessStillOpen             Status = 0x00000001
	StatusSuccessEnd                   Status = 0x0000FFFF
	StatusErrorNotInitialized          Status = 0x40000001
	StatusErrorAlreadyInitialized      Status = 0x40000002
	StatusErrorDeviceLost              Status = 0x40000003
	StatusErrorOutOfHostMemory         Status = 0x40000004
	StatusErrorOutOfDeviceMemory       Status = 0x40000005
	StatusErrorInsufficientPermissions Status = 0x40000006
	StatusErrorNotAvailable            Status = 0x40000007
	StatusErrorUninitialized           Status = 0x40000008
	StatusErrorUnsupportedVersion      Status = 0x40000009
	StatusErrorUnsupportedFeature      Status = 0x4000000A
	StatusErrorInvalidArgument         Status = 0x4000000B
	StatusErrorInvalidAPIHandle        Status = 0x4000000C
	StatusErrorInvalidNullHandle       Status = 0x4000000D
	StatusErrorInvalidNullPointer      Status = 0x4000000E
	StatusErrorInvalidSize             Status = 0x4000000F
	StatusErrorUnsupportedSize         Status = 0x40000010
	StatusErrorUnsupportedImageFormat  Status = 0x40000011
	StatusErrorDataRead                Status = 0x40000012
	StatusErrorDataWrite               Status = 0x40000013
	StatusErrorDataNotFound            Status = 0x40000014
	StatusErrorNotImplemented          Status = 0x40000015
	StatusErrorOSCall                  Status = 0x40000016
	StatusErrorKMDCall                 Status = 0x40000017
	StatusErrorUnload                  Status = 0x40000018
	StatusErrorZeLoader                Status = 0x40000019
	StatusErrorInvalidOperationType    Status = 0x4000001A
	StatusErrorUnknown                 Status = 0x4000FFFF
)

var statusNames = map[Status]string{
	StatusSuccess:                      "CTL_RESULT_SUCCESS",
	StatusSuccessStillOpen:             "CTL_RESULT_SUCCESS_STILL_OPEN_BY_ANOTHER_CALLER",
	StatusErrorNotInitialized:          "CTL_RESULT_ERROR_NOT_INITIALIZED",
	StatusErrorAlreadyInitialized:      "CTL_RESULT_ERROR_ALREADY_INITIALIZED",
	StatusErrorDeviceLost:              "CTL_RESULT_ERROR_DEVICE_LOST",
	StatusErrorOutOfHostMemory:         "CTL_RESULT_ERROR_OUT_OF_HOST_MEMORY",
	StatusErrorOutOfDeviceMemory:       "CTL_RESULT_ERROR_OUT_OF_DEVICE_MEMORY",
	StatusErrorInsufficientPermissions: "CTL_RESULT_ERROR_INSUFFICIENT_PERMISSIONS",
	StatusErrorNotAvailable:            "CTL_RESULT_ERROR_NOT_AVAILABLE",
	StatusErrorUninitialized:           "CTL_RESULT_ERROR_UNINITIALIZED",
	StatusErrorUnsupportedVersion:      "CTL_RESULT_ERROR_UNSUPPORTED_VERSION",
	StatusErrorUnsupportedFeature:      "CTL_RESULT_ERROR_UNSUPPORTED_FEATURE",
	StatusErrorInvalidArgument:         "CTL_RESULT_ERROR_INVALID_ARGUMENT",
	StatusErrorInvalidAPIHandle:        "CTL_RESULT_ERROR_INVALID_API_HANDLE",
	StatusErrorInvalidNullHandle:       "CTL_RESULT_ERROR_INVALID_NULL_HANDLE",
	StatusErrorInvalidNullPointer:      "CTL_RESULT_ERROR_INVALID_NULL_POINTER",
	StatusErrorInvalidSize:             "CTL_RESULT_ERROR_INVALID_SIZE",
	StatusErrorUnsupportedSize:         "CTL_RESULT_ERROR_UNSUPPORTED_SIZE",
	StatusErrorUnsupportedImageFormat:  "CTL_RESULT_ERROR_UNSUPPORTED_IMAGE_FORMAT",
	StatusErrorDataRead:                "CTL_RESULT_ERROR_DATA_READ",
	StatusErrorDataWrite:               "CTL_RESULT_ERROR_DATA_WRITE",
	StatusErrorDataNotFound:            "CTL_RESULT_ERROR_DATA_NOT_FOUND",
	StatusErrorNotImplemented:          "CTL_RESULT_ERROR_NOT_IMPLEMENTED",
	StatusErrorOSCall:                  "CTL_RESULT_ERROR_OS_CALL",
	StatusErrorKMDCall:                 "CTL_RESULT_ERROR_KMD_CALL",
	StatusErrorUnload:                  "CTL_RESULT_ERROR_UNLOAD",
	StatusErrorZeLoader:                "CTL_RESULT_ERROR_ZE_LOADER",
	StatusErrorInvalidOperationType:    "CTL_RESULT_ERROR_INVALID_OPERATION_TYPE",
	StatusErrorUnknown:                 "CTL_RESULT_ERROR_UNKNOWN",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%#08x)", uint32(s))
}

// MarshalText encodes the status by its native name, or as hex when unnamed.
func (s Status) MarshalText() ([]byte, error) {
	if name, ok := statusNames[s]; ok {
		return []byte(name), nil
	}
	return []byte(fmt.Sprintf("%#08x", uint32(s))), nil
}

// UnmarshalText accepts a native name, case-insensitive and with or without
// its CTL_RESULT_ or CTL_RESULT_ERROR_ prefix, or a numeric code.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus parses a status name or numeric code.
func ParseStatus(text string) (Status, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseUint(text, 0, 32); err == nil {
		return Status(n), nil
	}
	want := strings.ToUpper(strings.ReplaceAll(text, "-", "_"))
	candidates := []string{want}
	if !strings.HasPrefix(want, "CTL_RESULT_") {
		candidates = []string{"CTL_RESULT_" + want, "CTL_RESULT_ERROR_" + want}
	}
	for st, name := range statusNames {
		for _, c := range candidates {
			if name == c {
				return st, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown status %q", text)
}

// IsSuccess reports whether s is in the success range.
func (s Status) IsSuccess() bool {
	return s <= StatusSuccessEnd
}

// IsSchemaMismatch reports whether the callee rejected a record's size or version.
func (s Status) IsSchemaMismatch() bool {
	switch s {
	case StatusErrorInvalidSize, StatusErrorUnsupportedSize, StatusErrorUnsupportedVersion:
		return true
	}
	return false
}

// Result classifies a status into a query outcome. Schema mismatches are
// classified as transport errors here; callers test [Status.IsSchemaMismatch]
// first.
func (s Status) Result() Result {
	switch {
	case s.IsSuccess():
		return ResultSuccess
	case s == StatusErrorUnsupportedFeature, s == StatusErrorNotImplemented, s == StatusErrorNotAvailable:
		return ResultUnsupported
	case s == StatusErrorInsufficientPermissions:
		return ResultInsufficientPermissions
	case s == StatusErrorInvalidOperationType:
		return ResultInvalidOperation
	default:
		return ResultTransportError
	}
}

// Result is the classified outcome of a capability query.
// The zero value means no query was issued.
type Result int

const (
	// ResultSuccess means the record was read or applied.
	ResultSuccess Result = iota + 1
	// ResultUnsupported means the resource lacks the feature.
	ResultUnsupported
	// ResultInsufficientPermissions means the caller lacks the rights.
	ResultInsufficientPermissions
	// ResultInvalidOperation means the record or mode does not apply to the resource.
	ResultInvalidOperation
	// ResultTransportError is any other native failure.
	ResultTransportError
)

var resultNames = map[Result]string{
	0:                             "none",
	ResultSuccess:                 "success",
	ResultUnsupported:             "unsupported",
	ResultInsufficientPermissions: "insufficient permissions",
	ResultInvalidOperation:        "invalid operation for resource",
	ResultTransportError:          "transport error",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", r)
}

// MarshalText encodes the result by name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name.
func (r *Result) UnmarshalText(text []byte) error {
	for res, name := range resultNames {
		if name == string(text) {
			*r = res
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", text)
}

// Expected reports whether r is an outcome callers routinely branch on and
// continue past: success, a missing feature, or missing permissions.
func (r Result) Expected() bool {
	return r == ResultSuccess || r == ResultUnsupported || r == ResultInsufficientPermissions
}

// sentinel returns the taxonomy error matching r.
func (r Result) sentinel() error {
	switch r {
	case ResultUnsupported:
		return ErrUnsupported
	case ResultInsufficientPermissions:
		return ErrInsufficientPermissions
	case ResultInvalidOperation:
		return ErrInvalidOperation
	case ResultSuccess:
		return nil
	default:
		return ErrTransport
	}
}

// statusError wraps a non-success native status into the taxonomy.
func statusError(op string, s Status) error {
	if s.IsSchemaMismatch() {
		return &StatusError{Op: op, Status: s, Err: ErrSchemaMismatch}
	}
	return &StatusError{Op: op, Status: s, Err: s.Result().sentinel()}
}
