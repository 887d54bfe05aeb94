package gpuctl

import (
	"fmt"
	"strings"
)

// ResourceKind identifies the class of hardware resource a [Handle] refers to.
type ResourceKind int

const (
	// ResourceAdapter is a physical or virtual GPU. Adapters are enumerated
	// from the session.
	ResourceAdapter ResourceKind = iota
	// ResourceDisplay is a display output attached to an adapter.
	ResourceDisplay
	// ResourceEngine is an engine group (render, media, ...).
	ResourceEngine
	// ResourceFrequency is a frequency domain.
	ResourceFrequency
	// ResourceMemory is a memory module.
	ResourceMemory
	// ResourcePower is a power domain.
	ResourcePower
	// ResourceTemperature is a temperature sensor.
	ResourceTemperature
	// ResourceFan is a fan.
	ResourceFan
	// ResourceLED is an LED.
	ResourceLED
	// ResourceFirmware is a firmware component.
	ResourceFirmware
)

var resourceNames = map[ResourceKind]string{
	ResourceAdapter:     "adapter",
	ResourceDisplay:     "display",
	ResourceEngine:      "engine",
	ResourceFrequency:   "frequency",
	ResourceMemory:      "memory",
	ResourcePower:       "power",
	ResourceTemperature: "temperature",
	ResourceFan:         "fan",
	ResourceLED:         "led",
	ResourceFirmware:    "firmware",
}

func (k ResourceKind) String() string {
	if name, ok := resourceNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ResourceKind(%d)", k)
}

// Parent returns the resource kind whose handles enumerate k.
// Adapters have no parent handle and return false.
func (k ResourceKind) Parent() (ResourceKind, bool) {
	switch k {
	case ResourceDisplay, ResourceEngine, ResourceFrequency, ResourceMemory,
		ResourcePower, ResourceTemperature, ResourceFan, ResourceLED, ResourceFirmware:
		return ResourceAdapter, true
	default:
		return 0, false
	}
}

// MarshalText encodes the kind by name.
func (k ResourceKind) MarshalText() ([]byte, error) {
	if _, ok := resourceNames[k]; !ok {
		return nil, fmt.Errorf("unknown resource kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ResourceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseResourceKind returns the kind with the given name (case-insensitive).
func ParseResourceKind(name string) (ResourceKind, error) {
	for k, n := range resourceNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", name)
}

// ResourceKinds returns every resource kind in enumeration order.
func ResourceKinds() []ResourceKind {
	kinds := make([]ResourceKind, 0, len(resourceNames))
	for k := ResourceAdapter; k <= ResourceFirmware; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// SubResourceKinds returns the resource kinds enumerated per adapter.
func SubResourceKinds() []ResourceKind {
	return ResourceKinds()[1:]
}

// Mode selects the direction of a query.
type Mode uint8

const (
	// ModeGet fills a caller-allocated record from the resource.
	ModeGet Mode = 1 << iota
	// ModeSet applies a caller-populated record to the resource.
	ModeSet
)

func (m Mode) String() string {
	switch m {
	case ModeGet:
		return "get"
	case ModeSet:
		return "set"
	case ModeGet | ModeSet:
		return "get|set"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// InitFlags select optional native backends at session open.
type InitFlags uint32

const (
	// InitUseLevelZero asks the library to route telemetry through the
	// oneAPI Level Zero loader.
	InitUseLevelZero InitFlags = 1 << 0
	// InitFirmwareUpdate enables the firmware update library.
	InitFirmwareUpdate InitFlags = 1 << 1
)

func (f InitFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&InitUseLevelZero != 0 {
		parts = append(parts, "level-zero")
	}
	if f&InitFirmwareUpdate != 0 {
		parts = append(parts, "firmware-update")
	}
	if rest := f &^ (InitUseLevelZero | InitFirmwareUpdate); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// APIVersion packs a major.minor API version as major<<16 | minor.
type APIVersion uint32

// CurrentAPIVersion is the API version this package is written against.
var CurrentAPIVersion = MakeAPIVersion(1, 1)

// MakeAPIVersion packs major and minor into an APIVersion.
func MakeAPIVersion(major, minor uint16) APIVersion {
	return APIVersion(uint32(major)<<16 | uint32(minor))
}

// Major returns the major component.
func (v APIVersion) Major() uint16 { return uint16(v >> 16) }

// Minor returns the minor component.
func (v APIVersion) Minor() uint16 { return uint16(v) }

func (v APIVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// Compatible reports whether other shares v's major version.
func (v APIVersion) Compatible(other APIVersion) bool {
	return v.Major() == other.Major()
}

// State is the lifecycle state of a [Session].
type State int32

const (
	StateUninitialized State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// InterfaceID names an interface generation of a resource kind.
// Version 1 is the base interface every handle supports.
type InterfaceID struct {
	Kind    ResourceKind
	Version uint32
}

// Interface returns the InterfaceID for kind at version.
func Interface(kind ResourceKind, version uint32) InterfaceID {
	return InterfaceID{Kind: kind, Version: version}
}

func (id InterfaceID) String() string {
	return fmt.Sprintf("%s/v%d", id.Kind, id.Version)
}

// Report holds the results of probing every adapter of a session.
type Report struct {
	APIVersion APIVersion      `json:"api_version" yaml:"api_version"`
	Adapters   []AdapterReport `json:"adapters" yaml:"adapters"`
}

// AdapterReport holds the probe results of one adapter and its resources.
type AdapterReport struct {
	Index     int              `json:"index" yaml:"index"`
	Records   []RecordResult   `json:"records,omitempty" yaml:"records,omitempty"`
	Resources []ResourceReport `json:"resources,omitempty" yaml:"resources,omitempty"`
	// Errors lists enumeration failures, keyed by resource kind name.
	Errors map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ResourceReport holds the probe results of one sub-resource.
type ResourceReport struct {
	Kind    ResourceKind   `json:"kind" yaml:"kind"`
	Index   int            `json:"index" yaml:"index"`
	Records []RecordResult `json:"records,omitempty" yaml:"records,omitempty"`
}

// RecordResult is the outcome of one Get query issued by [Probe].
type RecordResult struct {
	Outcome `yaml:",inline"`
	// Error is set when the query produced no outcome (schema mismatch,
	// closed session).
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Violations lists range invariants the returned record breaks.
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Supported reports whether the query succeeded.
func (r RecordResult) Supported() bool {
	return r.Error == "" && r.Result == ResultSuccess
}
