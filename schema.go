package gpuctl

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// RecordKind identifies a queryable record.
type RecordKind int

const (
	RecordFirmwareProperties RecordKind = iota
	RecordDeviceProperties
	RecordPCIProperties
	RecordPCIState
	RecordEccProperties
	RecordEccState
	RecordDisplayTiming
	RecordBrightness
	RecordBrightnessSet
	RecordScalingCaps
	RecordScalingSettings
	RecordSharpnessCaps
	RecordEngineProperties
	RecordEngineActivity
	RecordFrequencyProperties
	RecordFrequencyState
	RecordFrequencyRange
	RecordFrequencyThrottleTime
	RecordMemoryProperties
	RecordMemoryState
	RecordMemoryBandwidth
	RecordPowerProperties
	RecordPowerEnergyCounter
	RecordPowerLimits
	RecordTemperatureProperties
	RecordTemperatureState
	RecordFanProperties
	RecordFanSpeed
	RecordLEDProperties
	RecordLEDState
	RecordFirmwareComponentProperties

	recordKindCount
)

// schemaEntry describes one record kind.
type schemaEntry struct {
	name     string
	resource ResourceKind
	version  uint8
	modes    Mode
	new      func() Record
	size     uint32
}

var schema = [recordKindCount]schemaEntry{
	RecordFirmwareProperties:          {name: "firmware-properties", resource: ResourceAdapter, modes: ModeGet, new: func() Record { return &FirmwareProperties{} }},
	RecordDeviceProperties:            {name: "device-properties", resource: ResourceAdapter, modes: ModeGet, new: func() Record { return &DeviceProperties{} }},
	RecordPCIProperties:               {name: "pci-properties", resource: ResourceAdapter, modes: ModeGet, new: func() Record { return &PCIProperties{} }},
	RecordPCIState:                    {name: "pci-state", resource: ResourceAdapter, modes: ModeGet, new: func() Record { return &PCIState{} }},
	RecordEccProperties:               {name: "ecc-properties", resource: ResourceAdapter, modes: ModeGet, new: func() Record { return &EccProperties{} }},
	RecordEccState:                    {name: "ecc-state", resource: ResourceAdapter, modes: ModeGet | ModeSet, new: func() Record { return &EccState{} }},
	RecordDisplayTiming:               {name: "display-timing", resource: ResourceDisplay, modes: ModeGet, new: func() Record { return &DisplayTiming{} }},
	RecordBrightness:                  {name: "brightness", resource: ResourceDisplay, modes: ModeGet, new: func() Record { return &BrightnessGet{} }},
	RecordBrightnessSet:               {name: "brightness-set", resource: ResourceDisplay, modes: ModeSet, new: func() Record { return &BrightnessSet{} }},
	RecordScalingCaps:                 {name: "scaling-caps", resource: ResourceDisplay, modes: ModeGet, new: func() Record { return &ScalingCaps{} }},
	RecordScalingSettings:             {name: "scaling-settings", resource: ResourceDisplay, modes: ModeGet | ModeSet, new: func() Record { return &ScalingSettings{} }},
	RecordSharpnessCaps:               {name: "sharpness-caps", resource: ResourceDisplay, modes: ModeGet, new: func() Record { return &SharpnessCaps{} }},
	RecordEngineProperties:            {name: "engine-properties", resource: ResourceEngine, modes: ModeGet, new: func() Record { return &EngineProperties{} }},
	RecordEngineActivity:              {name: "engine-activity", resource: ResourceEngine, modes: ModeGet, new: func() Record { return &EngineActivity{} }},
	RecordFrequencyProperties:         {name: "frequency-properties", resource: ResourceFrequency, modes: ModeGet, new: func() Record { return &FrequencyProperties{} }},
	RecordFrequencyState:              {name: "frequency-state", resource: ResourceFrequency, modes: ModeGet, new: func() Record { return &FrequencyState{} }},
	RecordFrequencyRange:              {name: "frequency-range", resource: ResourceFrequency, modes: ModeGet | ModeSet, new: func() Record { return &FrequencyRange{} }},
	RecordFrequencyThrottleTime:       {name: "frequency-throttle-time", resource: ResourceFrequency, modes: ModeGet, new: func() Record { return &FrequencyThrottleTime{} }},
	RecordMemoryProperties:            {name: "memory-properties", resource: ResourceMemory, modes: ModeGet, new: func() Record { return &MemoryProperties{} }},
	RecordMemoryState:                 {name: "memory-state", resource: ResourceMemory, modes: ModeGet, new: func() Record { return &MemoryState{} }},
	RecordMemoryBandwidth:             {name: "memory-bandwidth", resource: ResourceMemory, modes: ModeGet, new: func() Record { return &MemoryBandwidth{} }},
	RecordPowerProperties:             {name: "power-properties", resource: ResourcePower, modes: ModeGet, new: func() Record { return &PowerProperties{} }},
	RecordPowerEnergyCounter:          {name: "power-energy-counter", resource: ResourcePower, modes: ModeGet, new: func() Record { return &PowerEnergyCounter{} }},
	RecordPowerLimits:                 {name: "power-limits", resource: ResourcePower, modes: ModeGet | ModeSet, new: func() Record { return &PowerLimits{} }},
	RecordTemperatureProperties:       {name: "temperature-properties", resource: ResourceTemperature, modes: ModeGet, new: func() Record { return &TemperatureProperties{} }},
	RecordTemperatureState:            {name: "temperature-state", resource: ResourceTemperature, modes: ModeGet, new: func() Record { return &TemperatureState{} }},
	RecordFanProperties:               {name: "fan-properties", resource: ResourceFan, modes: ModeGet, new: func() Record { return &FanProperties{} }},
	RecordFanSpeed:                    {name: "fan-speed", resource: ResourceFan, modes: ModeGet, new: func() Record { return &FanSpeed{} }},
	RecordLEDProperties:               {name: "led-properties", resource: ResourceLED, modes: ModeGet, new: func() Record { return &LEDProperties{} }},
	RecordLEDState:                    {name: "led-state", resource: ResourceLED, modes: ModeGet | ModeSet, new: func() Record { return &LEDState{} }},
	RecordFirmwareComponentProperties: {name: "firmware-component-properties", resource: ResourceFirmware, modes: ModeGet, new: func() Record { return &FirmwareComponentProperties{} }},
}

func init() {
	for k := range schema {
		e := &schema[k]
		e.version = 1
		n := binary.Size(e.new())
		if n <= 0 {
			panic(fmt.Sprintf("record %s has no fixed layout", e.name))
		}
		e.size = uint32(n)
	}
}

func (k RecordKind) entry() (*schemaEntry, bool) {
	if k < 0 || k >= recordKindCount {
		return nil, false
	}
	return &schema[k], true
}

func (k RecordKind) String() string {
	if e, ok := k.entry(); ok {
		return e.name
	}
	return fmt.Sprintf("RecordKind(%d)", k)
}

// MarshalText encodes the kind by name.
func (k RecordKind) MarshalText() ([]byte, error) {
	e, ok := k.entry()
	if !ok {
		return nil, fmt.Errorf("unknown record kind %d", int(k))
	}
	return []byte(e.name), nil
}

// UnmarshalText decodes a kind name.
func (k *RecordKind) UnmarshalText(text []byte) error {
	parsed, err := ParseRecordKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseRecordKind returns the kind with the given name (case-insensitive).
func ParseRecordKind(name string) (RecordKind, error) {
	name = strings.TrimSpace(name)
	for k := range schema {
		if strings.EqualFold(schema[k].name, name) {
			return RecordKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown record kind %q", name)
}

// Valid reports whether k is a known record kind.
func (k RecordKind) Valid() bool {
	_, ok := k.entry()
	return ok
}

// Resource returns the resource kind k is queried on.
func (k RecordKind) Resource() ResourceKind {
	if e, ok := k.entry(); ok {
		return e.resource
	}
	return -1
}

// Modes returns the query modes k supports.
func (k RecordKind) Modes() Mode {
	if e, ok := k.entry(); ok {
		return e.modes
	}
	return 0
}

// SchemaVersion returns the schema version this package requests for k.
func (k RecordKind) SchemaVersion() uint8 {
	if e, ok := k.entry(); ok {
		return e.version
	}
	return 0
}

// Size returns the encoded size of k, header included.
func (k RecordKind) Size() uint32 {
	if e, ok := k.entry(); ok {
		return e.size
	}
	return 0
}

// RecordKinds returns every record kind in declaration order.
func RecordKinds() []RecordKind {
	kinds := make([]RecordKind, 0, recordKindCount)
	for k := RecordKind(0); k < recordKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// RecordKindsFor returns the record kinds queried on resource that support mode.
func RecordKindsFor(resource ResourceKind, mode Mode) []RecordKind {
	var kinds []RecordKind
	for _, k := range RecordKinds() {
		if k.Resource() == resource && k.Modes()&mode != 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// RecordKindNames returns the names of every record kind.
func RecordKindNames() []string {
	names := make([]string, 0, recordKindCount)
	for _, k := range RecordKinds() {
		names = append(names, k.String())
	}
	return names
}

// NewRecord returns an empty record of kind k with its header prepared.
func NewRecord(k RecordKind) (Record, error) {
	e, ok := k.entry()
	if !ok {
		return nil, fmt.Errorf("new record: unknown record kind %d", int(k))
	}
	r := e.new()
	if err := Prepare(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Prepare stamps the header of r with the size and schema version of its kind.
// Callers must prepare records they build themselves before a Set query.
func Prepare(r Record) error {
	if r == nil {
		return fmt.Errorf("prepare: nil record")
	}
	e, ok := r.Kind().entry()
	if !ok {
		return fmt.Errorf("prepare: unknown record kind %d", int(r.Kind()))
	}
	h := r.RecordHeader()
	h.Size = e.size
	h.Version = e.version
	return nil
}
