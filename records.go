package gpuctl

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// HeaderSize is the encoded size of [Header].
const HeaderSize = 8

// Header prefixes every record exchanged with the native layer.
// Size is the total number of bytes the caller allocated for the record and
// Version is the schema revision the caller asks for.
type Header struct {
	Size    uint32 `json:"size" yaml:"size" cbor:"size"`
	Version uint8  `json:"version" yaml:"version" cbor:"version"`
	_       [3]byte
}

// RecordHeader returns h so embedding records satisfy [Record].
func (h *Header) RecordHeader() *Header { return h }

// Record is a versioned, fixed-layout payload.
type Record interface {
	RecordHeader() *Header
	Kind() RecordKind
}

// Validator is implemented by records that carry range invariants.
type Validator interface {
	// Violations returns a description of every broken invariant.
	Violations() []string
}

// Temperature bounds, in degrees Celsius, outside which a reading is
// considered a sensor fault.
const (
	TemperatureSentinelMin = -50.0
	TemperatureSentinelMax = 150.0
)

// FixedString is a NUL-padded 100 byte string field.
type FixedString [100]byte

// NewFixedString copies s into a FixedString. It panics if s does not fit.
func NewFixedString(s string) FixedString {
	var f FixedString
	if len(s) > len(f) {
		panic(fmt.Sprintf("string of %d bytes exceeds %d", len(s), len(f)))
	}
	copy(f[:], s)
	return f
}

func (f FixedString) String() string {
	if i := bytes.IndexByte(f[:], 0); i >= 0 {
		return string(f[:i])
	}
	return string(f[:])
}

// clean reports whether f is a valid UTF-8 string followed only by NULs.
func (f FixedString) clean() bool {
	s := f.String()
	if !utf8.ValidString(s) || strings.HasPrefix(s, hexPrefix) {
		return false
	}
	for _, b := range f[len(s):] {
		if b != 0 {
			return false
		}
	}
	return true
}

const hexPrefix = "hex:"

// MarshalText encodes f as its string, or as hex when the bytes would not
// survive a text round trip.
func (f FixedString) MarshalText() ([]byte, error) {
	if f.clean() {
		return []byte(f.String()), nil
	}
	return []byte(hexPrefix + hex.EncodeToString(f[:])), nil
}

// UnmarshalText decodes the output of MarshalText.
func (f *FixedString) UnmarshalText(text []byte) error {
	var out FixedString
	if s, ok := strings.CutPrefix(string(text), hexPrefix); ok {
		raw, err := hex.DecodeString(s)
		if err != nil {
			return fmt.Errorf("fixed string: %w", err)
		}
		if len(raw) != len(out) {
			return fmt.Errorf("fixed string: %d bytes, want %d", len(raw), len(out))
		}
		copy(out[:], raw)
		*f = out
		return nil
	}
	if len(text) > len(out) {
		return fmt.Errorf("fixed string: %d bytes exceeds %d", len(text), len(out))
	}
	copy(out[:], text)
	*f = out
	return nil
}

// Adapter records.

// FirmwareProperties holds the adapter firmware name and version.
type FirmwareProperties struct {
	Header          `yaml:",inline"`
	Name            FixedString `json:"name" yaml:"name" cbor:"name"`
	FirmwareVersion FixedString `json:"firmware_version" yaml:"firmware_version" cbor:"firmware_version"`
}

// FirmwareRevision is a three part firmware version.
type FirmwareRevision struct {
	Major uint64 `json:"major" yaml:"major" cbor:"major"`
	Minor uint64 `json:"minor" yaml:"minor" cbor:"minor"`
	Build uint64 `json:"build" yaml:"build" cbor:"build"`
}

// AdapterBDF is the PCI bus, device and function of an adapter.
type AdapterBDF struct {
	Bus      uint8 `json:"bus" yaml:"bus" cbor:"bus"`
	Device   uint8 `json:"device" yaml:"device" cbor:"device"`
	Function uint8 `json:"function" yaml:"function" cbor:"function"`
}

// DeviceProperties identifies an adapter and its driver.
// DeviceID holds the adapter LUID; DeviceIDSize is its length in bytes.
type DeviceProperties struct {
	Header                `yaml:",inline"`
	DeviceID              uint64     `json:"device_id" yaml:"device_id" cbor:"device_id"`
	DeviceIDSize          uint32     `json:"device_id_size" yaml:"device_id_size" cbor:"device_id_size"`
	Type                  DeviceType `json:"type" yaml:"type" cbor:"type"`
	SupportedSubfunctions uint32     `json:"supported_subfunctions" yaml:"supported_subfunctions" cbor:"supported_subfunctions"`
	_                     [4]byte
	DriverVersion         uint64           `json:"driver_version" yaml:"driver_version" cbor:"driver_version"`
	FirmwareVersion       FirmwareRevision `json:"firmware_version" yaml:"firmware_version" cbor:"firmware_version"`
	PCIVendorID           uint32           `json:"pci_vendor_id" yaml:"pci_vendor_id" cbor:"pci_vendor_id"`
	PCIDeviceID           uint32           `json:"pci_device_id" yaml:"pci_device_id" cbor:"pci_device_id"`
	RevID                 uint32           `json:"rev_id" yaml:"rev_id" cbor:"rev_id"`
	NumEUsPerSubSlice     uint32           `json:"num_eus_per_sub_slice" yaml:"num_eus_per_sub_slice" cbor:"num_eus_per_sub_slice"`
	NumSubSlicesPerSlice  uint32           `json:"num_sub_slices_per_slice" yaml:"num_sub_slices_per_slice" cbor:"num_sub_slices_per_slice"`
	NumSlices             uint32           `json:"num_slices" yaml:"num_slices" cbor:"num_slices"`
	Name                  FixedString      `json:"name" yaml:"name" cbor:"name"`
	AdapterFlags          uint32           `json:"adapter_flags" yaml:"adapter_flags" cbor:"adapter_flags"`
	Frequency             uint32           `json:"frequency" yaml:"frequency" cbor:"frequency"`
	PCISubsysID           uint16           `json:"pci_subsys_id" yaml:"pci_subsys_id" cbor:"pci_subsys_id"`
	PCISubsysVendorID     uint16           `json:"pci_subsys_vendor_id" yaml:"pci_subsys_vendor_id" cbor:"pci_subsys_vendor_id"`
	BDF                   AdapterBDF       `json:"bdf" yaml:"bdf" cbor:"bdf"`
	_                     [117]byte
}

// Violations implements [Validator].
func (p *DeviceProperties) Violations() []string {
	var v []string
	if p.DeviceIDSize == 0 {
		v = append(v, "device id size is 0")
	}
	if !p.Type.Valid() {
		v = append(v, fmt.Sprintf("device type %s", p.Type))
	}
	return v
}

// PCIAddress is the PCI location of an adapter.
type PCIAddress struct {
	_        [HeaderSize]byte
	Domain   uint32 `json:"domain" yaml:"domain" cbor:"domain"`
	Bus      uint32 `json:"bus" yaml:"bus" cbor:"bus"`
	Device   uint32 `json:"device" yaml:"device" cbor:"device"`
	Function uint32 `json:"function" yaml:"function" cbor:"function"`
}

// PCISpeed is a PCIe link speed. Gen and Width are -1 when unknown and
// MaxBandwidth is in bytes per second.
type PCISpeed struct {
	_            [HeaderSize]byte
	Gen          int32 `json:"gen" yaml:"gen" cbor:"gen"`
	Width        int32 `json:"width" yaml:"width" cbor:"width"`
	MaxBandwidth int64 `json:"max_bandwidth" yaml:"max_bandwidth" cbor:"max_bandwidth"`
}

// PCIProperties holds the PCI address and maximum link speed of an adapter.
type PCIProperties struct {
	Header                `yaml:",inline"`
	Address               PCIAddress `json:"address" yaml:"address" cbor:"address"`
	MaxSpeed              PCISpeed   `json:"max_speed" yaml:"max_speed" cbor:"max_speed"`
	ResizableBARSupported bool       `json:"resizable_bar_supported" yaml:"resizable_bar_supported" cbor:"resizable_bar_supported"`
	ResizableBAREnabled   bool       `json:"resizable_bar_enabled" yaml:"resizable_bar_enabled" cbor:"resizable_bar_enabled"`
	_                     [6]byte
}

// PCIState holds the current link speed of an adapter.
type PCIState struct {
	Header `yaml:",inline"`
	Speed  PCISpeed `json:"speed" yaml:"speed" cbor:"speed"`
}

// EccProperties says whether an adapter supports ECC and lets it be
// configured.
type EccProperties struct {
	Header     `yaml:",inline"`
	Supported  bool `json:"supported" yaml:"supported" cbor:"supported"`
	CanControl bool `json:"can_control" yaml:"can_control" cbor:"can_control"`
	_          [2]byte
}

// EccState holds the current and pending ECC configuration of an adapter.
type EccState struct {
	Header  `yaml:",inline"`
	Current EccMode `json:"current" yaml:"current" cbor:"current"`
	Pending EccMode `json:"pending" yaml:"pending" cbor:"pending"`
}

// Display records.

// DisplayTiming is the active timing of a display output.
type DisplayTiming struct {
	Header         `yaml:",inline"`
	PixelClock     uint64         `json:"pixel_clock" yaml:"pixel_clock" cbor:"pixel_clock"`
	HActive        uint32         `json:"h_active" yaml:"h_active" cbor:"h_active"`
	VActive        uint32         `json:"v_active" yaml:"v_active" cbor:"v_active"`
	HTotal         uint32         `json:"h_total" yaml:"h_total" cbor:"h_total"`
	VTotal         uint32         `json:"v_total" yaml:"v_total" cbor:"v_total"`
	HBlank         uint32         `json:"h_blank" yaml:"h_blank" cbor:"h_blank"`
	VBlank         uint32         `json:"v_blank" yaml:"v_blank" cbor:"v_blank"`
	HSync          uint32         `json:"h_sync" yaml:"h_sync" cbor:"h_sync"`
	VSync          uint32         `json:"v_sync" yaml:"v_sync" cbor:"v_sync"`
	RefreshRate    float32        `json:"refresh_rate" yaml:"refresh_rate" cbor:"refresh_rate"`
	SignalStandard SignalStandard `json:"signal_standard" yaml:"signal_standard" cbor:"signal_standard"`
	VicID          uint8          `json:"vic_id" yaml:"vic_id" cbor:"vic_id"`
	_              [7]byte
}

// BrightnessGet is the brightness target and current value of a panel, in
// millipercent.
type BrightnessGet struct {
	Header            `yaml:",inline"`
	TargetBrightness  uint32 `json:"target_brightness" yaml:"target_brightness" cbor:"target_brightness"`
	CurrentBrightness uint32 `json:"current_brightness" yaml:"current_brightness" cbor:"current_brightness"`
}

// BrightnessSet requests a panel brightness, in millipercent.
type BrightnessSet struct {
	Header                 `yaml:",inline"`
	TargetBrightness       uint32    `json:"target_brightness" yaml:"target_brightness" cbor:"target_brightness"`
	SmoothTransitionTimeMs uint32    `json:"smooth_transition_time_ms" yaml:"smooth_transition_time_ms" cbor:"smooth_transition_time_ms"`
	Reserved               [4]uint32 `json:"reserved" yaml:"reserved" cbor:"reserved"`
}

// ScalingCaps lists the scaling types a display supports.
type ScalingCaps struct {
	Header           `yaml:",inline"`
	SupportedScaling ScalingFlags `json:"supported_scaling" yaml:"supported_scaling" cbor:"supported_scaling"`
}

// ScalingSettings is the scaling configuration of a display.
type ScalingSettings struct {
	Header          `yaml:",inline"`
	Enable          bool `json:"enable" yaml:"enable" cbor:"enable"`
	_               [3]byte
	ScalingType     ScalingFlags `json:"scaling_type" yaml:"scaling_type" cbor:"scaling_type"`
	CustomScalingX  uint32       `json:"custom_scaling_x" yaml:"custom_scaling_x" cbor:"custom_scaling_x"`
	CustomScalingY  uint32       `json:"custom_scaling_y" yaml:"custom_scaling_y" cbor:"custom_scaling_y"`
	HardwareModeSet bool         `json:"hardware_mode_set" yaml:"hardware_mode_set" cbor:"hardware_mode_set"`
	_               [3]byte
}

// SharpnessCaps lists the sharpness filters a display supports. Filter
// properties are not requested, only their number.
type SharpnessCaps struct {
	Header           `yaml:",inline"`
	SupportedFilters SharpnessFilterFlags `json:"supported_filters" yaml:"supported_filters" cbor:"supported_filters"`
	NumFilterTypes   uint8                `json:"num_filter_types" yaml:"num_filter_types" cbor:"num_filter_types"`
	_                [3]byte
	_                [8]byte
}

// Engine records.

// EngineProperties identifies an engine group.
type EngineProperties struct {
	Header `yaml:",inline"`
	Type   EngineGroup `json:"type" yaml:"type" cbor:"type"`
}

// EngineActivity holds the cumulative active time of an engine group, in
// microseconds.
type EngineActivity struct {
	Header     `yaml:",inline"`
	ActiveTime uint64 `json:"active_time" yaml:"active_time" cbor:"active_time"`
	Timestamp  uint64 `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
}

// Frequency records. Frequencies are in MHz and voltages in volts.

// FrequencyProperties describes a frequency domain.
type FrequencyProperties struct {
	Header     `yaml:",inline"`
	Type       FrequencyDomain `json:"type" yaml:"type" cbor:"type"`
	CanControl bool            `json:"can_control" yaml:"can_control" cbor:"can_control"`
	_          [3]byte
	Min        float64 `json:"min" yaml:"min" cbor:"min"`
	Max        float64 `json:"max" yaml:"max" cbor:"max"`
}

// Violations implements [Validator].
func (p *FrequencyProperties) Violations() []string {
	if p.Min > p.Max {
		return []string{fmt.Sprintf("frequency min %g > max %g", p.Min, p.Max)}
	}
	return nil
}

// FrequencyState is the current operating point of a frequency domain.
// Actual may exceed TDP.
type FrequencyState struct {
	Header          `yaml:",inline"`
	CurrentVoltage  float64         `json:"current_voltage" yaml:"current_voltage" cbor:"current_voltage"`
	Request         float64         `json:"request" yaml:"request" cbor:"request"`
	TDP             float64         `json:"tdp" yaml:"tdp" cbor:"tdp"`
	Efficient       float64         `json:"efficient" yaml:"efficient" cbor:"efficient"`
	Actual          float64         `json:"actual" yaml:"actual" cbor:"actual"`
	ThrottleReasons ThrottleReasons `json:"throttle_reasons" yaml:"throttle_reasons" cbor:"throttle_reasons"`
	_               [4]byte
}

// FrequencyRange is the requested operating range of a frequency domain.
type FrequencyRange struct {
	Header `yaml:",inline"`
	Min    float64 `json:"min" yaml:"min" cbor:"min"`
	Max    float64 `json:"max" yaml:"max" cbor:"max"`
}

// Valid reports whether Min <= Max.
func (r *FrequencyRange) Valid() bool { return r.Min <= r.Max }

// Violations implements [Validator].
func (r *FrequencyRange) Violations() []string {
	if !r.Valid() {
		return []string{fmt.Sprintf("frequency range min %g > max %g", r.Min, r.Max)}
	}
	return nil
}

// FrequencyThrottleTime holds the cumulative throttled time, in microseconds.
type FrequencyThrottleTime struct {
	Header       `yaml:",inline"`
	ThrottleTime uint64 `json:"throttle_time" yaml:"throttle_time" cbor:"throttle_time"`
	Timestamp    uint64 `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
}

// Memory records.

// MemoryProperties describes a memory module.
type MemoryProperties struct {
	Header       `yaml:",inline"`
	Type         MemoryType     `json:"type" yaml:"type" cbor:"type"`
	Location     MemoryLocation `json:"location" yaml:"location" cbor:"location"`
	PhysicalSize uint64         `json:"physical_size" yaml:"physical_size" cbor:"physical_size"`
	BusWidth     int32          `json:"bus_width" yaml:"bus_width" cbor:"bus_width"`
	NumChannels  int32          `json:"num_channels" yaml:"num_channels" cbor:"num_channels"`
}

// MemoryState holds the free and total bytes of a memory module.
type MemoryState struct {
	Header `yaml:",inline"`
	Free   uint64 `json:"free" yaml:"free" cbor:"free"`
	Total  uint64 `json:"total" yaml:"total" cbor:"total"`
}

// Valid reports whether Free <= Total.
func (m *MemoryState) Valid() bool { return m.Free <= m.Total }

// Violations implements [Validator].
func (m *MemoryState) Violations() []string {
	if !m.Valid() {
		return []string{fmt.Sprintf("memory free %d > size %d", m.Free, m.Total)}
	}
	return nil
}

// MemoryBandwidth holds memory bandwidth counters, in bytes.
type MemoryBandwidth struct {
	Header       `yaml:",inline"`
	MaxBandwidth uint64 `json:"max_bandwidth" yaml:"max_bandwidth" cbor:"max_bandwidth"`
	Timestamp    uint64 `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
	ReadCounter  uint64 `json:"read_counter" yaml:"read_counter" cbor:"read_counter"`
	WriteCounter uint64 `json:"write_counter" yaml:"write_counter" cbor:"write_counter"`
}

// Power records. Power values are in milliwatts.

// PowerProperties describes a power domain.
type PowerProperties struct {
	Header       `yaml:",inline"`
	CanControl   bool `json:"can_control" yaml:"can_control" cbor:"can_control"`
	_            [3]byte
	DefaultLimit int32 `json:"default_limit" yaml:"default_limit" cbor:"default_limit"`
	MinLimit     int32 `json:"min_limit" yaml:"min_limit" cbor:"min_limit"`
	MaxLimit     int32 `json:"max_limit" yaml:"max_limit" cbor:"max_limit"`
}

// PowerEnergyCounter is the cumulative energy of a power domain, in
// microjoules.
type PowerEnergyCounter struct {
	Header    `yaml:",inline"`
	Energy    uint64 `json:"energy" yaml:"energy" cbor:"energy"`
	Timestamp uint64 `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
}

// SustainedLimit is the sustained power limit of a domain.
type SustainedLimit struct {
	Enabled  bool `json:"enabled" yaml:"enabled" cbor:"enabled"`
	_        [3]byte
	Power    int32 `json:"power" yaml:"power" cbor:"power"`
	Interval int32 `json:"interval" yaml:"interval" cbor:"interval"`
}

// BurstLimit is the burst power limit of a domain.
type BurstLimit struct {
	Enabled bool `json:"enabled" yaml:"enabled" cbor:"enabled"`
	_       [3]byte
	Power   int32 `json:"power" yaml:"power" cbor:"power"`
}

// PeakLimit is the peak power limit on AC and DC.
type PeakLimit struct {
	PowerAC int32 `json:"power_ac" yaml:"power_ac" cbor:"power_ac"`
	PowerDC int32 `json:"power_dc" yaml:"power_dc" cbor:"power_dc"`
}

// PowerLimits holds the power limits of a domain.
type PowerLimits struct {
	Header    `yaml:",inline"`
	Sustained SustainedLimit `json:"sustained" yaml:"sustained" cbor:"sustained"`
	Burst     BurstLimit     `json:"burst" yaml:"burst" cbor:"burst"`
	Peak      PeakLimit      `json:"peak" yaml:"peak" cbor:"peak"`
}

// Temperature records.

// TemperatureProperties describes a temperature sensor.
type TemperatureProperties struct {
	Header         `yaml:",inline"`
	Type           TemperatureSensor `json:"type" yaml:"type" cbor:"type"`
	_              [4]byte
	MaxTemperature float64 `json:"max_temperature" yaml:"max_temperature" cbor:"max_temperature"`
}

// TemperatureState is a sensor reading in degrees Celsius.
type TemperatureState struct {
	Header      `yaml:",inline"`
	Temperature float64 `json:"temperature" yaml:"temperature" cbor:"temperature"`
}

// InSentinelRange reports whether the reading lies within the plausible
// sensor range.
func (t *TemperatureState) InSentinelRange() bool {
	return t.Temperature >= TemperatureSentinelMin && t.Temperature <= TemperatureSentinelMax
}

// Violations implements [Validator].
func (t *TemperatureState) Violations() []string {
	if !t.InSentinelRange() {
		return []string{fmt.Sprintf("temperature %g outside %g..%g",
			t.Temperature, TemperatureSentinelMin, TemperatureSentinelMax)}
	}
	return nil
}

// Fan records.

// FanProperties describes a fan.
type FanProperties struct {
	Header         `yaml:",inline"`
	CanControl     bool `json:"can_control" yaml:"can_control" cbor:"can_control"`
	_              [3]byte
	SupportedModes uint32 `json:"supported_modes" yaml:"supported_modes" cbor:"supported_modes"`
	SupportedUnits uint32 `json:"supported_units" yaml:"supported_units" cbor:"supported_units"`
	MaxRPM         int32  `json:"max_rpm" yaml:"max_rpm" cbor:"max_rpm"`
	MaxPoints      int32  `json:"max_points" yaml:"max_points" cbor:"max_points"`
}

// FanSpeed is the current speed of a fan in the requested units.
// Units is an input of the query.
type FanSpeed struct {
	Header `yaml:",inline"`
	Units  FanSpeedUnits `json:"units" yaml:"units" cbor:"units"`
	Speed  int32         `json:"speed" yaml:"speed" cbor:"speed"`
}

// LED records.

// LEDProperties describes an LED.
type LEDProperties struct {
	Header     `yaml:",inline"`
	CanControl bool `json:"can_control" yaml:"can_control" cbor:"can_control"`
	IsI2C      bool `json:"is_i2c" yaml:"is_i2c" cbor:"is_i2c"`
	IsPWM      bool `json:"is_pwm" yaml:"is_pwm" cbor:"is_pwm"`
	HaveRGB    bool `json:"have_rgb" yaml:"have_rgb" cbor:"have_rgb"`
}

// Color is an RGB triple with components in 0..1.
type Color struct {
	Red   float64 `json:"red" yaml:"red" cbor:"red"`
	Green float64 `json:"green" yaml:"green" cbor:"green"`
	Blue  float64 `json:"blue" yaml:"blue" cbor:"blue"`
}

// LEDState is the state of an LED.
type LEDState struct {
	Header `yaml:",inline"`
	IsOn   bool `json:"is_on" yaml:"is_on" cbor:"is_on"`
	_      [7]byte
	PWM    float64 `json:"pwm" yaml:"pwm" cbor:"pwm"`
	Color  Color   `json:"color" yaml:"color" cbor:"color"`
}

// Firmware component records.

// FirmwareComponentProperties holds a firmware component's name and version.
type FirmwareComponentProperties struct {
	Header          `yaml:",inline"`
	Name            FixedString `json:"name" yaml:"name" cbor:"name"`
	FirmwareVersion FixedString `json:"firmware_version" yaml:"firmware_version" cbor:"firmware_version"`
}

func (*FirmwareProperties) Kind() RecordKind          { return RecordFirmwareProperties }
func (*DeviceProperties) Kind() RecordKind            { return RecordDeviceProperties }
func (*PCIProperties) Kind() RecordKind               { return RecordPCIProperties }
func (*PCIState) Kind() RecordKind                    { return RecordPCIState }
func (*EccProperties) Kind() RecordKind               { return RecordEccProperties }
func (*EccState) Kind() RecordKind                    { return RecordEccState }
func (*DisplayTiming) Kind() RecordKind               { return RecordDisplayTiming }
func (*BrightnessGet) Kind() RecordKind               { return RecordBrightness }
func (*BrightnessSet) Kind() RecordKind               { return RecordBrightnessSet }
func (*ScalingCaps) Kind() RecordKind                 { return RecordScalingCaps }
func (*ScalingSettings) Kind() RecordKind             { return RecordScalingSettings }
func (*SharpnessCaps) Kind() RecordKind               { return RecordSharpnessCaps }
func (*EngineProperties) Kind() RecordKind            { return RecordEngineProperties }
func (*EngineActivity) Kind() RecordKind              { return RecordEngineActivity }
func (*FrequencyProperties) Kind() RecordKind         { return RecordFrequencyProperties }
func (*FrequencyState) Kind() RecordKind              { return RecordFrequencyState }
func (*FrequencyRange) Kind() RecordKind              { return RecordFrequencyRange }
func (*FrequencyThrottleTime) Kind() RecordKind       { return RecordFrequencyThrottleTime }
func (*MemoryProperties) Kind() RecordKind            { return RecordMemoryProperties }
func (*MemoryState) Kind() RecordKind                 { return RecordMemoryState }
func (*MemoryBandwidth) Kind() RecordKind             { return RecordMemoryBandwidth }
func (*PowerProperties) Kind() RecordKind             { return RecordPowerProperties }
func (*PowerEnergyCounter) Kind() RecordKind          { return RecordPowerEnergyCounter }
func (*PowerLimits) Kind() RecordKind                 { return RecordPowerLimits }
func (*TemperatureProperties) Kind() RecordKind       { return RecordTemperatureProperties }
func (*TemperatureState) Kind() RecordKind            { return RecordTemperatureState }
func (*FanProperties) Kind() RecordKind               { return RecordFanProperties }
func (*FanSpeed) Kind() RecordKind                    { return RecordFanSpeed }
func (*LEDProperties) Kind() RecordKind               { return RecordLEDProperties }
func (*LEDState) Kind() RecordKind                    { return RecordLEDState }
func (*FirmwareComponentProperties) Kind() RecordKind { return RecordFirmwareComponentProperties }
