package gpuctl

import (
	"fmt"
	"strings"
)

// Enumerated native values carried inside records. Unknown values are kept
// as-is and print as Type(n).

// DeviceType is the class of an adapter. Values start at 1.
type DeviceType int32

const (
	DeviceTypeGraphics DeviceType = iota + 1
	DeviceTypeSystem
	// DeviceTypeMax is a sentinel and never names a real adapter.
	DeviceTypeMax
)

// Valid reports whether t names a real adapter class.
func (t DeviceType) Valid() bool { return t >= DeviceTypeGraphics && t < DeviceTypeMax }

func (t DeviceType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DeviceType(%d)", int32(t))
	}
	return []string{"graphics", "system"}[t-1]
}

// EngineGroup is the class of an engine group.
type EngineGroup int32

const (
	EngineGroupGT EngineGroup = iota
	EngineGroupRender
	EngineGroupMedia
)

func (g EngineGroup) String() string {
	return enumString("EngineGroup", int64(g), []string{"gt", "render", "media"})
}

// FrequencyDomain is the clock domain a frequency handle controls.
type FrequencyDomain int32

const (
	FrequencyDomainGPU FrequencyDomain = iota
	FrequencyDomainMemory
	FrequencyDomainMedia
)

func (d FrequencyDomain) String() string {
	return enumString("FrequencyDomain", int64(d), []string{"gpu", "memory", "media"})
}

// MemoryType is the technology of a memory module.
type MemoryType int32

const (
	MemoryTypeHBM MemoryType = iota
	MemoryTypeDDR
	MemoryTypeDDR3
	MemoryTypeDDR4
	MemoryTypeDDR5
	MemoryTypeLPDDR
	MemoryTypeLPDDR3
	MemoryTypeLPDDR4
	MemoryTypeLPDDR5
	MemoryTypeGDDR4
	MemoryTypeGDDR5
	MemoryTypeGDDR5X
	MemoryTypeGDDR6
	MemoryTypeGDDR6X
	MemoryTypeGDDR7
	MemoryTypeUnknown
)

var memoryTypeNames = []string{
	"HBM", "DDR", "DDR3", "DDR4", "DDR5", "LPDDR", "LPDDR3", "LPDDR4", "LPDDR5",
	"GDDR4", "GDDR5", "GDDR5X", "GDDR6", "GDDR6X", "GDDR7", "unknown",
}

func (t MemoryType) String() string {
	return enumString("MemoryType", int64(t), memoryTypeNames)
}

// MemoryLocation says whether a module is system or device memory.
type MemoryLocation int32

const (
	MemoryLocationSystem MemoryLocation = iota
	MemoryLocationDevice
)

func (l MemoryLocation) String() string {
	return enumString("MemoryLocation", int64(l), []string{"system", "device"})
}

// TemperatureSensor is the kind of a temperature sensor.
type TemperatureSensor int32

const (
	TemperatureSensorGlobal TemperatureSensor = iota
	TemperatureSensorGPU
	TemperatureSensorMemory
	TemperatureSensorGlobalMin
	TemperatureSensorGPUMin
	TemperatureSensorMemoryMin
)

func (s TemperatureSensor) String() string {
	return enumString("TemperatureSensor", int64(s),
		[]string{"global", "gpu", "memory", "global-min", "gpu-min", "memory-min"})
}

// EccMode is the current or pending ECC state of an adapter.
type EccMode int32

const (
	EccModeDefault EccMode = iota
	EccModeEnabled
	EccModeDisabled
)

func (m EccMode) String() string {
	return enumString("EccMode", int64(m), []string{"default", "enabled", "disabled"})
}

// FanSpeedUnits selects how a fan speed is expressed.
type FanSpeedUnits int32

const (
	FanSpeedUnitsRPM FanSpeedUnits = iota
	FanSpeedUnitsPercent
)

func (u FanSpeedUnits) String() string {
	return enumString("FanSpeedUnits", int64(u), []string{"rpm", "percent"})
}

// SignalStandard is the timing standard of a display mode.
type SignalStandard int32

const (
	SignalStandardUnknown SignalStandard = iota
	SignalStandardCustom
	SignalStandardDMT
	SignalStandardGTF
	SignalStandardCVT
	SignalStandardCTA
)

func (s SignalStandard) String() string {
	return enumString("SignalStandard", int64(s),
		[]string{"unknown", "custom", "DMT", "GTF", "CVT", "CTA"})
}

// ScalingFlags is a bitmask of display scaling types.
type ScalingFlags uint32

const (
	ScalingIdentity               ScalingFlags = 1 << 0
	ScalingCentered               ScalingFlags = 1 << 1
	ScalingStretched              ScalingFlags = 1 << 2
	ScalingAspectRatioCenteredMax ScalingFlags = 1 << 3
	ScalingCustom                 ScalingFlags = 1 << 4
)

func (f ScalingFlags) String() string {
	return flagString(uint32(f), []string{"identity", "centered", "stretched", "aspect-ratio-centered-max", "custom"})
}

// SharpnessFilterFlags is a bitmask of display sharpness filters.
type SharpnessFilterFlags uint32

const (
	SharpnessFilterNonAdaptive SharpnessFilterFlags = 1 << 0
	SharpnessFilterAdaptive    SharpnessFilterFlags = 1 << 1
)

func (f SharpnessFilterFlags) String() string {
	return flagString(uint32(f), []string{"non-adaptive", "adaptive"})
}

// ThrottleReasons is a bitmask explaining why a frequency domain is throttled.
type ThrottleReasons uint32

const (
	ThrottleAveragePowerCap ThrottleReasons = 1 << 0
	ThrottleBurstPowerCap   ThrottleReasons = 1 << 1
	ThrottleCurrentLimit    ThrottleReasons = 1 << 2
	ThrottleThermalLimit    ThrottleReasons = 1 << 3
	ThrottlePSULimit        ThrottleReasons = 1 << 4
	ThrottleSoftwareRange   ThrottleReasons = 1 << 5
	ThrottleHardwareRange   ThrottleReasons = 1 << 6
)

func (r ThrottleReasons) String() string {
	return flagString(uint32(r), []string{"ave-pwr-cap", "burst-pwr-cap", "current-limit",
		"thermal-limit", "psu-alert", "sw-range", "hw-range"})
}

func enumString(typ string, v int64, names []string) string {
	if v >= 0 && v < int64(len(names)) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", typ, v)
}

func flagString(v uint32, names []string) string {
	if v == 0 {
		return "none"
	}
	var parts []string
	for i, name := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
			v &^= 1 << i
		}
	}
	if v != 0 {
		parts = append(parts, fmt.Sprintf("%#x", v))
	}
	return strings.Join(parts, "|")
}
