//go:build windows

package gpuctl

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const controlLibrary = "ControlLib.dll"

// callStyle is how a record buffer is passed to its native entry point.
type callStyle int

const (
	// styleStruct passes a pointer to the whole record.
	styleStruct callStyle = iota
	// stylePayload passes a pointer past the header (scalar out-parameter).
	stylePayload
	// styleFanSpeed passes the units by value and a pointer to the speed.
	styleFanSpeed
	// styleDisplayProperties reads the timing block of the display
	// properties.
	styleDisplayProperties
	// styleDeviceProperties lends the callee a buffer for the adapter LUID.
	styleDeviceProperties
)

type procRef struct {
	get, set string
	style    callStyle
}

var enumerateProcs = map[ResourceKind]string{
	ResourceAdapter:     "ctlEnumerateDevices",
	ResourceDisplay:     "ctlEnumerateDisplayOutputs",
	ResourceEngine:      "ctlEnumEngineGroups",
	ResourceFrequency:   "ctlEnumFrequencyDomains",
	ResourceMemory:      "ctlEnumMemoryModules",
	ResourcePower:       "ctlEnumPowerDomains",
	ResourceTemperature: "ctlEnumTemperatureSensors",
	ResourceFan:         "ctlEnumFans",
	ResourceLED:         "ctlEnumLeds",
	ResourceFirmware:    "ctlEnumerateFirmwareComponents",
}

var callProcs = map[RecordKind]procRef{
	RecordFirmwareProperties:          {get: "ctlGetFirmwareProperties"},
	RecordDeviceProperties:            {get: "ctlGetDeviceProperties", style: styleDeviceProperties},
	RecordPCIProperties:               {get: "ctlPciGetProperties"},
	RecordPCIState:                    {get: "ctlPciGetState"},
	RecordEccProperties:               {get: "ctlEccGetProperties"},
	RecordEccState:                    {get: "ctlEccGetState", set: "ctlEccSetState"},
	RecordDisplayTiming:               {get: "ctlGetDisplayProperties", style: styleDisplayProperties},
	RecordBrightness:                  {get: "ctlGetBrightnessSetting"},
	RecordBrightnessSet:               {set: "ctlSetBrightnessSetting"},
	RecordScalingCaps:                 {get: "ctlGetSupportedScalingCapability"},
	RecordScalingSettings:             {get: "ctlGetCurrentScaling", set: "ctlSetCurrentScaling"},
	RecordSharpnessCaps:               {get: "ctlGetSharpnessCaps"},
	RecordEngineProperties:            {get: "ctlEngineGetProperties"},
	RecordEngineActivity:              {get: "ctlEngineGetActivity"},
	RecordFrequencyProperties:         {get: "ctlFrequencyGetProperties"},
	RecordFrequencyState:              {get: "ctlFrequencyGetState"},
	RecordFrequencyRange:              {get: "ctlFrequencyGetRange", set: "ctlFrequencySetRange"},
	RecordFrequencyThrottleTime:       {get: "ctlFrequencyGetThrottleTime"},
	RecordMemoryProperties:            {get: "ctlMemoryGetProperties"},
	RecordMemoryState:                 {get: "ctlMemoryGetState"},
	RecordMemoryBandwidth:             {get: "ctlMemoryGetBandwidth"},
	RecordPowerProperties:             {get: "ctlPowerGetProperties"},
	RecordPowerEnergyCounter:          {get: "ctlPowerGetEnergyCounter"},
	RecordPowerLimits:                 {get: "ctlPowerGetLimits", set: "ctlPowerSetLimits"},
	RecordTemperatureProperties:       {get: "ctlTemperatureGetProperties"},
	RecordTemperatureState:            {get: "ctlTemperatureGetState", style: stylePayload},
	RecordFanProperties:               {get: "ctlFanGetProperties"},
	RecordFanSpeed:                    {get: "ctlFanGetState", style: styleFanSpeed},
	RecordLEDProperties:               {get: "ctlLedGetProperties"},
	RecordLEDState:                    {get: "ctlLedGetState", set: "ctlLedSetState"},
	RecordFirmwareComponentProperties: {get: "ctlGetFirmwareComponentProperties"},
}

// NativeBackend calls the vendor control library through its exported C API.
type NativeBackend struct {
	dll *windows.LazyDLL

	mu    sync.Mutex
	procs map[string]*windows.LazyProc
}

// NewNativeBackend returns a backend bound to the system control library.
// The library is not loaded until [NativeBackend.Load].
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{
		dll:   windows.NewLazySystemDLL(controlLibrary),
		procs: map[string]*windows.LazyProc{},
	}
}

func (b *NativeBackend) Load() error {
	if err := b.dll.Load(); err != nil {
		return fmt.Errorf("load %s: %w", controlLibrary, err)
	}
	for _, name := range []string{"ctlInit", "ctlClose", "ctlEnumerateDevices"} {
		if err := b.proc(name).Find(); err != nil {
			return fmt.Errorf("%s: %w", controlLibrary, err)
		}
	}
	return nil
}

func (b *NativeBackend) proc(name string) *windows.LazyProc {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.procs[name]
	if !ok {
		p = b.dll.NewProc(name)
		b.procs[name] = p
	}
	return p
}

// call invokes name, reporting NotImplemented when the export is missing.
func (b *NativeBackend) call(name string, args ...uintptr) Status {
	p := b.proc(name)
	if p.Find() != nil {
		return StatusErrorNotImplemented
	}
	r, _, _ := p.Call(args...)
	return Status(uint32(r))
}

func (b *NativeBackend) Init(args *InitArgs, api *NativeHandle) Status {
	return b.call("ctlInit", uintptr(unsafe.Pointer(args)), uintptr(unsafe.Pointer(api)))
}

func (b *NativeBackend) Close(api NativeHandle) Status {
	return b.call("ctlClose", uintptr(api))
}

func (b *NativeBackend) Enumerate(parent NativeHandle, kind ResourceKind, count *uint32, out []NativeHandle) Status {
	name, ok := enumerateProcs[kind]
	if !ok {
		return StatusErrorInvalidArgument
	}
	var first uintptr
	if len(out) > 0 {
		first = uintptr(unsafe.Pointer(&out[0]))
	}
	return b.call(name, uintptr(parent), uintptr(unsafe.Pointer(count)), first)
}

func (b *NativeBackend) Call(h NativeHandle, kind RecordKind, mode Mode, buf []byte) Status {
	ref, ok := callProcs[kind]
	if !ok {
		return StatusErrorNotImplemented
	}
	name := ref.get
	if mode == ModeSet {
		name = ref.set
	}
	if name == "" {
		return StatusErrorInvalidOperationType
	}
	if len(buf) < HeaderSize {
		return StatusErrorInvalidSize
	}
	switch ref.style {
	case stylePayload:
		return b.call(name, uintptr(h), uintptr(unsafe.Pointer(&buf[HeaderSize])))
	case styleFanSpeed:
		units := uintptr(*(*int32)(unsafe.Pointer(&buf[HeaderSize])))
		return b.call(name, uintptr(h), units, uintptr(unsafe.Pointer(&buf[HeaderSize+4])))
	case styleDisplayProperties:
		props := newDisplayProperties()
		st := b.call(name, uintptr(h), uintptr(unsafe.Pointer(&props[0])))
		if st.IsSuccess() {
			copyDisplayTiming(buf, props)
		}
		return st
	case styleDeviceProperties:
		if len(buf) < deviceIDSizeOffset+4 {
			return StatusErrorInvalidSize
		}
		scratch := newDeviceScratch(buf)
		*(*uintptr)(unsafe.Pointer(&scratch[deviceIDOffset])) = uintptr(unsafe.Pointer(&scratch[len(buf)]))
		st := b.call(name, uintptr(h), uintptr(unsafe.Pointer(&scratch[0])))
		if st.IsSuccess() {
			copyDeviceProperties(buf, scratch)
		}
		return st
	default:
		return b.call(name, uintptr(h), uintptr(unsafe.Pointer(&buf[0])))
	}
}

// QueryInterface is not exposed by the flat C API.
func (b *NativeBackend) QueryInterface(NativeHandle, InterfaceID, *NativeHandle) Status {
	return StatusErrorNotImplemented
}

func (b *NativeBackend) Release(NativeHandle) Status { return StatusSuccess }
