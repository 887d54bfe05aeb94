package gpuctl

import "encoding/binary"

// Native structures that do not map one to one onto a record.
const (
	// ctl_display_properties_t carries a ctl_display_timing_t at this offset.
	displayTimingOffset   = 72
	displayPropertiesSize = 200

	// ctl_device_adapter_properties_t points at a caller owned LUID buffer
	// and gives its length right after the pointer.
	deviceIDOffset     = HeaderSize
	deviceIDSizeOffset = deviceIDOffset + 8
	deviceIDSize       = 8
)

// newDisplayProperties returns a ctl_display_properties_t buffer with its
// header set.
func newDisplayProperties() []byte {
	props := make([]byte, displayPropertiesSize)
	binary.LittleEndian.PutUint32(props[0:4], displayPropertiesSize)
	props[4] = 1
	return props
}

// copyDisplayTiming fills the timing record buf from the timing block of
// props. The header of buf is kept.
func copyDisplayTiming(buf, props []byte) {
	timing := props[displayTimingOffset:]
	if len(timing) > len(buf) {
		timing = timing[:len(buf)]
	}
	if len(timing) > HeaderSize {
		copy(buf[HeaderSize:], timing[HeaderSize:])
	}
}

// newDeviceScratch returns a copy of the device properties record buf
// followed by room for the LUID, with the LUID length set. The caller stores
// the address of the LUID area at deviceIDOffset.
func newDeviceScratch(buf []byte) []byte {
	scratch := make([]byte, len(buf)+deviceIDSize)
	copy(scratch, buf)
	binary.LittleEndian.PutUint32(scratch[deviceIDSizeOffset:], deviceIDSize)
	return scratch
}

// copyDeviceProperties copies the reply in scratch back into buf, replacing
// the LUID pointer with the LUID itself.
func copyDeviceProperties(buf, scratch []byte) {
	n := len(buf)
	copy(buf, scratch[:n])
	copy(buf[deviceIDOffset:deviceIDOffset+deviceIDSize], scratch[n:])
}
