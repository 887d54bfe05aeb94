package interchange

import (
	"bytes"
	"math"
	"testing"

	"github.com/leodido/gpuctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepared[R gpuctl.Record](t *testing.T, r R) R {
	t.Helper()
	require.NoError(t, gpuctl.Prepare(r))
	return r
}

// samples returns one record of every kind, filled with boundary values.
func samples(t *testing.T) []gpuctl.Record {
	t.Helper()

	dirty := gpuctl.NewFixedString("GSC")
	dirty[len(dirty)-1] = 0xff

	recs := []gpuctl.Record{
		&gpuctl.FirmwareProperties{Name: gpuctl.NewFixedString("GFX"), FirmwareVersion: dirty},
		&gpuctl.DeviceProperties{
			DeviceID: math.MaxUint64, DeviceIDSize: 8, Type: gpuctl.DeviceTypeGraphics, SupportedSubfunctions: 7,
			DriverVersion: 0x1f0000151d, FirmwareVersion: gpuctl.FirmwareRevision{Major: 1, Minor: 0, Build: math.MaxUint64},
			PCIVendorID: 0x8086, PCIDeviceID: 0x56a0, RevID: 8, NumEUsPerSubSlice: 16, NumSubSlicesPerSlice: 4, NumSlices: 8,
			Name: gpuctl.NewFixedString("Intel(R) Arc(TM) A770 Graphics"), AdapterFlags: 1, Frequency: 2400,
			PCISubsysID: math.MaxUint16, PCISubsysVendorID: 0, BDF: gpuctl.AdapterBDF{Bus: math.MaxUint8, Device: 0, Function: 7},
		},
		&gpuctl.PCIProperties{
			Address:               gpuctl.PCIAddress{Domain: math.MaxUint32, Bus: 3, Device: 0, Function: 0},
			MaxSpeed:              gpuctl.PCISpeed{Gen: 4, Width: 16, MaxBandwidth: math.MaxInt64},
			ResizableBARSupported: true,
		},
		&gpuctl.PCIState{Speed: gpuctl.PCISpeed{Gen: -1, Width: -1, MaxBandwidth: -1}},
		&gpuctl.EccProperties{Supported: true, CanControl: false},
		&gpuctl.EccState{Current: gpuctl.EccModeEnabled, Pending: gpuctl.EccModeDisabled},
		&gpuctl.DisplayTiming{
			PixelClock: math.MaxUint64, HActive: math.MaxUint32, VActive: 1080,
			HTotal: 2200, VTotal: 1125, HBlank: 280, VBlank: 45, HSync: 44, VSync: 5,
			RefreshRate: 59.94, SignalStandard: gpuctl.SignalStandardCTA, VicID: math.MaxUint8,
		},
		&gpuctl.BrightnessGet{TargetBrightness: 100000, CurrentBrightness: 0},
		&gpuctl.BrightnessSet{TargetBrightness: 50000, SmoothTransitionTimeMs: 250, Reserved: [4]uint32{1, 2, 3, math.MaxUint32}},
		&gpuctl.ScalingCaps{SupportedScaling: gpuctl.ScalingIdentity | gpuctl.ScalingCentered | gpuctl.ScalingStretched |
			gpuctl.ScalingAspectRatioCenteredMax | gpuctl.ScalingCustom},
		&gpuctl.ScalingSettings{Enable: true, ScalingType: gpuctl.ScalingCustom, CustomScalingX: 1, CustomScalingY: math.MaxUint32, HardwareModeSet: true},
		&gpuctl.SharpnessCaps{SupportedFilters: gpuctl.SharpnessFilterNonAdaptive | gpuctl.SharpnessFilterAdaptive, NumFilterTypes: math.MaxUint8},
		&gpuctl.EngineProperties{Type: gpuctl.EngineGroupMedia},
		&gpuctl.EngineActivity{ActiveTime: math.MaxUint64, Timestamp: 1},
		&gpuctl.FrequencyProperties{Type: gpuctl.FrequencyDomainMemory, CanControl: true, Min: -math.MaxFloat64, Max: math.MaxFloat64},
		&gpuctl.FrequencyState{CurrentVoltage: 0.85, Request: 2100, TDP: 2400, Efficient: math.SmallestNonzeroFloat64, Actual: 2500,
			ThrottleReasons: gpuctl.ThrottleThermalLimit | gpuctl.ThrottlePSULimit},
		&gpuctl.FrequencyRange{Min: 300, Max: 2400},
		&gpuctl.FrequencyThrottleTime{ThrottleTime: 0, Timestamp: math.MaxUint64},
		&gpuctl.MemoryProperties{Type: gpuctl.MemoryTypeGDDR6, Location: gpuctl.MemoryLocationDevice,
			PhysicalSize: math.MaxUint64, BusWidth: math.MinInt32, NumChannels: math.MaxInt32},
		&gpuctl.MemoryState{Free: 0, Total: math.MaxUint64},
		&gpuctl.MemoryBandwidth{MaxBandwidth: 1, Timestamp: 2, ReadCounter: 3, WriteCounter: math.MaxUint64},
		&gpuctl.PowerProperties{CanControl: true, DefaultLimit: 225000, MinLimit: math.MinInt32, MaxLimit: math.MaxInt32},
		&gpuctl.PowerEnergyCounter{Energy: math.MaxUint64, Timestamp: 9000000},
		&gpuctl.PowerLimits{
			Sustained: gpuctl.SustainedLimit{Enabled: true, Power: 225000, Interval: 28000},
			Burst:     gpuctl.BurstLimit{Enabled: false, Power: -1},
			Peak:      gpuctl.PeakLimit{PowerAC: math.MaxInt32, PowerDC: math.MinInt32},
		},
		&gpuctl.TemperatureProperties{Type: gpuctl.TemperatureSensorMemoryMin, MaxTemperature: 105},
		&gpuctl.TemperatureState{Temperature: gpuctl.TemperatureSentinelMin},
		&gpuctl.FanProperties{CanControl: true, SupportedModes: 7, SupportedUnits: 3, MaxRPM: math.MaxInt32, MaxPoints: 16},
		&gpuctl.FanSpeed{Units: gpuctl.FanSpeedUnitsPercent, Speed: -1},
		&gpuctl.LEDProperties{CanControl: true, IsI2C: false, IsPWM: true, HaveRGB: true},
		&gpuctl.LEDState{IsOn: true, PWM: 0.5, Color: gpuctl.Color{Red: 1, Green: 0, Blue: 0.25}},
		&gpuctl.FirmwareComponentProperties{Name: gpuctl.NewFixedString("GSC"), FirmwareVersion: gpuctl.NewFixedString("DG02_1.3267")},
	}
	for _, r := range recs {
		prepared(t, r)
	}
	return recs
}

func TestSamplesCoverEveryRecordKind(t *testing.T) {
	seen := map[gpuctl.RecordKind]bool{}
	for _, r := range samples(t) {
		seen[r.Kind()] = true
	}
	for _, k := range gpuctl.RecordKinds() {
		assert.True(t, seen[k], "no sample for %s", k)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML, CBOR} {
		for _, rec := range samples(t) {
			t.Run(f.String()+"/"+rec.Kind().String(), func(t *testing.T) {
				data, err := Marshal(f, rec)
				require.NoError(t, err)

				got, err := Unmarshal(f, data)
				require.NoError(t, err)
				assert.Equal(t, rec, got)

				// The binary layout must be identical too.
				want, err := gpuctl.Encode(rec)
				require.NoError(t, err)
				raw, err := gpuctl.Encode(got)
				require.NoError(t, err)
				assert.Equal(t, want, raw)
			})
		}
	}
}

func TestTemperatureSentinelsRoundTrip(t *testing.T) {
	for _, f := range []Format{JSON, YAML, CBOR} {
		for _, temp := range []float64{gpuctl.TemperatureSentinelMin, gpuctl.TemperatureSentinelMax} {
			rec := prepared(t, &gpuctl.TemperatureState{Temperature: temp})
			data, err := Marshal(f, rec)
			require.NoError(t, err)
			got, err := Unmarshal(f, data)
			require.NoError(t, err)
			assert.Equal(t, temp, got.(*gpuctl.TemperatureState).Temperature, "%s", f)
		}
	}
}

func TestCBORDeterministic(t *testing.T) {
	rec := prepared(t, &gpuctl.PowerLimits{Sustained: gpuctl.SustainedLimit{Enabled: true, Power: 1}})
	a, err := Marshal(CBOR, rec)
	require.NoError(t, err)
	b, err := Marshal(CBOR, rec)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalNames(t *testing.T) {
	rec := prepared(t, &gpuctl.FirmwareProperties{
		Name:            gpuctl.NewFixedString("GFX"),
		FirmwareVersion: gpuctl.NewFixedString("101.5445"),
	})

	data, err := Marshal(JSON, rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"firmware-properties"`)
	assert.Contains(t, string(data), `"name":"GFX"`)
	assert.Contains(t, string(data), `"firmware_version":"101.5445"`)

	data, err = Marshal(YAML, rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: firmware-properties")
	assert.Contains(t, string(data), "name: GFX")
}

func TestFixedStringHexFallback(t *testing.T) {
	dirty := gpuctl.NewFixedString("abc")
	dirty[50] = 'x'
	rec := prepared(t, &gpuctl.FirmwareProperties{Name: dirty})

	data, err := Marshal(JSON, rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"hex:`)

	got, err := Unmarshal(JSON, data)
	require.NoError(t, err)
	assert.Equal(t, dirty, got.(*gpuctl.FirmwareProperties).Name)
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"json", JSON, `{"kind":"frequency-range","size":24,"version":1,"record":{"size":24,"version":1,"min":1,"max":2,"mid":3}}`},
		{"yaml", YAML, "kind: frequency-range\nsize: 24\nversion: 1\nrecord:\n  size: 24\n  version: 1\n  min: 1\n  max: 2\n  mid: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.format, []byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "mid")
		})
	}
}

func TestUnmarshalEnvelopeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"json size", JSON, `{"kind":"frequency-range","size":32,"version":1,"record":{"size":24,"version":1,"min":1,"max":2}}`},
		{"json version", JSON, `{"kind":"frequency-range","size":24,"version":2,"record":{"size":24,"version":1,"min":1,"max":2}}`},
		{"yaml size", YAML, "kind: frequency-range\nsize: 16\nversion: 1\nrecord: {size: 24, version: 1, min: 1, max: 2}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.format, []byte(tt.data))
			require.ErrorIs(t, err, gpuctl.ErrSchemaMismatch)
		})
	}
}

func TestUnmarshalUnknownKind(t *testing.T) {
	_, err := Unmarshal(JSON, []byte(`{"kind":"warp-drive","size":8,"version":1,"record":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warp-drive")
}

func TestMarshalNil(t *testing.T) {
	_, err := Marshal(JSON, nil)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"yaml", YAML, false},
		{"yml", YAML, false},
		{" cbor ", CBOR, false},
		{"xml", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite(t *testing.T) {
	v := map[string]any{"ok": true}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, v))
	assert.Equal(t, "{\n  \"ok\": true\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, YAML, v))
	assert.Equal(t, "ok: true\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, CBOR, v))
	var got map[string]any
	require.NoError(t, decMode.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, true, got["ok"])

	require.Error(t, Write(&buf, Format(42), v))
}
