package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leodido/gpuctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initArgs() *gpuctl.InitArgs {
	args := &gpuctl.InitArgs{AppVersion: gpuctl.CurrentAPIVersion}
	args.Size = 36
	return args
}

func openBackend(t *testing.T, fx *Fixture) (*Backend, gpuctl.NativeHandle) {
	t.Helper()
	b, err := New(fx)
	require.NoError(t, err)
	require.NoError(t, b.Load())
	var api gpuctl.NativeHandle
	require.Equal(t, gpuctl.StatusSuccess, b.Init(initArgs(), &api))
	require.NotZero(t, api)
	return b, api
}

func enumerate(t *testing.T, b *Backend, parent gpuctl.NativeHandle, kind gpuctl.ResourceKind) []gpuctl.NativeHandle {
	t.Helper()
	var n uint32
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(parent, kind, &n, nil))
	out := make([]gpuctl.NativeHandle, n)
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(parent, kind, &n, out))
	return out
}

func TestDefaultFixture(t *testing.T) {
	fx := Default()
	require.Len(t, fx.Adapters, 1)
	assert.True(t, fx.LevelZero)
	assert.Equal(t, "1.1", fx.APIVersion)

	a := fx.Adapters[0]
	assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, a.Records["ecc-state"].Status)
	assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, a.EnumStatus["fan"])
	assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, a.Resources["display"][0].Records["sharpness-caps"].Status)
	assert.Len(t, a.Resources["engine"], 2)
	assert.Len(t, a.Resources["temperature"], 2)

	_, err := New(fx)
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	t.Run("empty input is an empty host", func(t *testing.T) {
		fx, err := Load(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, fx.Adapters)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader("adapters: []\ngpus: 2\n"))
		require.Error(t, err)
	})

	t.Run("numeric status", func(t *testing.T) {
		fx, err := Load(strings.NewReader("init_status: 0x40000007\n"))
		require.NoError(t, err)
		assert.Equal(t, gpuctl.StatusErrorNotAvailable, fx.InitStatus)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte("level_zero: true\nadapters:\n  - {}\n"), 0o600))

	fx, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, fx.LevelZero)
	assert.Len(t, fx.Adapters, 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		fx   *Fixture
		want string
	}{
		{
			name: "bad api version",
			fx:   &Fixture{APIVersion: "one"},
			want: "api_version",
		},
		{
			name: "unknown resource",
			fx:   &Fixture{Adapters: []Adapter{{Resources: map[string][]Resource{"gpu": {{}}}}}},
			want: "gpu",
		},
		{
			name: "unknown record",
			fx:   &Fixture{Adapters: []Adapter{{Records: map[string]Entry{"warp": {}}}}},
			want: "warp",
		},
		{
			name: "record on wrong resource",
			fx:   &Fixture{Adapters: []Adapter{{Records: map[string]Entry{"memory-state": {}}}}},
			want: "does not apply",
		},
		{
			name: "mismatched go record",
			fx: &Fixture{Adapters: []Adapter{{Records: map[string]Entry{
				"firmware-properties": {Record: &gpuctl.EccState{}},
			}}}},
			want: "ecc-state",
		},
		{
			name: "unknown enum status kind",
			fx:   &Fixture{Adapters: []Adapter{{EnumStatus: map[string]gpuctl.Status{"gpu": gpuctl.StatusErrorUnknown}}}},
			want: "enum_status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.Panics(t, func() { MustNew(&Fixture{APIVersion: "x"}) })
}

func TestInit(t *testing.T) {
	t.Run("level zero missing", func(t *testing.T) {
		b := MustNew(&Fixture{})
		args := initArgs()
		args.Flags = gpuctl.InitUseLevelZero
		var api gpuctl.NativeHandle
		assert.Equal(t, gpuctl.StatusErrorZeLoader, b.Init(args, &api))
		assert.False(t, b.IsOpen())
	})

	t.Run("wrong size", func(t *testing.T) {
		b := MustNew(&Fixture{})
		args := initArgs()
		args.Size = 8
		var api gpuctl.NativeHandle
		assert.Equal(t, gpuctl.StatusErrorInvalidSize, b.Init(args, &api))
	})

	t.Run("reports version", func(t *testing.T) {
		b := MustNew(&Fixture{APIVersion: "1.4"})
		args := initArgs()
		var api gpuctl.NativeHandle
		require.Equal(t, gpuctl.StatusSuccess, b.Init(args, &api))
		assert.Equal(t, gpuctl.MakeAPIVersion(1, 4), args.SupportedVersion)
		assert.Equal(t, gpuctl.StatusErrorAlreadyInitialized, b.Init(args, &api))
	})
}

func TestCloseTwiceIsCounted(t *testing.T) {
	b, api := openBackend(t, &Fixture{})
	assert.Equal(t, gpuctl.StatusSuccess, b.Close(api))
	assert.Equal(t, gpuctl.StatusErrorUninitialized, b.Close(api))

	st := b.Stats()
	assert.Equal(t, 2, st.Closes)
	assert.Equal(t, 1, st.DoubleCloses)
}

func TestEnumerate(t *testing.T) {
	b, api := openBackend(t, Default())

	adapters := enumerate(t, b, api, gpuctl.ResourceAdapter)
	require.Len(t, adapters, 1)

	assert.Len(t, enumerate(t, b, adapters[0], gpuctl.ResourceFrequency), 2)
	assert.Empty(t, enumerate(t, b, adapters[0], gpuctl.ResourceLED))

	var n uint32
	assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, b.Enumerate(adapters[0], gpuctl.ResourceFan, &n, nil))
}

func TestSkew(t *testing.T) {
	b, api := openBackend(t, Default())
	adapters := enumerate(t, b, api, gpuctl.ResourceAdapter)

	b.Skew(gpuctl.ResourceEngine, 1, -2)

	var n uint32
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(adapters[0], gpuctl.ResourceEngine, &n, nil))
	require.EqualValues(t, 2, n)

	out := make([]gpuctl.NativeHandle, n)
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(adapters[0], gpuctl.ResourceEngine, &n, out))
	assert.EqualValues(t, 3, n)

	n = 2
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(adapters[0], gpuctl.ResourceEngine, &n, out))
	assert.EqualValues(t, 0, n)

	// Deltas are consumed; the next fill is accurate again.
	n = 2
	require.Equal(t, gpuctl.StatusSuccess, b.Enumerate(adapters[0], gpuctl.ResourceEngine, &n, out))
	assert.EqualValues(t, 2, n)
}

func TestCall(t *testing.T) {
	b, api := openBackend(t, Default())
	adapter := enumerate(t, b, api, gpuctl.ResourceAdapter)[0]
	mem := enumerate(t, b, adapter, gpuctl.ResourceMemory)[0]

	get := func(h gpuctl.NativeHandle, kind gpuctl.RecordKind) ([]byte, gpuctl.Status) {
		rec, err := gpuctl.NewRecord(kind)
		require.NoError(t, err)
		buf, err := gpuctl.Encode(rec)
		require.NoError(t, err)
		return buf, b.Call(h, kind, gpuctl.ModeGet, buf)
	}

	t.Run("record", func(t *testing.T) {
		buf, st := get(mem, gpuctl.RecordMemoryState)
		require.Equal(t, gpuctl.StatusSuccess, st)
		rec, err := gpuctl.Decode(buf, gpuctl.RecordMemoryState)
		require.NoError(t, err)
		ms := rec.(*gpuctl.MemoryState)
		assert.EqualValues(t, 15032385536, ms.Free)
		assert.EqualValues(t, 16225243136, ms.Total)
	})

	t.Run("fixture status", func(t *testing.T) {
		_, st := get(mem, gpuctl.RecordMemoryBandwidth)
		assert.Equal(t, gpuctl.StatusErrorInsufficientPermissions, st)
	})

	t.Run("missing entry", func(t *testing.T) {
		_, st := get(adapter, gpuctl.RecordEccState)
		assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, st)

		_, st = get(mem, gpuctl.RecordMemoryProperties)
		assert.Equal(t, gpuctl.StatusSuccess, st)

		led := &Fixture{Adapters: []Adapter{{Resources: map[string][]Resource{"led": {{}}}}}}
		lb, lapi := openBackend(t, led)
		la := enumerate(t, lb, lapi, gpuctl.ResourceAdapter)[0]
		lh := enumerate(t, lb, la, gpuctl.ResourceLED)[0]
		rec, err := gpuctl.NewRecord(gpuctl.RecordLEDState)
		require.NoError(t, err)
		buf, err := gpuctl.Encode(rec)
		require.NoError(t, err)
		assert.Equal(t, gpuctl.StatusErrorUnsupportedFeature, lb.Call(lh, gpuctl.RecordLEDState, gpuctl.ModeGet, buf))
	})

	t.Run("wrong resource", func(t *testing.T) {
		_, st := get(adapter, gpuctl.RecordMemoryState)
		assert.Equal(t, gpuctl.StatusErrorInvalidArgument, st)
	})

	t.Run("bad size", func(t *testing.T) {
		buf := make([]byte, 16)
		buf[0] = 16
		buf[4] = 1
		assert.Equal(t, gpuctl.StatusErrorInvalidSize, b.Call(mem, gpuctl.RecordMemoryState, gpuctl.ModeGet, buf))
	})

	t.Run("future version", func(t *testing.T) {
		rec, err := gpuctl.NewRecord(gpuctl.RecordMemoryState)
		require.NoError(t, err)
		rec.RecordHeader().Version = 9
		buf, err := gpuctl.Encode(rec)
		require.NoError(t, err)
		assert.Equal(t, gpuctl.StatusErrorUnsupportedVersion, b.Call(mem, gpuctl.RecordMemoryState, gpuctl.ModeGet, buf))
	})

	t.Run("set then get", func(t *testing.T) {
		freq := enumerate(t, b, adapter, gpuctl.ResourceFrequency)[0]
		want := &gpuctl.FrequencyRange{Min: 500, Max: 1500}
		require.NoError(t, gpuctl.Prepare(want))
		buf, err := gpuctl.Encode(want)
		require.NoError(t, err)
		require.Equal(t, gpuctl.StatusSuccess, b.Call(freq, gpuctl.RecordFrequencyRange, gpuctl.ModeSet, buf))

		buf, st := get(freq, gpuctl.RecordFrequencyRange)
		require.Equal(t, gpuctl.StatusSuccess, st)
		got, err := gpuctl.Decode(buf, gpuctl.RecordFrequencyRange)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, b.Stats().Sets)
	})
}

func TestReplyHeaderOverride(t *testing.T) {
	fx := &Fixture{Adapters: []Adapter{{Records: map[string]Entry{
		"firmware-properties": {
			Record:       &gpuctl.FirmwareProperties{Name: gpuctl.NewFixedString("GFX")},
			ReplyVersion: 7,
		},
	}}}}
	b, api := openBackend(t, fx)
	adapter := enumerate(t, b, api, gpuctl.ResourceAdapter)[0]

	rec, err := gpuctl.NewRecord(gpuctl.RecordFirmwareProperties)
	require.NoError(t, err)
	buf, err := gpuctl.Encode(rec)
	require.NoError(t, err)
	require.Equal(t, gpuctl.StatusSuccess, b.Call(adapter, gpuctl.RecordFirmwareProperties, gpuctl.ModeGet, buf))

	hdr, err := gpuctl.ReadHeader(buf)
	require.NoError(t, err)
	assert.EqualValues(t, 7, hdr.Version)
	_, err = gpuctl.Decode(buf, gpuctl.RecordFirmwareProperties)
	require.ErrorIs(t, err, gpuctl.ErrSchemaMismatch)
}

func TestInterfaces(t *testing.T) {
	b, api := openBackend(t, Default())
	adapter := enumerate(t, b, api, gpuctl.ResourceAdapter)[0]

	var up gpuctl.NativeHandle
	assert.Equal(t, gpuctl.StatusErrorUnsupportedVersion,
		b.QueryInterface(adapter, gpuctl.Interface(gpuctl.ResourceAdapter, 3), &up))

	require.Equal(t, gpuctl.StatusSuccess,
		b.QueryInterface(adapter, gpuctl.Interface(gpuctl.ResourceAdapter, 2), &up))
	assert.Equal(t, 1, b.LiveInterfaces())

	// Upgraded handles answer the same records as their base.
	rec, err := gpuctl.NewRecord(gpuctl.RecordFirmwareProperties)
	require.NoError(t, err)
	buf, err := gpuctl.Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, gpuctl.StatusSuccess, b.Call(up, gpuctl.RecordFirmwareProperties, gpuctl.ModeGet, buf))

	assert.Equal(t, gpuctl.StatusSuccess, b.Release(adapter))
	assert.Equal(t, gpuctl.StatusSuccess, b.Release(up))
	assert.Equal(t, gpuctl.StatusErrorInvalidNullHandle, b.Release(up))
	assert.Equal(t, gpuctl.StatusErrorInvalidNullHandle, b.Call(up, gpuctl.RecordFirmwareProperties, gpuctl.ModeGet, buf))

	st := b.Stats()
	assert.Equal(t, 1, st.Upgrades)
	assert.Equal(t, 1, st.Releases)
	assert.Equal(t, 1, st.DoubleReleases)
	assert.Zero(t, b.LiveInterfaces())
}

func TestClosedBackendRejectsCalls(t *testing.T) {
	b, api := openBackend(t, Default())
	adapter := enumerate(t, b, api, gpuctl.ResourceAdapter)[0]
	require.Equal(t, gpuctl.StatusSuccess, b.Close(api))

	var n uint32
	assert.Equal(t, gpuctl.StatusErrorUninitialized, b.Enumerate(adapter, gpuctl.ResourceEngine, &n, nil))
}
