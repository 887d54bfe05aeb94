//go:build !windows

package gpuctl

// NativeBackend is a placeholder on platforms without the vendor control
// library. Load always fails with [ErrUnsupportedPlatform].
type NativeBackend struct{}

// NewNativeBackend returns the platform backend.
func NewNativeBackend() *NativeBackend { return &NativeBackend{} }

func (*NativeBackend) Load() error { return ErrUnsupportedPlatform }

func (*NativeBackend) Init(*InitArgs, *NativeHandle) Status { return StatusErrorNotInitialized }

func (*NativeBackend) Close(NativeHandle) Status { return StatusErrorUninitialized }

func (*NativeBackend) Enumerate(NativeHandle, ResourceKind, *uint32, []NativeHandle) Status {
	return StatusErrorUninitialized
}

func (*NativeBackend) Call(NativeHandle, RecordKind, Mode, []byte) Status {
	return StatusErrorUninitialized
}

func (*NativeBackend) QueryInterface(NativeHandle, InterfaceID, *NativeHandle) Status {
	return StatusErrorUninitialized
}

func (*NativeBackend) Release(NativeHandle) Status { return StatusErrorUninitialized }
