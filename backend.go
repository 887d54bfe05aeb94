package gpuctl

// NativeHandle is an opaque handle owned by a [Backend].
type NativeHandle uintptr

// Backend is the native control library as seen by a [Session].
// Every method returns the raw native status. Implementations need not be
// safe for concurrent use; the session serializes all calls.
type Backend interface {
	// Load makes the library callable. It is called once per Open.
	Load() error
	// Init opens the API and stores its handle in api. The backend writes
	// the version it supports into args.SupportedVersion.
	Init(args *InitArgs, api *NativeHandle) Status
	// Close closes an API handle returned by Init.
	Close(api NativeHandle) Status
	// Enumerate lists the resources of kind under parent (the API handle for
	// adapters). With out nil it stores the count; otherwise it fills at most
	// *count entries and stores the number written.
	Enumerate(parent NativeHandle, kind ResourceKind, count *uint32, out []NativeHandle) Status
	// Call reads (ModeGet) or applies (ModeSet) the record encoded in buf.
	// On ModeGet the backend writes the record, header included, back into buf.
	Call(h NativeHandle, kind RecordKind, mode Mode, buf []byte) Status
	// QueryInterface obtains a handle to a newer interface of h.
	QueryInterface(h NativeHandle, id InterfaceID, out *NativeHandle) Status
	// Release drops a handle obtained by QueryInterface.
	Release(h NativeHandle) Status
}

// InitArgs mirrors the native init arguments.
type InitArgs struct {
	Header
	AppVersion       APIVersion
	Flags            InitFlags
	SupportedVersion APIVersion
	ApplicationUID   [16]byte
}
