// Package sim provides an in-memory [gpuctl.Backend] driven by a [Fixture].
//
// The simulated library follows the native calling conventions (two-call
// enumeration, size and version checked record buffers, interface handles
// released on their own) and counts every call so tests can assert that no
// handle is freed twice.
package sim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/leodido/gpuctl"
)

// Stats counts the calls made to a [Backend].
type Stats struct {
	Loads          int
	Inits          int
	Closes         int
	DoubleCloses   int
	Enumerations   int
	Calls          int
	Sets           int
	Upgrades       int
	Releases       int
	DoubleReleases int
}

type entry struct {
	status       gpuctl.Status
	rec          gpuctl.Record
	replyVersion uint8
	replySize    uint32
}

type node struct {
	kind       gpuctl.ResourceKind
	records    map[gpuctl.RecordKind]*entry
	children   map[gpuctl.ResourceKind][]gpuctl.NativeHandle
	enumStatus map[gpuctl.ResourceKind]gpuctl.Status
	interfaces map[uint32]bool

	// Set on interface handles.
	base     gpuctl.NativeHandle
	iface    uint32
	released bool
}

// Backend is a simulated control library. It is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	loadErr   error
	initSt    gpuctl.Status
	levelZero bool
	version   gpuctl.APIVersion

	api   gpuctl.NativeHandle
	nodes map[gpuctl.NativeHandle]*node
	next  gpuctl.NativeHandle
	open  bool

	skews map[gpuctl.ResourceKind][]int
	stats Stats
}

var _ gpuctl.Backend = (*Backend)(nil)

const firstHandle gpuctl.NativeHandle = 0x1000

// New builds a backend from fx. It fails when the fixture names an unknown
// resource or record kind, or holds a record that does not decode.
func New(fx *Fixture) (*Backend, error) {
	if fx == nil {
		fx = &Fixture{}
	}
	version, err := fx.version()
	if err != nil {
		return nil, err
	}
	b := &Backend{
		initSt:    fx.InitStatus,
		levelZero: fx.LevelZero,
		version:   version,
		nodes:     map[gpuctl.NativeHandle]*node{},
		next:      firstHandle,
		skews:     map[gpuctl.ResourceKind][]int{},
	}
	if fx.LoadError != "" {
		b.loadErr = errors.New(fx.LoadError)
	}

	root := b.newNode(gpuctl.ResourceKind(-1))
	b.api = root.handle
	for i, a := range fx.Adapters {
		an, err := b.buildNode(gpuctl.ResourceAdapter, a.Records, a.Interfaces)
		if err != nil {
			return nil, fmt.Errorf("adapter %d: %w", i, err)
		}
		root.children[gpuctl.ResourceAdapter] = append(root.children[gpuctl.ResourceAdapter], an.handle)

		for name, st := range a.EnumStatus {
			kind, err := gpuctl.ParseResourceKind(name)
			if err != nil {
				return nil, fmt.Errorf("adapter %d: enum_status: %w", i, err)
			}
			an.enumStatus[kind] = st
		}
		for name, resources := range a.Resources {
			kind, err := gpuctl.ParseResourceKind(name)
			if err != nil {
				return nil, fmt.Errorf("adapter %d: %w", i, err)
			}
			if parent, ok := kind.Parent(); !ok || parent != gpuctl.ResourceAdapter {
				return nil, fmt.Errorf("adapter %d: %s is not an adapter resource", i, kind)
			}
			for j, r := range resources {
				rn, err := b.buildNode(kind, r.Records, r.Interfaces)
				if err != nil {
					return nil, fmt.Errorf("adapter %d: %s %d: %w", i, kind, j, err)
				}
				an.children[kind] = append(an.children[kind], rn.handle)
			}
		}
	}
	return b, nil
}

// MustNew is New for fixtures known to be valid. It panics on error.
func MustNew(fx *Fixture) *Backend {
	b, err := New(fx)
	if err != nil {
		panic(err)
	}
	return b
}

type handledNode struct {
	*node
	handle gpuctl.NativeHandle
}

func (b *Backend) newNode(kind gpuctl.ResourceKind) handledNode {
	n := &node{
		kind:       kind,
		records:    map[gpuctl.RecordKind]*entry{},
		children:   map[gpuctl.ResourceKind][]gpuctl.NativeHandle{},
		enumStatus: map[gpuctl.ResourceKind]gpuctl.Status{},
		interfaces: map[uint32]bool{},
	}
	h := b.next
	b.next++
	b.nodes[h] = n
	return handledNode{node: n, handle: h}
}

func (b *Backend) buildNode(kind gpuctl.ResourceKind, records map[string]Entry, interfaces []uint32) (handledNode, error) {
	n := b.newNode(kind)
	for name, e := range records {
		rk, err := gpuctl.ParseRecordKind(name)
		if err != nil {
			return n, err
		}
		if rk.Resource() != kind {
			return n, fmt.Errorf("record %s does not apply to %s", rk, kind)
		}
		ent := &entry{status: e.Status, replyVersion: e.ReplyVersion, replySize: e.ReplySize}
		if e.Status == gpuctl.StatusSuccess {
			if ent.rec, err = e.record(rk); err != nil {
				return n, err
			}
		}
		n.records[rk] = ent
	}
	for _, v := range interfaces {
		n.interfaces[v] = true
	}
	return n, nil
}

// Skew makes the next fill calls for kind report the real count plus the
// given deltas, one per call, to simulate resources appearing or vanishing
// between the count and fill calls.
func (b *Backend) Skew(kind gpuctl.ResourceKind, deltas ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skews[kind] = append(b.skews[kind], deltas...)
}

// Stats returns a snapshot of the call counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// LiveInterfaces returns the number of interface handles not yet released.
func (b *Backend) LiveInterfaces() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, nd := range b.nodes {
		if nd.base != 0 && !nd.released {
			n++
		}
	}
	return n
}

// IsOpen reports whether an API handle is currently open.
func (b *Backend) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *Backend) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Loads++
	return b.loadErr
}

func (b *Backend) Init(args *gpuctl.InitArgs, api *gpuctl.NativeHandle) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Inits++

	if args == nil || api == nil {
		return gpuctl.StatusErrorInvalidNullPointer
	}
	if args.Size != uint32(binary.Size(gpuctl.InitArgs{})) {
		return gpuctl.StatusErrorInvalidSize
	}
	if args.Flags&gpuctl.InitUseLevelZero != 0 && !b.levelZero {
		return gpuctl.StatusErrorZeLoader
	}
	if b.initSt != gpuctl.StatusSuccess {
		return b.initSt
	}
	if b.open {
		return gpuctl.StatusErrorAlreadyInitialized
	}
	b.open = true
	args.SupportedVersion = b.version
	*api = b.api
	return gpuctl.StatusSuccess
}

func (b *Backend) Close(api gpuctl.NativeHandle) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Closes++

	if api != b.api {
		return gpuctl.StatusErrorInvalidAPIHandle
	}
	if !b.open {
		b.stats.DoubleCloses++
		return gpuctl.StatusErrorUninitialized
	}
	b.open = false
	return gpuctl.StatusSuccess
}

// lookup must be called with b.mu held.
func (b *Backend) lookup(h gpuctl.NativeHandle) (*node, gpuctl.Status) {
	if !b.open {
		return nil, gpuctl.StatusErrorUninitialized
	}
	if h == 0 {
		return nil, gpuctl.StatusErrorInvalidNullHandle
	}
	n, ok := b.nodes[h]
	if !ok {
		return nil, gpuctl.StatusErrorInvalidArgument
	}
	if n.base != 0 {
		if n.released {
			return nil, gpuctl.StatusErrorInvalidNullHandle
		}
		return b.nodes[n.base], gpuctl.StatusSuccess
	}
	return n, gpuctl.StatusSuccess
}

func (b *Backend) Enumerate(parent gpuctl.NativeHandle, kind gpuctl.ResourceKind, count *uint32, out []gpuctl.NativeHandle) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Enumerations++

	if count == nil {
		return gpuctl.StatusErrorInvalidNullPointer
	}
	n, st := b.lookup(parent)
	if st != gpuctl.StatusSuccess {
		return st
	}
	if st, ok := n.enumStatus[kind]; ok && st != gpuctl.StatusSuccess {
		return st
	}
	children := n.children[kind]
	if out == nil {
		*count = uint32(len(children))
		return gpuctl.StatusSuccess
	}

	actual := len(children)
	if deltas := b.skews[kind]; len(deltas) > 0 {
		actual = max(0, actual+deltas[0])
		b.skews[kind] = deltas[1:]
	}
	limit := min(int(*count), len(out), actual)
	copy(out[:limit], children)
	*count = uint32(actual)
	return gpuctl.StatusSuccess
}

func (b *Backend) Call(h gpuctl.NativeHandle, kind gpuctl.RecordKind, mode gpuctl.Mode, buf []byte) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Calls++

	n, st := b.lookup(h)
	if st != gpuctl.StatusSuccess {
		return st
	}
	if kind.Resource() != n.kind {
		return gpuctl.StatusErrorInvalidArgument
	}
	if kind.Modes()&mode == 0 {
		return gpuctl.StatusErrorInvalidOperationType
	}

	hdr, err := gpuctl.ReadHeader(buf)
	if err != nil || hdr.Size != kind.Size() || uint32(len(buf)) != hdr.Size {
		return gpuctl.StatusErrorInvalidSize
	}
	if hdr.Version == 0 || hdr.Version > kind.SchemaVersion() {
		return gpuctl.StatusErrorUnsupportedVersion
	}

	e, ok := n.records[kind]
	if !ok && mode == gpuctl.ModeGet {
		return gpuctl.StatusErrorUnsupportedFeature
	}
	if ok && e.status != gpuctl.StatusSuccess {
		return e.status
	}

	if mode == gpuctl.ModeSet {
		rec, err := gpuctl.Decode(buf, kind)
		if err != nil {
			return gpuctl.StatusErrorInvalidArgument
		}
		b.stats.Sets++
		if ok {
			e.rec = rec
		} else {
			n.records[kind] = &entry{rec: rec}
		}
		return gpuctl.StatusSuccess
	}

	reply, err := gpuctl.Encode(e.rec)
	if err != nil || len(reply) != len(buf) {
		return gpuctl.StatusErrorDataRead
	}
	copy(buf, reply)
	size, version := hdr.Size, hdr.Version
	if e.replySize != 0 {
		size = e.replySize
	}
	if e.replyVersion != 0 {
		version = e.replyVersion
	}
	binary.LittleEndian.PutUint32(buf[0:4], size)
	buf[4] = version
	return gpuctl.StatusSuccess
}

func (b *Backend) QueryInterface(h gpuctl.NativeHandle, id gpuctl.InterfaceID, out *gpuctl.NativeHandle) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	if out == nil {
		return gpuctl.StatusErrorInvalidNullPointer
	}
	n, st := b.lookup(h)
	if st != gpuctl.StatusSuccess {
		return st
	}
	if id.Kind != n.kind {
		return gpuctl.StatusErrorInvalidArgument
	}
	if !n.interfaces[id.Version] {
		return gpuctl.StatusErrorUnsupportedVersion
	}
	base := h
	if parent := b.nodes[h]; parent.base != 0 {
		base = parent.base
	}
	up := b.newNode(n.kind)
	up.base = base
	up.iface = id.Version
	b.stats.Upgrades++
	*out = up.handle
	return gpuctl.StatusSuccess
}

func (b *Backend) Release(h gpuctl.NativeHandle) gpuctl.Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[h]
	if !ok {
		return gpuctl.StatusErrorInvalidArgument
	}
	if n.base == 0 {
		return gpuctl.StatusSuccess
	}
	if n.released {
		b.stats.DoubleReleases++
		return gpuctl.StatusErrorInvalidNullHandle
	}
	n.released = true
	b.stats.Releases++
	return gpuctl.StatusSuccess
}
