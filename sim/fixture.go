package sim

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/leodido/gpuctl"
	"gopkg.in/yaml.v3"
)

// Fixture describes a simulated host.
type Fixture struct {
	// LoadError makes Load fail with this message, as on a host without the
	// control library.
	LoadError string `yaml:"load_error,omitempty"`
	// InitStatus is returned by Init when non-zero.
	InitStatus gpuctl.Status `yaml:"init_status,omitempty"`
	// LevelZero reports whether the Level Zero loader is installed.
	LevelZero bool `yaml:"level_zero,omitempty"`
	// APIVersion is the library version, as "major.minor".
	// Empty means the version this package is built against.
	APIVersion string    `yaml:"api_version,omitempty"`
	Adapters   []Adapter `yaml:"adapters"`
}

// Adapter describes one simulated adapter.
type Adapter struct {
	// Records maps record kind names to their reply.
	Records map[string]Entry `yaml:"records,omitempty"`
	// Resources maps resource kind names to the resources of that kind.
	Resources map[string][]Resource `yaml:"resources,omitempty"`
	// EnumStatus fails the enumeration of a resource kind with a status.
	EnumStatus map[string]gpuctl.Status `yaml:"enum_status,omitempty"`
	// Interfaces lists the interface versions above 1 the adapter offers.
	Interfaces []uint32 `yaml:"interfaces,omitempty"`
}

// Resource describes one simulated sub-resource.
type Resource struct {
	Records    map[string]Entry `yaml:"records,omitempty"`
	Interfaces []uint32         `yaml:"interfaces,omitempty"`
}

// Entry is the reply to a record query. A record kind without an entry is
// answered with CTL_RESULT_ERROR_UNSUPPORTED_FEATURE.
type Entry struct {
	// Status, when non-zero, is returned instead of the record.
	Status gpuctl.Status `yaml:"status,omitempty"`
	// Value holds the record fields in YAML.
	Value yaml.Node `yaml:"value,omitempty"`
	// Record holds the record for fixtures built in Go. It takes precedence
	// over Value.
	Record gpuctl.Record `yaml:"-"`
	// ReplyVersion overrides the version written back in the header.
	ReplyVersion uint8 `yaml:"reply_version,omitempty"`
	// ReplySize overrides the size written back in the header.
	ReplySize uint32 `yaml:"reply_size,omitempty"`
}

//go:embed hosts/arc.yaml
var defaultFixture []byte

// Default returns a single-adapter discrete GPU host.
func Default() *Fixture {
	fx, err := Load(bytes.NewReader(defaultFixture))
	if err != nil {
		panic(fmt.Sprintf("sim: embedded fixture: %v", err))
	}
	return fx
}

// Load decodes a YAML fixture. Unknown fields are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// LoadFile decodes the YAML fixture at path.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fx, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fx, nil
}

func (fx *Fixture) version() (gpuctl.APIVersion, error) {
	if fx.APIVersion == "" {
		return gpuctl.CurrentAPIVersion, nil
	}
	var major, minor uint16
	if _, err := fmt.Sscanf(fx.APIVersion, "%d.%d", &major, &minor); err != nil {
		return 0, fmt.Errorf("api_version %q: %w", fx.APIVersion, err)
	}
	return gpuctl.MakeAPIVersion(major, minor), nil
}

// record builds the record an entry replies with.
func (e Entry) record(kind gpuctl.RecordKind) (gpuctl.Record, error) {
	if e.Record != nil {
		if e.Record.Kind() != kind {
			return nil, fmt.Errorf("record %s under key %s", e.Record.Kind(), kind)
		}
		if err := gpuctl.Prepare(e.Record); err != nil {
			return nil, err
		}
		return e.Record, nil
	}
	rec, err := gpuctl.NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if !e.Value.IsZero() {
		if err := e.Value.Decode(rec); err != nil {
			return nil, fmt.Errorf("record %s: %w", kind, err)
		}
		// Fixture values never carry a header.
		if err := gpuctl.Prepare(rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
