// Package interchange serializes gpuctl records and reports to JSON, YAML
// and CBOR.
//
// Records travel in an envelope that names their kind, so they can be
// decoded without knowing the kind up front. Every field, enumerated value
// and flag survives a round trip unchanged, including numeric extremes.
package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/leodido/gpuctl"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format.
type Format int

const (
	JSON Format = iota
	YAML
	CBOR
)

var formatNames = map[Format]string{
	JSON: "json",
	YAML: "yaml",
	CBOR: "cbor",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", f)
}

// ParseFormat returns the format with the given name (case-insensitive).
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return f, nil
		}
	}
	if strings.EqualFold(name, "yml") {
		return YAML, nil
	}
	return 0, fmt.Errorf("unknown format %q", name)
}

// encMode uses Core Deterministic Encoding: the same record always produces
// the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Kind names and fixed strings travel as text.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("interchange: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("interchange: CBOR decoder initialization failed: " + err.Error())
	}
}

// envelope wraps a record with its kind and header.
type envelope struct {
	Kind    gpuctl.RecordKind `json:"kind" yaml:"kind" cbor:"kind"`
	Size    uint32            `json:"size" yaml:"size" cbor:"size"`
	Version uint8             `json:"version" yaml:"version" cbor:"version"`
	Record  gpuctl.Record     `json:"record" yaml:"record" cbor:"record"`
}

type jsonEnvelope struct {
	Kind    gpuctl.RecordKind `json:"kind"`
	Size    uint32            `json:"size"`
	Version uint8             `json:"version"`
	Record  json.RawMessage   `json:"record"`
}

type yamlEnvelope struct {
	Kind    gpuctl.RecordKind `yaml:"kind"`
	Size    uint32            `yaml:"size"`
	Version uint8             `yaml:"version"`
	Record  yaml.Node         `yaml:"record"`
}

type cborEnvelope struct {
	Kind    gpuctl.RecordKind `cbor:"kind"`
	Size    uint32            `cbor:"size"`
	Version uint8             `cbor:"version"`
	Record  cbor.RawMessage   `cbor:"record"`
}

// Marshal encodes rec in format f.
func Marshal(f Format, rec gpuctl.Record) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("marshal: nil record")
	}
	h := rec.RecordHeader()
	env := envelope{Kind: rec.Kind(), Size: h.Size, Version: h.Version, Record: rec}
	switch f {
	case JSON:
		return json.Marshal(env)
	case YAML:
		return yaml.Marshal(env)
	case CBOR:
		return encMode.Marshal(env)
	default:
		return nil, fmt.Errorf("marshal: unknown format %d", int(f))
	}
}

// Unmarshal decodes a record produced by [Marshal]. Unknown record fields
// are rejected, and an envelope header that disagrees with the record's own
// header is an [gpuctl.ErrSchemaMismatch].
func Unmarshal(f Format, data []byte) (gpuctl.Record, error) {
	var (
		kind    gpuctl.RecordKind
		size    uint32
		version uint8
		rec     gpuctl.Record
		err     error
	)
	switch f {
	case JSON:
		var env jsonEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshal json: %w", err)
		}
		kind, size, version = env.Kind, env.Size, env.Version
		if rec, err = gpuctl.NewRecord(kind); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(env.Record))
		dec.DisallowUnknownFields()
		err = dec.Decode(rec)
	case YAML:
		var env yamlEnvelope
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
		kind, size, version = env.Kind, env.Size, env.Version
		if rec, err = gpuctl.NewRecord(kind); err != nil {
			return nil, err
		}
		err = decodeYAMLStrict(&env.Record, rec)
	case CBOR:
		var env cborEnvelope
		if err := decMode.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("unmarshal cbor: %w", err)
		}
		kind, size, version = env.Kind, env.Size, env.Version
		if rec, err = gpuctl.NewRecord(kind); err != nil {
			return nil, err
		}
		err = decMode.Unmarshal(env.Record, rec)
	default:
		return nil, fmt.Errorf("unmarshal: unknown format %d", int(f))
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s %s: %w", f, kind, err)
	}

	h := rec.RecordHeader()
	if h.Size != size || h.Version != version {
		return nil, fmt.Errorf("unmarshal %s %s: %w: envelope size %d version %d, record size %d version %d",
			f, kind, gpuctl.ErrSchemaMismatch, size, version, h.Size, h.Version)
	}
	return rec, nil
}

// decodeYAMLStrict decodes n into v rejecting unknown fields.
func decodeYAMLStrict(n *yaml.Node, v any) error {
	out, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(out))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// Write encodes v to w in format f. JSON and YAML output is indented for
// people; CBOR is deterministic.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case CBOR:
		return encMode.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("write: unknown format %d", int(f))
	}
}
