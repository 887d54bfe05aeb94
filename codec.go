package gpuctl

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes r into its fixed little-endian layout.
// The header is written as-is; call [Prepare] first for a fresh record.
func Encode(r Record) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("encode: nil record")
	}
	n := binary.Size(r)
	if n < 0 {
		return nil, fmt.Errorf("encode %s: no fixed layout", r.Kind())
	}
	buf, err := binary.Append(make([]byte, 0, n), binary.LittleEndian, r)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.Kind(), err)
	}
	return buf, nil
}

// ReadHeader decodes the header at the start of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: buffer of %d bytes has no header", ErrSchemaMismatch, len(buf))
	}
	return Header{
		Size:    binary.LittleEndian.Uint32(buf[0:4]),
		Version: buf[4],
	}, nil
}

// Decode parses buf as a record of kind, as allocated by [NewRecord].
// It fails with [ErrSchemaMismatch] if the size or version written back by
// the callee does not fit the allocation. An older version than requested
// is accepted.
func Decode(buf []byte, kind RecordKind) (Record, error) {
	rec, err := NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := decodeInto(buf, rec, *rec.RecordHeader()); err != nil {
		return nil, err
	}
	return rec, nil
}

// decodeInto parses buf into rec, checking the returned header against the
// one the caller allocated.
func decodeInto(buf []byte, rec Record, allocated Header) error {
	kind := rec.Kind()
	got, err := ReadHeader(buf)
	if err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	if got.Size != allocated.Size || uint32(len(buf)) != allocated.Size {
		return fmt.Errorf("decode %s: %w: size %d, allocated %d (buffer %d)",
			kind, ErrSchemaMismatch, got.Size, allocated.Size, len(buf))
	}
	if got.Version == 0 || got.Version > allocated.Version {
		return fmt.Errorf("decode %s: %w: version %d, requested %d",
			kind, ErrSchemaMismatch, got.Version, allocated.Version)
	}
	if _, err := binary.Decode(buf, binary.LittleEndian, rec); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}
