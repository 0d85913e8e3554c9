package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// MaxValueSize is the number of payload bytes a Value can hold.
const MaxValueSize = 252

// Value is a 256 byte tagged value.
type Value struct {
	tag  Tag
	_    uint8
	size uint16
	data [MaxValueSize]byte
}

// ValueString encodes s as a value.
func ValueString(s string) (Value, error) {
	if len(s) > MaxValueSize {
		return Value{}, fmt.Errorf("%w: %d bytes, maximum is %d", ErrValueTooLarge, len(s), MaxValueSize)
	}
	v := Value{tag: TagString, size: uint16(len(s))}
	copy(v.data[:], s)
	return v, nil
}

// ValueBytes encodes b as a value. The bytes are copied.
func ValueBytes(b []byte) (Value, error) {
	if len(b) > MaxValueSize {
		return Value{}, fmt.Errorf("%w: %d bytes, maximum is %d", ErrValueTooLarge, len(b), MaxValueSize)
	}
	v := Value{tag: TagBytes, size: uint16(len(b))}
	copy(v.data[:], b)
	return v, nil
}

// ValueInt encodes i as a value.
func ValueInt(i int64) Value {
	v := Value{tag: TagInt}
	v.size = uint16(putUint64(v.data[:], uint64(i)))
	return v
}

// ValueUint encodes u as a value.
func ValueUint(u uint64) Value {
	v := Value{tag: TagUint}
	v.size = uint16(putUint64(v.data[:], u))
	return v
}

// ValueFloat encodes f as a value, stored as its IEEE 754 bits.
func ValueFloat(f float64) Value {
	v := Value{tag: TagFloat}
	v.size = uint16(putUint64(v.data[:], math.Float64bits(f)))
	return v
}

// ValueBool encodes b as a one-byte value.
func ValueBool(b bool) Value {
	v := Value{tag: TagBool, size: 1}
	if b {
		v.data[0] = 1
	}
	return v
}

// Tag returns the scalar type of the value.
func (v Value) Tag() Tag {
	return v.tag
}

// Bytes returns a copy of the significant bytes.
func (v Value) Bytes() []byte {
	return bytes.Clone(v.data[:v.size])
}

// Len returns the number of significant bytes.
func (v Value) Len() int {
	return int(v.size)
}

// AsString returns the value as a string if it was encoded with ValueString.
func (v Value) AsString() (string, error) {
	return readString(v.tag, v.data[:v.size])
}

// AsInt returns the value as an int64 if it was encoded with ValueInt.
func (v Value) AsInt() (int64, error) {
	return readInt(v.tag, v.data[:v.size])
}

// AsUint returns the value as a uint64 if it was encoded with ValueUint.
func (v Value) AsUint() (uint64, error) {
	return readUint(v.tag, v.data[:v.size])
}

// AsFloat returns the value as a float64 if it was encoded with ValueFloat.
func (v Value) AsFloat() (float64, error) {
	if v.tag != TagFloat {
		return 0, mismatch(TagFloat, v.tag)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.data[:8])), nil
}

// AsBool returns the value as a bool if it was encoded with ValueBool.
func (v Value) AsBool() (bool, error) {
	if v.tag != TagBool {
		return false, mismatch(TagBool, v.tag)
	}
	return v.data[0] == 1, nil
}

// String renders the value for humans.
func (v Value) String() string {
	return format(v.tag, v.data[:v.size])
}

// Equal compares tag and significant bytes.
func (v Value) Equal(other Value) bool {
	return v.tag == other.tag && v.size == other.size && bytes.Equal(v.data[:v.size], other.data[:other.size])
}
