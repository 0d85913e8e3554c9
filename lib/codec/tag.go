package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrKeyTooLong is returned when a key does not fit into MaxKeySize bytes.
	ErrKeyTooLong = errors.New("codec: key too long")
	// ErrValueTooLarge is returned when a value does not fit into MaxValueSize bytes.
	ErrValueTooLarge = errors.New("codec: value too large")
	// ErrTypeMismatch is returned when a payload is read as a different scalar than it was stored as.
	ErrTypeMismatch = errors.New("codec: type mismatch")
)

// Tag identifies the scalar type of an encoded payload.
type Tag uint8

const (
	TagNone Tag = iota
	TagString
	TagBytes
	TagInt
	TagUint
	TagFloat
	TagBool
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagString:
		return "string"
	case TagBytes:
		return "bytes"
	case TagInt:
		return "int"
	case TagUint:
		return "uint"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Shared payload helpers
// --------------------------------------------------------------------------

func putUint64(dst []byte, v uint64) int {
	binary.LittleEndian.PutUint64(dst, v)
	return 8
}

func mismatch(want, got Tag) error {
	return fmt.Errorf("%w: stored %s, requested %s", ErrTypeMismatch, got, want)
}

func readInt(tag Tag, payload []byte) (int64, error) {
	if tag != TagInt {
		return 0, mismatch(TagInt, tag)
	}
	return int64(binary.LittleEndian.Uint64(payload)), nil
}

func readUint(tag Tag, payload []byte) (uint64, error) {
	if tag != TagUint {
		return 0, mismatch(TagUint, tag)
	}
	return binary.LittleEndian.Uint64(payload), nil
}

func readString(tag Tag, payload []byte) (string, error) {
	if tag != TagString {
		return "", mismatch(TagString, tag)
	}
	return string(payload), nil
}

// format renders a payload for humans (CLI output, logs).
func format(tag Tag, payload []byte) string {
	switch tag {
	case TagString:
		return string(payload)
	case TagBytes:
		return hex.EncodeToString(payload)
	case TagInt:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(payload)), 10)
	case TagUint:
		return strconv.FormatUint(binary.LittleEndian.Uint64(payload), 10)
	case TagFloat:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(payload)), 'g', -1, 64)
	case TagBool:
		return strconv.FormatBool(payload[0] == 1)
	default:
		return ""
	}
}
