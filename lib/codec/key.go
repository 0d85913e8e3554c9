package codec

import (
	"bytes"
	"fmt"

	"github.com/ValentinKolb/mmkv/lib/db/util"
)

// MaxKeySize is the number of payload bytes a Key can hold.
const MaxKeySize = 62

// Key is a 64 byte tagged key. The zero Key is the empty key with TagNone.
type Key struct {
	tag  Tag
	size uint8
	data [MaxKeySize]byte
}

// KeyString encodes s as a key.
func KeyString(s string) (Key, error) {
	if len(s) > MaxKeySize {
		return Key{}, fmt.Errorf("%w: %d bytes, maximum is %d", ErrKeyTooLong, len(s), MaxKeySize)
	}
	k := Key{tag: TagString, size: uint8(len(s))}
	copy(k.data[:], s)
	return k, nil
}

// KeyBytes encodes b as a key. The bytes are copied.
func KeyBytes(b []byte) (Key, error) {
	if len(b) > MaxKeySize {
		return Key{}, fmt.Errorf("%w: %d bytes, maximum is %d", ErrKeyTooLong, len(b), MaxKeySize)
	}
	k := Key{tag: TagBytes, size: uint8(len(b))}
	copy(k.data[:], b)
	return k, nil
}

// KeyInt encodes i as a key.
func KeyInt(i int64) Key {
	k := Key{tag: TagInt}
	k.size = uint8(putUint64(k.data[:], uint64(i)))
	return k
}

// KeyUint encodes u as a key.
func KeyUint(u uint64) Key {
	k := Key{tag: TagUint}
	k.size = uint8(putUint64(k.data[:], u))
	return k
}

// MustKey is KeyString for literals known to fit. It panics on ErrKeyTooLong.
func MustKey(s string) Key {
	k, err := KeyString(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Tag returns the scalar type of the key.
func (k Key) Tag() Tag {
	return k.tag
}

// Bytes returns a copy of the significant bytes.
func (k Key) Bytes() []byte {
	return bytes.Clone(k.data[:k.size])
}

// AsString returns the key as a string if it was encoded with KeyString.
func (k Key) AsString() (string, error) {
	return readString(k.tag, k.data[:k.size])
}

// AsInt returns the key as an int64 if it was encoded with KeyInt.
func (k Key) AsInt() (int64, error) {
	return readInt(k.tag, k.data[:k.size])
}

// AsUint returns the key as a uint64 if it was encoded with KeyUint.
func (k Key) AsUint() (uint64, error) {
	return readUint(k.tag, k.data[:k.size])
}

// String renders the key for humans.
func (k Key) String() string {
	return format(k.tag, k.data[:k.size])
}

// Equal compares tag and significant bytes.
func (k Key) Equal(other Key) bool {
	return k.tag == other.tag && k.size == other.size && bytes.Equal(k.data[:k.size], other.data[:other.size])
}

// Hashes returns the primary hash (FNV-1a over the significant bytes: the tag
// followed by the payload) and the odd probe step derived from it.
func (k Key) Hashes() (uint64, uint64) {
	h1 := util.HashTagged(byte(k.tag), k.data[:k.size])
	return h1, util.StepHash(h1)
}
