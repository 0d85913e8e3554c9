package serializer

import (
	"encoding/binary"
	"fmt"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and size
func NewBinarySerializer() ISerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements ISerializer using a custom binary format:
//
//	magic (8 bytes) | version (1 byte) | entry count (uint64)
//	per entry: key length (uint32) | key | value length (uint32) | value
//
// All integers are big endian.
type binarySerializerImpl struct {
}

const (
	binaryMagic   = "MMKVSNAP"
	binaryVersion = 1
	headerSize    = len(binaryMagic) + 1 + 8
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(snap Snapshot) ([]byte, error) {
	// Calculate total size needed
	result := make([]byte, b.sizeBytes(snap))

	// Write header
	pos := copy(result, binaryMagic)
	result[pos] = binaryVersion
	pos++
	binary.BigEndian.PutUint64(result[pos:pos+8], uint64(len(snap.Entries)))
	pos += 8

	for _, e := range snap.Entries {
		// Write key
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(e.Key)))
		pos += 4
		pos += copy(result[pos:], e.Key)

		// Write value
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(e.Value)))
		pos += 4
		pos += copy(result[pos:], e.Value)
	}

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, snap *Snapshot) error {
	// Check header
	if len(data) < headerSize {
		return fmt.Errorf("data too short for snapshot header")
	}
	if string(data[:len(binaryMagic)]) != binaryMagic {
		return fmt.Errorf("not a snapshot (bad magic %q)", data[:len(binaryMagic)])
	}
	pos := len(binaryMagic)
	if v := data[pos]; v != binaryVersion {
		return fmt.Errorf("unsupported snapshot version %d", v)
	}
	pos++

	count := binary.BigEndian.Uint64(data[pos : pos+8])
	pos += 8

	// every entry needs at least its two length fields
	if count > uint64(len(data)-pos)/8 {
		return fmt.Errorf("entry count %d exceeds snapshot size", count)
	}

	entries := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		// Read key
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for key length of entry %d", i)
		}
		keyLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if keyLen > len(data)-pos {
			return fmt.Errorf("data too short for key data of entry %d", i)
		}
		key := string(data[pos : pos+keyLen])
		pos += keyLen

		// Read value
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for value length of entry %d", i)
		}
		valueLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4
		if valueLen > len(data)-pos {
			return fmt.Errorf("data too short for value data of entry %d", i)
		}
		value := make([]byte, valueLen)
		copy(value, data[pos:pos+valueLen])
		pos += valueLen

		entries = append(entries, Entry{Key: key, Value: value})
	}

	if pos != len(data) {
		return fmt.Errorf("%d trailing bytes after snapshot", len(data)-pos)
	}

	snap.Entries = entries
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(snap Snapshot) int {
	size := headerSize
	for _, e := range snap.Entries {
		size += 4 + len(e.Key) + 4 + len(e.Value) // length prefixes + data
	}
	return size
}
