package serializer

import "fmt"

// Entry is one key-value pair of a snapshot
type Entry struct {
	Key   string `json:"key"`
	Value []byte `json:"value"`
}

// Snapshot is the portable content of a store, independent of its on-disk layout
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// ISerializer is the interface for all snapshot serializers
type ISerializer interface {
	// Serialize serializes a Snapshot into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(snap Snapshot) ([]byte, error)
	// Deserialize deserializes a byte array into a Snapshot
	// It takes a byte array and a pointer to a Snapshot as parameters
	// It returns an error if any
	Deserialize(b []byte, snap *Snapshot) error
}

// Names of the available serializers, as accepted by New
const (
	NameJSON   = "json"
	NameGOB    = "gob"
	NameBinary = "binary"
)

// New returns the serializer with the given name
func New(name string) (ISerializer, error) {
	switch name {
	case NameJSON:
		return NewJSONSerializer(), nil
	case NameGOB:
		return NewGOBSerializer(), nil
	case NameBinary, "":
		return NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("unknown serializer %q (expected %s, %s or %s)", name, NameJSON, NameGOB, NameBinary)
	}
}
