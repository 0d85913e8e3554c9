package serializer

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() ISerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testSnapshots creates a set of snapshots with different shapes
func testSnapshots() []Snapshot {
	many := Snapshot{}
	for i := 0; i < 500; i++ {
		many.Entries = append(many.Entries, Entry{
			Key:   fmt.Sprintf("key-%d", i),
			Value: []byte(strings.Repeat("v", i%200)),
		})
	}

	return []Snapshot{
		// Empty snapshot
		{},

		// Single entry
		{Entries: []Entry{{Key: "test-key", Value: []byte("test-value")}}},

		// Empty key and empty value
		{Entries: []Entry{{Key: "", Value: []byte("x")}, {Key: "empty", Value: []byte{}}}},

		// Binary data
		{Entries: []Entry{{Key: "bin", Value: []byte{0, 1, 2, 0xff, 0xfe}}}},

		many,
	}
}

func equalSnapshots(a, b Snapshot) bool {
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if a.Entries[i].Key != b.Entries[i].Key || !bytes.Equal(a.Entries[i].Value, b.Entries[i].Value) {
			return false
		}
	}
	return true
}

// TestSerializerRoundTrip tests that snapshots can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, snap := range testSnapshots() {
				data, err := serializer.Serialize(snap)
				if err != nil {
					t.Errorf("Failed to serialize snapshot %d: %v", i, err)
					continue
				}

				var result Snapshot
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize snapshot %d: %v", i, err)
					continue
				}

				if !equalSnapshots(snap, result) {
					t.Errorf("Snapshot %d differs after round trip", i)
				}
			}
		})
	}
}

// TestBinaryRejectsCorruptInput tests that truncated or foreign data is refused
func TestBinaryRejectsCorruptInput(t *testing.T) {
	serializer := NewBinarySerializer()

	data, err := serializer.Serialize(Snapshot{Entries: []Entry{{Key: "k", Value: []byte("value")}}})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	badMagic := append([]byte{}, data...)
	badMagic[0] = 'X'

	badVersion := append([]byte{}, data...)
	badVersion[len(binaryMagic)] = 99

	hugeCount := append([]byte{}, data...)
	hugeCount[len(binaryMagic)+1] = 0xff

	cases := map[string][]byte{
		"Empty":      nil,
		"Header":     data[:headerSize-1],
		"BadMagic":   badMagic,
		"BadVersion": badVersion,
		"HugeCount":  hugeCount,
		"Truncated":  data[:len(data)-2],
		"Trailing":   append(append([]byte{}, data...), 0),
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var result Snapshot
			if err := serializer.Deserialize(input, &result); err == nil {
				t.Errorf("Expected an error for %s input", name)
			}
		})
	}
}

// TestNew tests the lookup of serializers by name
func TestNew(t *testing.T) {
	for _, name := range []string{NameJSON, NameGOB, NameBinary, ""} {
		if _, err := New(name); err != nil {
			t.Errorf("Expected serializer %q to exist: %v", name, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Errorf("Expected an error for an unknown serializer")
	}
}
