// Package serializer converts store snapshots to and from bytes. It defines a
// common interface and multiple implementations with different trade-offs.
//
// Key Components:
//
//   - Snapshot: A list of key-value entries, independent of the table layout
//     of the store it was taken from.
//
//   - ISerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Length-prefixed binary format with a magic header and a
//     version byte. Smallest output, used by the database engines for Save and Load.
//
//   - jsonSerializerImpl: Indented JSON, useful for inspecting or editing exports.
//     Values are base64 encoded.
//
//   - gobSerializerImpl: Go's gob encoding.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s, err := serializer.New("json")
//	data, err := s.Serialize(snapshot)
//	// ... write data ...
//	var restored serializer.Snapshot
//	err = s.Deserialize(data, &restored)
package serializer
