// Package codec provides the fixed-size key and value types stored by the
// memory-mapped hash table. Both are tagged byte buffers: a one-byte Tag says
// how the payload is to be read, a length says how many payload bytes are
// significant, and the remaining bytes are always zero.
//
// Types:
//
//   - Key (64 bytes): up to MaxKeySize (62) significant bytes. Implements
//     hashtable.Key: Equal compares tag and significant bytes, Hashes returns
//     FNV-1a over the significant bytes (the tag followed by the payload) and an odd step
//     hash derived from it.
//
//   - Value (256 bytes): up to MaxValueSize (252) significant bytes.
//
// Supported scalars:
//
//	TagString  UTF-8 string
//	TagBytes   raw bytes
//	TagInt     int64, little-endian
//	TagUint    uint64, little-endian
//	TagFloat   float64 bits, little-endian (values only)
//	TagBool    one byte, 0 or 1 (values only)
//
// Constructors for variable-length payloads return ErrKeyTooLong or
// ErrValueTooLarge when the input does not fit; the As* accessors return
// ErrTypeMismatch when the stored tag is a different scalar.
//
// Both types contain only fixed-size arrays and integers, so they can be
// stored in a region without any serialisation.
package codec
