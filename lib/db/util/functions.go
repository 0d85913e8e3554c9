package util

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// FNV-1a constants (64 bit)
const (
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// HashBytes generates a hash value for a byte slice with a seed.
// This function uses the FNV-1a hash algorithm, which is fast and has good distribution.
// A zero seed yields plain FNV-1a.
func HashBytes(b []byte, seed uint64) uint64 {
	// Start with the offset combined with our seed
	hash := uint64(offset64) ^ seed

	for i := 0; i < len(b); i++ {
		hash ^= uint64(b[i])
		hash *= prime64
	}

	return hash
}

// HashTagged returns the plain FNV-1a hash of tag followed by b,
// without building the concatenation.
func HashTagged(tag byte, b []byte) uint64 {
	hash := (uint64(offset64) ^ uint64(tag)) * prime64

	for i := 0; i < len(b); i++ {
		hash ^= uint64(b[i])
		hash *= prime64
	}

	return hash
}

// HashString is HashBytes for strings (without converting the string).
func HashString(s string, seed uint64) uint64 {
	hash := uint64(offset64) ^ seed

	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= prime64
	}

	return hash
}

// StepHash derives the probe step of a double hashing table from the primary hash.
// The result is always odd, so it is coprime with every power-of-two capacity
// and a probe sequence visits all slots before it repeats.
func StepHash(h1 uint64) uint64 {
	return (((h1 >> 17) ^ (h1 << 15)) + (h1 >> 7)) | 1
}
