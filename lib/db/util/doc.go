// Package util provides helpers shared by the KVDB implementations.
//
// The package contains:
//   - functions: the FNV-1a based hash functions (HashBytes, HashString, StepHash) used to
//     derive the probe sequence of a key
//   - statistics: Stats and DistributionStats to summarise e.g. probe lengths, and a
//     SizeHistogram for the sizes of bounded values
package util
