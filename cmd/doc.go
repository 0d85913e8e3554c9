// Package cmd implements the command-line interface for the mmkv memory-mapped
// key-value store. It provides a hierarchical command structure for working
// with a store file.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, del, compact, export, ...)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See mmkv -help for a list of all commands.
package cmd
