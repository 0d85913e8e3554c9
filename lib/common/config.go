package common

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/ValentinKolb/mmkv/lib/lockmgr"
)

// --------------------------------------------------------------------------
// Store configuration struct
// --------------------------------------------------------------------------

// StoreConfig holds everything needed to open a store file.
type StoreConfig struct {
	// Path of the store file
	Path string

	// Number of slots, a power of two. Only used when the file is created.
	Capacity int

	// Lock policy: none, mutex or file
	Lock string

	// Ceiling for the mapped size in bytes (0 = default)
	MaxSizeBytes int64

	// Logging configuration
	LogLevel string
}

// Validate checks the configuration for values that can never work.
func (c *StoreConfig) Validate() error {
	var errs []error

	if c.Path == "" {
		errs = append(errs, errors.New("no store file given"))
	}
	if c.Capacity < 1 || bits.OnesCount(uint(c.Capacity)) != 1 {
		errs = append(errs, fmt.Errorf("capacity %d is not a positive power of two", c.Capacity))
	}
	switch lockmgr.Kind(c.Lock) {
	case lockmgr.KindNone, lockmgr.KindMutex, lockmgr.KindFile, "":
	default:
		errs = append(errs, fmt.Errorf("unknown lock policy %q", c.Lock))
	}
	if c.MaxSizeBytes < 0 {
		errs = append(errs, fmt.Errorf("max size %d is negative", c.MaxSizeBytes))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Store settings
	addSection("Store")
	addField("File", c.Path)
	addField("Capacity", fmt.Sprintf("%d slots", c.Capacity))
	addField("Lock", c.Lock)
	if c.MaxSizeBytes > 0 {
		addField("Max Size", fmt.Sprintf("%d bytes", c.MaxSizeBytes))
	} else {
		addField("Max Size", "default")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
