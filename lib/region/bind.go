package region

// All unsafe code of the module lives in this file.

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// layout checks that E is a fixed-size record and returns its size and alignment.
func layout[E any]() (size, align uintptr, err error) {
	var zero E
	t := reflect.TypeOf(&zero).Elem()
	if err := checkFixed(t, t.String()); err != nil {
		return 0, 0, err
	}

	size = unsafe.Sizeof(zero)
	align = unsafe.Alignof(zero)
	if size == 0 {
		return 0, 0, fmt.Errorf("%w: %s has size zero", ErrBind, t)
	}
	return size, align, nil
}

// checkFixed walks the type tree and rejects every kind that holds a reference
// or has a platform-dependent meaning outside the process.
func checkFixed(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkFixed(t.Elem(), path+"[]")
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if err := checkFixed(field.Type, path+"."+field.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s has kind %s", ErrBind, path, t.Kind())
	}
}

// requiredSize returns HeaderSize + n*elemSize, or ErrSize if it overflows or exceeds maxSize.
func requiredSize(n int, elemSize uintptr, maxSize int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: element count must be >= 1, got %d", ErrBind, n)
	}
	if uint64(n) > (math.MaxInt64-HeaderSize)/uint64(elemSize) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes overflow", ErrSize, n, elemSize)
	}

	size := HeaderSize + int64(n)*int64(elemSize)
	if size > maxSize || uint64(size) > math.MaxInt {
		return 0, fmt.Errorf("%w: %d bytes requested, ceiling is %d", ErrSize, size, maxSize)
	}
	return size, nil
}

// bind reinterprets the mapped payload as n elements of E.
// The payload must stay mapped for as long as the returned slice is used.
func bind[E any](payload []byte, n int) ([]E, error) {
	var zero E
	size := unsafe.Sizeof(zero)
	if n < 1 || uintptr(len(payload)) < size*uintptr(n) {
		return nil, fmt.Errorf("%w: payload of %d bytes cannot hold %d elements of %d bytes", ErrBind, len(payload), n, size)
	}

	base := unsafe.Pointer(unsafe.SliceData(payload))
	if uintptr(base)%unsafe.Alignof(zero) != 0 {
		return nil, fmt.Errorf("%w: address %#x, alignment %d", ErrAlignment, uintptr(base), unsafe.Alignof(zero))
	}
	return unsafe.Slice((*E)(base), n), nil
}
