package region

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/ValentinKolb/mmkv/lib/lockmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterRecord struct {
	Count uint64
	Flags [4]uint8
	Ratio float32
}

func tempPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "region.bin")
}

func TestOpenCreatesAndStampsFile(t *testing.T) {
	path := tempPath(t)

	r, err := OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	defer r.Close()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
	assert.Equal(t, int64(HeaderSize+unsafe.Sizeof(counterRecord{})), fi.Size())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, int(fi.Size()), r.Size())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, MagicNumber, binary.LittleEndian.Uint64(raw[:HeaderSize]))

	// the payload of a new file is zero
	err = r.WithExclusive(func(view []counterRecord) error {
		assert.Equal(t, counterRecord{}, view[0])
		return nil
	})
	require.NoError(t, err)
}

func TestRecordSurvivesReopen(t *testing.T) {
	path := tempPath(t)

	r, err := OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	require.NoError(t, r.WithExclusive(func(view []counterRecord) error {
		view[0].Count = 42
		view[0].Flags[2] = 7
		return nil
	}))
	require.NoError(t, r.Close())

	r, err = OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.WithExclusive(func(view []counterRecord) error {
		assert.Equal(t, uint64(42), view[0].Count)
		assert.Equal(t, uint8(7), view[0].Flags[2])
		return nil
	}))
}

func TestForeignHeaderIsRefused(t *testing.T) {
	path := tempPath(t)

	foreign := make([]byte, 64)
	binary.LittleEndian.PutUint64(foreign, 0xDEADBEEFDEADBEEF)
	require.NoError(t, os.WriteFile(path, foreign, 0600))

	_, err := OpenRecord[counterRecord](path, nil)
	assert.ErrorIs(t, err, ErrFormat)

	// the foreign file is left untouched
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, foreign, raw)
}

func TestShortHeaderIsRefused(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0600))

	_, err := OpenRecord[counterRecord](path, nil)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCustomMagic(t *testing.T) {
	path := tempPath(t)

	r, err := OpenRecord[counterRecord](path, &Options{Magic: 0x1234})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = OpenRecord[counterRecord](path, nil)
	assert.ErrorIs(t, err, ErrFormat)

	r, err = OpenRecord[counterRecord](path, &Options{Magic: 0x1234})
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestShortFileIsGrown(t *testing.T) {
	path := tempPath(t)

	header := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(header, MagicNumber)
	require.NoError(t, os.WriteFile(path, header, 0600))

	r, err := Open[counterRecord](path, 4, nil)
	require.NoError(t, err)
	defer r.Close()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+4*unsafe.Sizeof(counterRecord{})), fi.Size())
	assert.Equal(t, 4, r.Len())
}

func TestLongerFileIsNotShrunk(t *testing.T) {
	path := tempPath(t)

	r, err := Open[counterRecord](path, 8, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = Open[counterRecord](path, 2, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+8*unsafe.Sizeof(counterRecord{})), fi.Size())
}

func TestExactRefusesLongerFile(t *testing.T) {
	path := tempPath(t)

	r, err := Open[counterRecord](path, 8, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = Open[counterRecord](path, 2, &Options{Exact: true})
	assert.ErrorIs(t, err, ErrFormat)

	// same length is fine
	r, err = Open[counterRecord](path, 8, &Options{Exact: true})
	require.NoError(t, err)
	require.NoError(t, r.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+8*unsafe.Sizeof(counterRecord{})), fi.Size())
}

func TestEmptyExistingFileIsTreatedAsNew(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0600))

	r, err := OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, MagicNumber, binary.LittleEndian.Uint64(raw[:HeaderSize]))
}

func TestBindRejectsReferences(t *testing.T) {
	type withPointer struct {
		N uint64
		P *int
	}
	type withString struct {
		Name string
	}
	type nested struct {
		Inner [2]struct{ S []byte }
	}

	_, err := OpenRecord[withPointer](tempPath(t), nil)
	assert.ErrorIs(t, err, ErrBind)

	_, err = OpenRecord[withString](tempPath(t), nil)
	assert.ErrorIs(t, err, ErrBind)

	_, err = OpenRecord[nested](tempPath(t), nil)
	assert.ErrorIs(t, err, ErrBind)

	_, err = OpenRecord[struct{}](tempPath(t), nil)
	assert.ErrorIs(t, err, ErrBind)

	_, err = Open[counterRecord](tempPath(t), 0, nil)
	assert.ErrorIs(t, err, ErrBind)
}

func TestBindRejectsShortPayload(t *testing.T) {
	_, err := bind[counterRecord](make([]byte, 8), 2)
	assert.ErrorIs(t, err, ErrBind)
}

func TestSizeCeiling(t *testing.T) {
	path := tempPath(t)

	_, err := Open[counterRecord](path, 100, &Options{MaxSize: 64})
	assert.ErrorIs(t, err, ErrSize)

	// nothing was created
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIOErrorCarriesOperationAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "region.bin")

	_, err := OpenRecord[counterRecord](path, nil)
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "create", ioErr.Op)
	assert.Equal(t, path, ioErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClosedRegion(t *testing.T) {
	r, err := OpenRecord[counterRecord](tempPath(t), nil)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	err = r.WithExclusive(func([]counterRecord) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	err = r.WithShared(func([]counterRecord) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Sync(), ErrClosed)
}

func TestLockIsReleasedOnErrorAndPanic(t *testing.T) {
	r, err := OpenRecord[counterRecord](tempPath(t), &Options{Lock: lockmgr.NewMutexLock()})
	require.NoError(t, err)
	defer r.Close()

	errBoom := errors.New("boom")
	err = r.WithExclusive(func([]counterRecord) error { return errBoom })
	assert.ErrorIs(t, err, errBoom)

	assert.Panics(t, func() {
		_ = r.WithExclusive(func([]counterRecord) error { panic("boom") })
	})

	// would deadlock if the lock was still held
	require.NoError(t, r.WithExclusive(func(view []counterRecord) error {
		view[0].Count++
		return nil
	}))
}

func TestTwoMappingsShareThePageCache(t *testing.T) {
	path := tempPath(t)

	a, err := OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenRecord[counterRecord](path, nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.WithExclusive(func(view []counterRecord) error {
		view[0].Count = 99
		return nil
	}))
	require.NoError(t, b.WithShared(func(view []counterRecord) error {
		assert.Equal(t, uint64(99), view[0].Count)
		return nil
	}))
}

func TestSync(t *testing.T) {
	r, err := OpenRecord[counterRecord](tempPath(t), nil)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.WithExclusive(func(view []counterRecord) error {
		view[0].Count = 1
		return nil
	}))
	assert.NoError(t, r.Sync())
}

func TestFileLockIsClosedWithRegion(t *testing.T) {
	path := tempPath(t)
	lock, err := lockmgr.NewFileLock(path + ".lock")
	require.NoError(t, err)

	r, err := OpenRecord[counterRecord](path, &Options{Lock: lock})
	require.NoError(t, err)
	require.NoError(t, r.WithExclusive(func(view []counterRecord) error {
		view[0].Count = 3
		return nil
	}))
	assert.NoError(t, r.Close())
}
