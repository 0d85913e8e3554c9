package mmht

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/mmkv/lib/db"
	dbtesting "github.com/ValentinKolb/mmkv/lib/db/testing"
)

// factory returns a DBFactory creating fresh files in dir
func factory(dir string) dbtesting.DBFactory {
	var n atomic.Int64
	return func() db.KVDB {
		path := filepath.Join(dir, fmt.Sprintf("db-%d.mmkv", n.Add(1)))
		database, err := NewMMHT(path, &Options{Capacity: 1 << 14})
		if err != nil {
			panic(fmt.Sprintf("open %s: %v", path, err))
		}
		return database
	}
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MMHT", factory(t.TempDir()))
}

func Benchmark(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "MMHT", factory(b.TempDir()))
}
