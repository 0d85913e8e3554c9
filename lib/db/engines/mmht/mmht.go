package mmht

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/mmkv/lib/codec"
	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/ValentinKolb/mmkv/lib/db/util"
	"github.com/ValentinKolb/mmkv/lib/hashtable"
	"github.com/ValentinKolb/mmkv/lib/lockmgr"
	"github.com/ValentinKolb/mmkv/lib/serializer"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("mmht")

// --------------------------------------------------------------------------
// Core database structure
// --------------------------------------------------------------------------

// table is the concrete table type used by the engine
type table = hashtable.HashTable[codec.Key, codec.Value]

// mmhtImpl implements db.KVDB on top of a memory-mapped hash table
type mmhtImpl struct {
	table  *table
	timers *timers
	snap   serializer.ISerializer // format used by Save and Load
}

// Options configures the mmhtImpl behavior during initialization
type Options struct {
	Capacity int           // Number of slots, a power of two (0 = hashtable.DefaultCapacity)
	Lock     lockmgr.ILock // Lock policy (nil = mutex)
	MaxSize  int64         // Mapping ceiling in bytes (0 = region default)
}

// DefaultOptions returns the default mmhtImpl options
func DefaultOptions() *Options {
	return &Options{
		Capacity: hashtable.DefaultCapacity,
		Lock:     lockmgr.NewMutexLock(),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMMHT opens the database stored at path, creating the file if needed.
// Every handle has its own mapping and lock; use OpenShared to share one
// handle between all callers of a process.
func NewMMHT(path string, opts *Options) (db.KVDB, error) {
	impl, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	return impl, nil
}

func open(path string, opts *Options) (*mmhtImpl, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	t, err := hashtable.Open[codec.Key, codec.Value](path, &hashtable.Options{
		Capacity: opts.Capacity,
		Lock:     opts.Lock,
		MaxSize:  opts.MaxSize,
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("opened %s with %d slots", path, t.Capacity())

	return &mmhtImpl{
		table:  t,
		timers: newTimers(),
		snap:   serializer.NewBinarySerializer(),
	}, nil
}

// --------------------------------------------------------------------------
// Conversion Helpers
// --------------------------------------------------------------------------

func toKey(key string) (codec.Key, error) {
	k, err := codec.KeyString(key)
	if err != nil {
		return codec.Key{}, fmt.Errorf("%w: %w", db.ErrKeyTooLong, err)
	}
	return k, nil
}

func toValue(value []byte) (codec.Value, error) {
	v, err := codec.ValueBytes(value)
	if err != nil {
		return codec.Value{}, fmt.Errorf("%w: %w", db.ErrValueTooLarge, err)
	}
	return v, nil
}

// keyString renders a stored key. Keys written by other tools may carry a different tag.
func keyString(k codec.Key) string {
	if s, err := k.AsString(); err == nil {
		return s
	}
	return k.String()
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *mmhtImpl) Set(key string, value []byte) error {
	defer m.timers.set.UpdateSince(time.Now())
	opsSet.Inc()

	k, err := toKey(key)
	if err != nil {
		return err
	}
	v, err := toValue(value)
	if err != nil {
		return err
	}

	if err := m.table.Put(k, v); err != nil {
		if errors.Is(err, hashtable.ErrStoreFull) {
			storeFull.Inc()
			return fmt.Errorf("%w: %w", db.ErrStoreFull, err)
		}
		return err
	}
	return nil
}

// Delete removes the entry for key. A key too long to be stored cannot exist,
// so Delete returns nil for it instead of db.ErrKeyTooLong.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *mmhtImpl) Delete(key string) error {
	opsDelete.Inc()

	k, err := codec.KeyString(key)
	if err != nil {
		return nil
	}
	_, err = m.table.Delete(k)
	return err
}

// Compact drops all tombstones and moves every entry as close to its home slot as possible.
func (m *mmhtImpl) Compact() error {
	opsCompact.Inc()
	return m.table.Compact()
}

// Clear removes all entries.
func (m *mmhtImpl) Clear() error {
	opsClear.Inc()
	return m.table.RemoveAll()
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns a copy of the value stored for key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *mmhtImpl) Get(key string) ([]byte, bool) {
	defer m.timers.get.UpdateSince(time.Now())
	opsGet.Inc()

	k, err := codec.KeyString(key)
	if err != nil {
		return nil, false
	}
	v, ok := m.table.Get(k)
	if !ok {
		return nil, false
	}
	return v.Bytes(), true
}

// Has reports whether key is stored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *mmhtImpl) Has(key string) bool {
	opsHas.Inc()

	k, err := codec.KeyString(key)
	if err != nil {
		return false
	}
	return m.table.Contains(k)
}

// Keys returns all stored keys in slot order.
func (m *mmhtImpl) Keys() []string {
	opsKeys.Inc()

	keys := m.table.Keys()
	result := make([]string, len(keys))
	for i, k := range keys {
		result[i] = keyString(k)
	}
	return result
}

// Count returns the number of stored keys.
func (m *mmhtImpl) Count() int {
	return m.table.Count()
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Persistence
// --------------------------------------------------------------------------

// Save writes all entries in the binary snapshot format.
// The table is read once under its lock, writing happens afterwards.
func (m *mmhtImpl) Save(w io.Writer) error {
	entries := m.table.Entries()

	snap := serializer.Snapshot{Entries: make([]serializer.Entry, len(entries))}
	for i, e := range entries {
		snap.Entries[i] = serializer.Entry{Key: keyString(e.Key), Value: e.Value.Bytes()}
	}

	data, err := m.snap.Serialize(snap)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads a binary snapshot and sets every entry it contains.
// Entries stored before the first failing Set stay stored.
func (m *mmhtImpl) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var snap serializer.Snapshot
	if err := m.snap.Deserialize(data, &snap); err != nil {
		return fmt.Errorf("%w: %w", db.ErrCorruptedInput, err)
	}

	for _, e := range snap.Entries {
		if err := m.Set(e.Key, e.Value); err != nil {
			return fmt.Errorf("load %q: %w", e.Key, err)
		}
	}

	log.Infof("%s: loaded %d entries", m.table.Path(), len(snap.Entries))
	return nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// info is the implementation specific part of db.DatabaseInfo
type info struct {
	Path              string                 `json:"path"`
	Capacity          int                    `json:"capacity"`
	Entries           int                    `json:"entries"`
	Tombstones        int                    `json:"tombstones"`
	LoadFactor        float64                `json:"load_factor"`
	MaxProbe          int                    `json:"max_probe"`
	MeanProbe         float64                `json:"mean_probe"`
	ProbeDistribution util.DistributionStats `json:"probe_distribution"`
	ValueSizeMedian   int                    `json:"value_size_median"`
	ValueSizeP99      int                    `json:"value_size_p99"`
	Latency           latencyInfo            `json:"latency"`
}

// GetInfo returns statistics about the database
func (m *mmhtImpl) GetInfo() db.DatabaseInfo {
	stats := m.table.Stats()

	probes := make([]float64, len(stats.ProbeLengths))
	for i, n := range stats.ProbeLengths {
		probes[i] = float64(n)
	}

	histogram := util.NewSizeHistogram(codec.MaxValueSize)
	for _, e := range m.table.Entries() {
		histogram.AddSample(e.Value.Len())
	}

	meta := &info{
		Path:              m.table.Path(),
		Capacity:          stats.Capacity,
		Entries:           stats.Occupied,
		Tombstones:        stats.Tombstones,
		LoadFactor:        stats.LoadFactor,
		MaxProbe:          stats.MaxProbe,
		MeanProbe:         stats.MeanProbe,
		ProbeDistribution: util.NewDistributionStats(probes),
		ValueSizeMedian:   histogram.Median(),
		ValueSizeP99:      histogram.Percentile(99),
		Latency:           m.timers.info(),
	}

	supportedFeatures := []db.Feature{
		db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
		db.FeatureKeys, db.FeatureSave, db.FeatureLoad,
		db.FeatureCompact, db.FeatureClear,
	}

	return db.DatabaseInfo{
		SizeBytes:         m.table.Size(),
		DbType:            db.ImplMMHT,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

func (m *mmhtImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureKeys |
		db.FeatureSave |
		db.FeatureLoad |
		db.FeatureCompact |
		db.FeatureClear
	return supportedFeatures&feature == feature
}

// Close unmaps the table. The file is kept.
func (m *mmhtImpl) Close() error {
	m.timers.stop()
	return m.table.Close()
}

