package lstore

import (
	"bytes"

	"github.com/ValentinKolb/mmkv/lib/db"
	"github.com/ValentinKolb/mmkv/lib/serializer"
	"github.com/ValentinKolb/mmkv/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

type storeImpl struct {
	db db.KVDB
}

// NewLocalStore creates a new local store instance backed by the db the factory returns.
func NewLocalStore(factory store.DBFactory) (store.IStore, error) {
	database, err := factory()
	if err != nil {
		return nil, store.WrapError(err)
	}
	return &storeImpl{db: database}, nil
}

// unsupported returns the error for an operation the db does not provide.
func unsupported(op string) error {
	return store.NewError(store.RetCUnsupportedOperation, op+" operation is not supported")
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if !s.db.SupportsFeature(db.FeatureSet) {
		return unsupported("Set")
	}
	return store.WrapError(s.db.Set(key, value))
}

func (s *storeImpl) Delete(key string) error {
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return unsupported("Delete")
	}
	return store.WrapError(s.db.Delete(key))
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if !s.db.SupportsFeature(db.FeatureGet) {
		return nil, false, unsupported("Get")
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if !s.db.SupportsFeature(db.FeatureHas) {
		return false, unsupported("Has")
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) Keys() ([]string, error) {
	if !s.db.SupportsFeature(db.FeatureKeys) {
		return nil, unsupported("Keys")
	}
	return s.db.Keys(), nil
}

func (s *storeImpl) Count() (int, error) {
	if !s.db.SupportsFeature(db.FeatureKeys) {
		return 0, unsupported("Count")
	}
	return s.db.Count(), nil
}

func (s *storeImpl) Compact() error {
	if !s.db.SupportsFeature(db.FeatureCompact) {
		return unsupported("Compact")
	}
	return store.WrapError(s.db.Compact())
}

func (s *storeImpl) Clear() error {
	if !s.db.SupportsFeature(db.FeatureClear) {
		return unsupported("Clear")
	}
	return store.WrapError(s.db.Clear())
}

// Snapshot goes through the db's own Save, which reads all entries at once.
func (s *storeImpl) Snapshot() (serializer.Snapshot, error) {
	var snap serializer.Snapshot
	if !s.db.SupportsFeature(db.FeatureSave) {
		return snap, unsupported("Save")
	}

	var buf bytes.Buffer
	if err := s.db.Save(&buf); err != nil {
		return snap, store.WrapError(err)
	}
	if err := serializer.NewBinarySerializer().Deserialize(buf.Bytes(), &snap); err != nil {
		return snap, store.WrapError(err)
	}
	return snap, nil
}

func (s *storeImpl) Restore(snap serializer.Snapshot) error {
	if !s.db.SupportsFeature(db.FeatureLoad) {
		return unsupported("Load")
	}

	data, err := serializer.NewBinarySerializer().Serialize(snap)
	if err != nil {
		return store.WrapError(err)
	}
	if err := s.db.Load(bytes.NewReader(data)); err != nil {
		log.Warningf("restore of %d entries failed: %v", len(snap.Entries), err)
		return store.WrapError(err)
	}
	return nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}

func (s *storeImpl) Close() error {
	return store.WrapError(s.db.Close())
}
