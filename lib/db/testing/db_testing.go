package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/mmkv/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation.
// Implementations with a bounded capacity must provide room for at least
// 16384 keys; keys of up to 32 bytes and values of up to 200 bytes must fit.
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Keys&Count", func(t *testing.T) {
			testKeysCount(t, factory())
		})

		t.Run("Compact", func(t *testing.T) {
			testCompact(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("LoadCorrupted", func(t *testing.T) {
			testLoadCorrupted(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("CollisionHandling", func(t *testing.T) {
			testCollisionHandling(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// mustSet fails the test if Set returns an error
func mustSet(t testing.TB, database db.KVDB, key string, value []byte) {
	t.Helper()
	if err := database.Set(key, value); err != nil {
		t.Fatalf("Unexpected error during Set(%q): %v", key, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	mustSet(t, database, testKey, testValue1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	mustSet(t, database, testKey, testValue2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists = database.Get("nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// the caller's buffer must not alias the stored value either
	input := []byte("mutable-input")
	mustSet(t, database, testKey, input)
	input[0] = 'X'
	result, _ = database.Get(testKey)
	if !bytes.Equal(result, []byte("mutable-input")) {
		t.Errorf("Set should copy the value, got %s", result)
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	testKey := "delete-test-key"
	testValue := []byte("delete-test-value")

	mustSet(t, database, testKey, testValue)

	_, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}

	if err := database.Delete(testKey); err != nil {
		t.Errorf("Unexpected error during Delete: %v", err)
	}

	_, exists = database.Get(testKey)
	if exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	if err := database.Delete("nonexistent-key"); err != nil {
		t.Errorf("Deleting a nonexistent key should not fail: %v", err)
	}

	// a deleted key can be set again
	mustSet(t, database, testKey, []byte("again"))
	result, exists := database.Get(testKey)
	if !exists || !bytes.Equal(result, []byte("again")) {
		t.Errorf("Expected key %s to be settable after Delete, got %s (exists=%v)", testKey, result, exists)
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureDelete)
	requireFeature(t, database, db.FeatureHas)

	testKey := "has-exists-test-key"
	testValue := []byte("has-exists-test-value")

	if database.Has(testKey) {
		t.Errorf("Expected Has to return false for nonexistent key")
	}

	mustSet(t, database, testKey, testValue)

	if !database.Has(testKey) {
		t.Errorf("Expected Has to return true after Set")
	}

	_ = database.Delete(testKey)

	if database.Has(testKey) {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testKeysCount(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureDelete|db.FeatureKeys)

	if n := database.Count(); n != 0 {
		t.Errorf("Expected an empty database, got %d keys", n)
	}

	expected := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("keys-test-%03d", i)
		mustSet(t, database, key, []byte("v"))
		if i%4 == 0 {
			_ = database.Delete(key)
			continue
		}
		expected = append(expected, key)
	}

	if n := database.Count(); n != len(expected) {
		t.Errorf("Expected %d keys, got %d", len(expected), n)
	}

	keys := database.Keys()
	sort.Strings(keys)
	if strings.Join(keys, ",") != strings.Join(expected, ",") {
		t.Errorf("Keys mismatch: expected %v, got %v", expected, keys)
	}
}

func testCompact(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureCompact)

	numKeys := 1000
	for i := 0; i < numKeys; i++ {
		mustSet(t, database, fmt.Sprintf("compact-%d", i), []byte(fmt.Sprintf("value-%d", i)))
	}
	for i := 0; i < numKeys; i += 2 {
		_ = database.Delete(fmt.Sprintf("compact-%d", i))
	}

	if err := database.Compact(); err != nil {
		t.Fatalf("Unexpected error during Compact: %v", err)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("compact-%d", i)
		value, exists := database.Get(key)
		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should stay deleted after Compact", key)
			}
			continue
		}
		if !exists {
			t.Errorf("Key %s lost during Compact", key)
		} else if !bytes.Equal(value, []byte(fmt.Sprintf("value-%d", i))) {
			t.Errorf("Value of key %s changed during Compact", key)
		}
	}

	// compacting twice is harmless
	if err := database.Compact(); err != nil {
		t.Errorf("Unexpected error during second Compact: %v", err)
	}
}

func testClear(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureClear)

	for i := 0; i < 50; i++ {
		mustSet(t, database, fmt.Sprintf("clear-%d", i), []byte("v"))
	}

	if err := database.Clear(); err != nil {
		t.Fatalf("Unexpected error during Clear: %v", err)
	}

	for i := 0; i < 50; i++ {
		if database.Has(fmt.Sprintf("clear-%d", i)) {
			t.Errorf("Key clear-%d exists after Clear", i)
		}
	}

	mustSet(t, database, "after-clear", []byte("v"))
	if !database.Has("after-clear") {
		t.Errorf("Expected Set to work after Clear")
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureSave)
	requireFeature(t, database, db.FeatureLoad)

	numEntries := 1000
	originalKeys := make([]string, numEntries)
	originalValues := make([][]byte, numEntries)

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		value := []byte(fmt.Sprintf("save-load-test-value-%d", i))
		originalKeys[i] = key
		originalValues[i] = value

		mustSet(t, database, key, value)
	}

	// keys only present in the target survive a Load
	mustSet(t, database2, "only-in-target", []byte("kept"))

	var buf bytes.Buffer
	err := database.Save(&buf)
	if err != nil {
		t.Errorf("Unexpected error during Save: %v", err)
	}

	err = database2.Load(&buf)
	if err != nil {
		t.Errorf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := originalKeys[i]
		expectedValue := originalValues[i]

		actualValue, exists := database2.Get(key)
		if !exists {
			t.Errorf("Key %s not found after Load", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, expectedValue, actualValue)
		}
	}

	if value, exists := database2.Get("only-in-target"); !exists || !bytes.Equal(value, []byte("kept")) {
		t.Errorf("Load should keep keys that are not part of the snapshot")
	}

	for i := 0; i < numEntries; i++ {
		key := originalKeys[i]
		expectedValue := originalValues[i]

		actualValue, exists := database.Get(key)
		if !exists {
			t.Errorf("Key %s not found in original database", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value mismatch in original database for key %s", key)
		}
	}
}

func testLoadCorrupted(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureLoad)

	err := database.Load(strings.NewReader("this is not a snapshot"))
	if err == nil {
		t.Fatalf("Expected an error when loading garbage")
	}
	if !errors.Is(err, db.ErrCorruptedInput) {
		t.Errorf("Expected ErrCorruptedInput, got %v", err)
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)

	emptyKey := ""
	emptyKeyValue := []byte("value for empty key")

	mustSet(t, database, emptyKey, emptyKeyValue)

	result, exists := database.Get(emptyKey)
	if !exists {
		t.Errorf("Empty key not found after Set")
	} else if !bytes.Equal(result, emptyKeyValue) {
		t.Errorf("Value mismatch for empty key")
	}

	emptyValueKey := "empty-value-key"
	emptyValue := []byte{}

	mustSet(t, database, emptyValueKey, emptyValue)

	result, exists = database.Get(emptyValueKey)
	if !exists {
		t.Errorf("Key for empty value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Empty value mismatch")
	}

	nilValueKey := "nil-value-key"
	var nilValue []byte = nil

	mustSet(t, database, nilValueKey, nilValue)

	result, exists = database.Get(nilValueKey)
	if !exists {
		t.Errorf("Key for nil value not found after Set")
	} else if len(result) != 0 {
		t.Errorf("Nil value resulted in non-empty value: %v", result)
	}

	binaryKey := string([]byte{0, 1, 2, 0xff})
	mustSet(t, database, binaryKey, []byte{0, 0, 0})
	if result, exists = database.Get(binaryKey); !exists || !bytes.Equal(result, []byte{0, 0, 0}) {
		t.Errorf("Binary key or value mismatch")
	}

	if t.Failed() {
		return
	}

	// large keys and values are either stored or rejected, never truncated
	largeKey := strings.Repeat("k", 1000)
	largeKeyValue := []byte("value for large key")

	if err := database.Set(largeKey, largeKeyValue); err != nil {
		if !errors.Is(err, db.ErrKeyTooLong) {
			t.Errorf("Expected ErrKeyTooLong for a rejected key, got %v", err)
		}
		if _, exists := database.Get(largeKey); exists {
			t.Errorf("Rejected large key must not be found")
		}
		if _, exists := database.Get(largeKey[:len(largeKey)/2]); exists {
			t.Errorf("Rejected large key must not be stored truncated")
		}
	} else if result, exists := database.Get(largeKey); !exists || !bytes.Equal(result, largeKeyValue) {
		t.Errorf("Value mismatch for large key")
	}

	largeValueKey := "large-value-key"
	largeValue := make([]byte, 1024*1024)
	for i := range largeValue {
		largeValue[i] = byte(i % 256)
	}

	if err := database.Set(largeValueKey, largeValue); err != nil {
		if !errors.Is(err, db.ErrValueTooLarge) {
			t.Errorf("Expected ErrValueTooLarge for a rejected value, got %v", err)
		}
		if _, exists := database.Get(largeValueKey); exists {
			t.Errorf("Rejected large value must not be stored")
		}
	} else if result, exists := database.Get(largeValueKey); !exists || !bytes.Equal(result, largeValue) {
		t.Errorf("Large value mismatch")
	}
}

func testCollisionHandling(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	prefix := "collision-test-"
	numKeys := 1000

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		value := []byte(fmt.Sprintf("value-%d", i))

		mustSet(t, database, key, value)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		expectedValue := []byte(fmt.Sprintf("value-%d", i))

		actualValue, exists := database.Get(key)
		if !exists {
			t.Errorf("Key %s not found", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value for key %s does not match: expected %s, got %s",
				key, expectedValue, actualValue)
		}
	}

	for i := 0; i < numKeys; i += 2 {
		key := fmt.Sprintf("%s%d", prefix, i)
		_ = database.Delete(key)
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		_, exists := database.Get(key)

		if i%2 == 0 {
			if exists {
				t.Errorf("Key %s should be deleted", key)
			}
		} else {
			if !exists {
				t.Errorf("Key %s should still exist", key)
			}
		}
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	requireFeature(t, database, db.FeatureGet)
	requireFeature(t, database, db.FeatureDelete)

	type operation struct {
		op    string
		key   string
		value []byte
	}

	numOperations := 10_000
	operations := make([]operation, numOperations)

	for i := 0; i < numOperations; i++ {
		var op string
		switch i % 10 {
		case 0, 1, 2, 3, 4, 5, 6:
			op = "set"
		case 7, 8:
			op = "get"
		case 9:
			op = "delete"
		}

		var key string
		if i%5 == 0 {
			key = fmt.Sprintf("hot-key-%d", i%50)
		} else {
			key = fmt.Sprintf("key-%d", i)
		}

		var value []byte
		if op == "set" {
			valueSize := 64
			if i%10 == 0 {
				valueSize = 200
			}
			value = make([]byte, valueSize)

			for j := 0; j < valueSize; j++ {
				value[j] = byte((i + j) % 256)
			}
		}

		operations[i] = operation{op, key, value}
	}

	allKeys := make(map[string]bool)
	for _, op := range operations {
		allKeys[op.key] = true
	}

	numWorkers := 8
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	var (
		errMu    sync.Mutex
		opErrors []error
	)

	opsPerWorker := numOperations / numWorkers

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			start := workerId * opsPerWorker
			end := start + opsPerWorker

			for i := start; i < end; i++ {
				op := operations[i]

				var err error
				switch op.op {
				case "set":
					err = database.Set(op.key, op.value)
				case "get":
					database.Get(op.key)
				case "delete":
					err = database.Delete(op.key)
				}

				if err != nil {
					errMu.Lock()
					opErrors = append(opErrors, fmt.Errorf("%s %s: %w", op.op, op.key, err))
					errMu.Unlock()
				}
			}
		}(w)
	}

	wg.Wait()

	if len(opErrors) > 0 {
		t.Fatalf("Test had %d errors during parallel operations, first: %v", len(opErrors), opErrors[0])
	}

	// every key either exists with a value that was written for it, or not at all
	written := make(map[string][][]byte)
	for _, op := range operations {
		if op.op == "set" {
			written[op.key] = append(written[op.key], op.value)
		}
	}

	for key := range allKeys {
		value, exists := database.Get(key)
		if !exists {
			continue
		}

		matched := false
		for _, candidate := range written[key] {
			if bytes.Equal(value, candidate) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("Key %s holds a value that was never written for it", key)
		}
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet)
	mustSet(t, database, "info-key", []byte("info-value"))

	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("Expected a database type")
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size, got %d", info.SizeBytes)
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Feature %s is listed but not supported", f)
		}
	}
}
