package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/mmkv/cmd/util"
	"github.com/ValentinKolb/mmkv/lib/codec"
	"github.com/ValentinKolb/mmkv/lib/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for mmkv store files",
		Long:    util.WrapString("Runs set, get, delete and has benchmarks against the store file. The test keys are removed afterwards and the file is compacted."),
		Args:    cobra.NoArgs,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__test"
	perfValueSize  = 64
	perfNumThreads = 10
	perfKeySpread  = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 64, util.WrapString(fmt.Sprintf("Size of the values written by the set tests (in bytes, at most %d)", codec.MaxValueSize)))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests (must fit into the store)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfValueSize = viper.GetInt("value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfValueSize < 0 || perfValueSize > codec.MaxValueSize {
		return fmt.Errorf("value-size must be between 0 and %d", codec.MaxValueSize)
	}
	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be positive")
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for mmkv store files")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetStoreConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("staring tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)
	value := make([]byte, perfValueSize)

	bench := func(test string, prefill bool, op func(key string) error) {
		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(test) {
				return
			}

			// prepare keys
			getKey, iter := getKeys(test)

			if prefill {
				iter(func(k string) {
					if err := localStore.Set(k, value); err != nil {
						log.Printf("(%s) - error setting key: %v\n", test, err)
					}
				})
			}

			// cleanup
			b.Cleanup(func() {
				iter(func(k string) {
					if err := localStore.Delete(k); err != nil {
						log.Printf("(%s) - error deleting key: %v\n", test, err)
					}
				})
			})

			b.SetParallelism(perfNumThreads)

			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				counter := 0
				for pb.Next() {
					if err := op(getKey(counter)); err != nil {
						log.Printf("(%s) - error: %v\n", test, err)
					}
					counter++
				}
			})
		})

		results[test] = result
		printResult(test, result)
	}

	bench("set", false, func(key string) error {
		return localStore.Set(key, value)
	})

	bench("get", true, func(key string) error {
		_, _, err := localStore.Get(key)
		return err
	})

	bench("delete", true, func(key string) error {
		return localStore.Delete(key)
	})

	bench("has", true, func(key string) error {
		_, err := localStore.Has(key)
		return err
	})

	bench("has-not", false, func(key string) error {
		_, err := localStore.Has(key + "-missing")
		return err
	})

	var mixed atomic.Uint64
	bench("mixed", true, func(key string) error {
		var err error
		switch mixed.Add(1) % 4 {
		case 0: // set
			err = localStore.Set(key, value)
		case 1: // get
			_, _, err = localStore.Get(key)
		case 2: // delete
			err = localStore.Delete(key)
		case 3: // has
			_, err = localStore.Has(key)
		}
		return err
	})

	// drop the tombstones of the test keys
	if err := localStore.Compact(); err != nil {
		log.Printf("error compacting store: %v\n", err)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetStoreConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.StoreConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"File", "Capacity", "Lock", "MaxSizeBytes",
		"Threads", "ValueSizeBytes", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Path,
			strconv.Itoa(config.Capacity),
			config.Lock,
			strconv.FormatInt(config.MaxSizeBytes, 10),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
