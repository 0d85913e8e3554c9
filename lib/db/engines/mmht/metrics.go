package mmht

import (
	"io"

	vm "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
)

// Process-wide operation counters, shared by all open databases.
var (
	opsSet     = vm.GetOrCreateCounter(`mmkv_ops_total{op="set"}`)
	opsGet     = vm.GetOrCreateCounter(`mmkv_ops_total{op="get"}`)
	opsHas     = vm.GetOrCreateCounter(`mmkv_ops_total{op="has"}`)
	opsDelete  = vm.GetOrCreateCounter(`mmkv_ops_total{op="delete"}`)
	opsKeys    = vm.GetOrCreateCounter(`mmkv_ops_total{op="keys"}`)
	opsCompact = vm.GetOrCreateCounter(`mmkv_ops_total{op="compact"}`)
	opsClear   = vm.GetOrCreateCounter(`mmkv_ops_total{op="clear"}`)
	storeFull  = vm.GetOrCreateCounter(`mmkv_store_full_total`)
)

// WritePrometheus writes the operation counters in the Prometheus text format.
func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, false)
}

// timers tracks the latency of one database handle
type timers struct {
	set gometrics.Timer
	get gometrics.Timer
}

func newTimers() *timers {
	return &timers{
		set: gometrics.NewTimer(),
		get: gometrics.NewTimer(),
	}
}

func (t *timers) stop() {
	t.set.Stop()
	t.get.Stop()
}

// latencyInfo holds latency percentiles in nanoseconds
type latencyInfo struct {
	SetCount int64   `json:"set_count"`
	SetMean  float64 `json:"set_mean_ns"`
	SetP50   float64 `json:"set_p50_ns"`
	SetP99   float64 `json:"set_p99_ns"`
	GetCount int64   `json:"get_count"`
	GetMean  float64 `json:"get_mean_ns"`
	GetP50   float64 `json:"get_p50_ns"`
	GetP99   float64 `json:"get_p99_ns"`
}

func (t *timers) info() latencyInfo {
	set := t.set.Snapshot()
	get := t.get.Snapshot()
	setP := set.Percentiles([]float64{0.5, 0.99})
	getP := get.Percentiles([]float64{0.5, 0.99})
	return latencyInfo{
		SetCount: set.Count(),
		SetMean:  set.Mean(),
		SetP50:   setP[0],
		SetP99:   setP[1],
		GetCount: get.Count(),
		GetMean:  get.Mean(),
		GetP50:   getP[0],
		GetP99:   getP[1],
	}
}
