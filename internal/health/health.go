// Package health reports host and process vitals for the daemon's health
// endpoint. Grounded on the teacher's load_history.go / instance_reporter.go
// use of gopsutil for CPU core counts and load averages, collapsed from a
// ticking historical tracker into a single on-demand snapshot.
package health

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time read of host and process health.
type Snapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	CPUCores     int       `json:"cpu_cores"`
	Load1        float64   `json:"load1"`
	Load5        float64   `json:"load5"`
	Load15       float64   `json:"load15"`
	MemUsedBytes uint64    `json:"mem_used_bytes"`
	MemTotalByte uint64    `json:"mem_total_bytes"`
	Goroutines   int       `json:"goroutines"`
	Status       string    `json:"status"` // "ok", "warning", "critical"
}

// cpuCores caches the core count; cpu.Info() shells out to /proc and is not
// worth re-reading on every health check.
var cpuCores = detectCPUCores()

func detectCPUCores() int {
	info, err := cpu.Info()
	if err != nil || len(info) == 0 {
		return runtime.NumCPU()
	}
	total := 0
	for _, c := range info {
		total += int(c.Cores)
	}
	if total == 0 {
		return runtime.NumCPU()
	}
	return total
}

// Now captures a health Snapshot.
func Now() Snapshot {
	s := Snapshot{
		Timestamp:  time.Now(),
		CPUCores:   cpuCores,
		Goroutines: runtime.NumGoroutine(),
		Status:     "ok",
	}

	if avg, err := load.Avg(); err == nil {
		s.Load1, s.Load5, s.Load15 = avg.Load1, avg.Load5, avg.Load15
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsedBytes = vm.Used
		s.MemTotalByte = vm.Total
	}

	s.Status = statusFor(s.Load1, s.CPUCores)
	return s
}

// statusFor classifies load1-per-core the way the teacher's load tracker
// grades a sample: under 0.7 per core is ok, under 1.0 is a warning, at or
// above full saturation is critical.
func statusFor(load1 float64, cores int) string {
	if cores <= 0 {
		return "ok"
	}
	perCore := load1 / float64(cores)
	switch {
	case perCore >= 1.0:
		return "critical"
	case perCore >= 0.7:
		return "warning"
	default:
		return "ok"
	}
}
