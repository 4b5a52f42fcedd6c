// Package observability aggregates relay counters and process-level stats
// for the status surface and the telemetry reporter.
package observability

import (
	"os"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// Metrics holds atomic relay counters. All methods are safe for concurrent
// use from the hot path.
type Metrics struct {
	relayed          uint64
	duplicates       uint64
	invites          uint64
	rejectedPayloads uint64
}

type Snapshot struct {
	Relayed          uint64 `json:"relayed"`
	Duplicates       uint64 `json:"duplicates"`
	Invites          uint64 `json:"invites"`
	RejectedPayloads uint64 `json:"rejectedPayloads"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrRelayed() {
	atomic.AddUint64(&m.relayed, 1)
}

func (m *Metrics) IncrDuplicates() {
	atomic.AddUint64(&m.duplicates, 1)
}

func (m *Metrics) IncrInvites() {
	atomic.AddUint64(&m.invites, 1)
}

func (m *Metrics) IncrRejectedPayloads() {
	atomic.AddUint64(&m.rejectedPayloads, 1)
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Relayed:          atomic.LoadUint64(&m.relayed),
		Duplicates:       atomic.LoadUint64(&m.duplicates),
		Invites:          atomic.LoadUint64(&m.invites),
		RejectedPayloads: atomic.LoadUint64(&m.rejectedPayloads),
	}
}

// ProcessUsage is a point-in-time view of this process's resource usage.
type ProcessUsage struct {
	CPUPercent float64 `json:"cpuPercent"`
	RSSMb      uint64  `json:"rssMb"`
}

// SelfUsage samples CPU and resident memory of the running process.
func SelfUsage() (ProcessUsage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessUsage{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return ProcessUsage{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return ProcessUsage{}, err
	}
	return ProcessUsage{
		CPUPercent: cpu,
		RSSMb:      mem.RSS / 1024 / 1024,
	}, nil
}
