// Package observ measures benchmark phases.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records one timed step of a benchmark run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Ops   int
	Bytes int64
	Note  string
}

// Timer tracks a sequence of phases. It is not safe for concurrent use.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), now: time.Now}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index, recording how much work it did.
func (t *Timer) End(idx, ops int, bytes int64, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Ops = ops
	p.Bytes = bytes
	p.Note = note
}

// Summary renders the phases as an aligned text table.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-20s %9.2f ms %12.0f ops/s %9.1f MiB/s", p.Name, p.DurationMS, p.OpsPerSec, p.MiBPerSec)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport is the serializable view of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Ops        int     `json:"ops"`
	Bytes      int64   `json:"bytes"`
	OpsPerSec  float64 `json:"ops_per_sec"`
	MiBPerSec  float64 `json:"mib_per_sec"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report builds the per-phase rates and the total duration.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		pr := PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Ops:        phase.Ops,
			Bytes:      phase.Bytes,
			Note:       phase.Note,
		}
		if secs := phase.Dur.Seconds(); secs > 0 {
			pr.OpsPerSec = float64(phase.Ops) / secs
			pr.MiBPerSec = float64(phase.Bytes) / (1 << 20) / secs
		}
		report.Phases[i] = pr
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
