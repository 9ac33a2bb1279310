package telemetry

// RollingFuelMonitor keeps the last maxSamples fuel-utilization
// percentages to smooth out single-execution spikes.
type RollingFuelMonitor struct {
	samples    []float64
	maxSamples int
}

// NewRollingFuelMonitor returns a monitor retaining at most maxSamples
// values.
func NewRollingFuelMonitor(maxSamples int) *RollingFuelMonitor {
	if maxSamples <= 0 {
		maxSamples = 60
	}
	return &RollingFuelMonitor{maxSamples: maxSamples, samples: make([]float64, 0, maxSamples)}
}

// Sample records one utilization_percent value, evicting the oldest
// sample once the window is full.
func (m *RollingFuelMonitor) Sample(utilizationPercent float64) {
	m.samples = append(m.samples, utilizationPercent)
	if len(m.samples) > m.maxSamples {
		m.samples = m.samples[1:]
	}
}

// Average returns the mean of the retained samples, or 0 with none yet.
func (m *RollingFuelMonitor) Average() float64 {
	if len(m.samples) == 0 {
		return 0
	}
	var total float64
	for _, s := range m.samples {
		total += s
	}
	return total / float64(len(m.samples))
}

// IsHealthy reports whether the rolling average utilization stays below
// the critical tier (90%), i.e. the workload isn't chronically under-budgeted.
func (m *RollingFuelMonitor) IsHealthy() bool {
	return m.Average() < 90.0
}
