package rewrk

import (
	"runtime"
	"time"
)

const (
	defaultSampleWindow        = 10 * time.Second
	defaultConnectionRetryMax  = 3
	defaultProducerWaitWarnPct = 5.0
)

// config holds every Benchmark setting that can be overridden before
// Run, per spec.md section 4.8's list of configuration mutators.
type config struct {
	numWorkers              int
	sampleWindow            time.Duration
	connectionRetryMax      int
	validator               ResponseValidator
	producerWaitWarningPct  float64
}

func defaultConfig() config {
	return config{
		numWorkers:             defaultNumWorkers(),
		sampleWindow:           defaultSampleWindow,
		connectionRetryMax:     defaultConnectionRetryMax,
		validator:              DefaultResponseValidator,
		producerWaitWarningPct: defaultProducerWaitWarnPct,
	}
}

// defaultNumWorkers returns max(available_cpus-1, 1).
func defaultNumWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// SetNumWorkers overrides the default worker count (max(cpus-1, 1)).
func (b *Benchmark) SetNumWorkers(n int) *Benchmark {
	if n > 0 {
		b.cfg.numWorkers = n
	}
	return b
}

// SetSampleWindow overrides the default 10s sample window.
func (b *Benchmark) SetSampleWindow(d time.Duration) *Benchmark {
	if d > 0 {
		b.cfg.sampleWindow = d
	}
	return b
}

// SetConnectionRetryMax overrides the default retry budget of 3 on
// the Connector every worker clones.
func (b *Benchmark) SetConnectionRetryMax(n int) *Benchmark {
	if n >= 0 {
		b.cfg.connectionRetryMax = n
	}
	return b
}

// SetValidator overrides the DefaultResponseValidator.
func (b *Benchmark) SetValidator(v ResponseValidator) *Benchmark {
	if v != nil {
		b.cfg.validator = v
	}
	return b
}

// SetProducerWaitWarningThreshold overrides the default 5.0% producer
// wait ratio above which a worker logs a warning.
func (b *Benchmark) SetProducerWaitWarningThreshold(pct float64) *Benchmark {
	b.cfg.producerWaitWarningPct = pct
	return b
}
