package sim

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one value from a probability distribution.
type Sampler interface {
	Sample() float64
}

// ConstantSampler always returns the same value. Useful for deterministic scenarios.
type ConstantSampler float64

func (c ConstantSampler) Sample() float64 { return float64(c) }

// DistSampler adapts a gonum distribution to the Sampler interface.
type DistSampler struct {
	Dist distuv.Rander
}

func (s DistSampler) Sample() float64 { return s.Dist.Rand() }

// WorkloadGenerator produces the samples that drive client behaviour and owns the
// request ID counter.
//
// Think and retry-think samples are truncated at zero: a negative draw becomes 0,
// it is never resampled.
type WorkloadGenerator struct {
	EaseIn     Sampler // initial arrival offset, only used for the starting population
	Service    Sampler // total service demand of a request
	Timeout    Sampler // client deadline, relative to arrival
	Think      Sampler // delay between a successful response and the next request
	RetryThink Sampler // delay before retrying after a drop or a timeout

	nextID int64
}

// NewWorkloadGenerator builds the configured distributions, each on its own
// subsystem stream of rng.
func NewWorkloadGenerator(cfg *Config, rng *PartitionedRNG) *WorkloadGenerator {
	return &WorkloadGenerator{
		EaseIn: DistSampler{distuv.Uniform{
			Min: 0, Max: cfg.EaseInTime, Src: rng.ForSubsystem(SubsystemEaseIn),
		}},
		Service: DistSampler{distuv.Exponential{
			Rate: 1 / cfg.ServiceTimeMean, Src: rng.ForSubsystem(SubsystemService),
		}},
		Timeout: DistSampler{distuv.Uniform{
			Min: cfg.TimeoutMin, Max: cfg.TimeoutMax, Src: rng.ForSubsystem(SubsystemTimeout),
		}},
		Think: DistSampler{distuv.Normal{
			Mu: cfg.ThinkTimeMean, Sigma: cfg.ThinkTimeStdDev, Src: rng.ForSubsystem(SubsystemThink),
		}},
		RetryThink: DistSampler{distuv.Normal{
			Mu: cfg.RetryThinkTimeMean, Sigma: cfg.RetryThinkTimeStdDev, Src: rng.ForSubsystem(SubsystemRetryThink),
		}},
	}
}

// NextID allocates the next request ID.
func (g *WorkloadGenerator) NextID() int64 {
	id := g.nextID
	g.nextID++
	return id
}

func (g *WorkloadGenerator) EaseInOffset() float64   { return math.Max(0, g.EaseIn.Sample()) }
func (g *WorkloadGenerator) ServiceTime() float64    { return math.Max(0, g.Service.Sample()) }
func (g *WorkloadGenerator) TimeoutOffset() float64  { return math.Max(0, g.Timeout.Sample()) }
func (g *WorkloadGenerator) ThinkTime() float64      { return math.Max(0, g.Think.Sample()) }
func (g *WorkloadGenerator) RetryThinkTime() float64 { return math.Max(0, g.RetryThink.Sample()) }
