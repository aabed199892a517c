package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

// Each workload distribution draws from its own stream, so changing one
// distribution's parameters leaves the samples of the others unchanged.
const (
	SubsystemEaseIn     = "ease_in"
	SubsystemService    = "service"
	SubsystemTimeout    = "timeout"
	SubsystemThink      = "think"
	SubsystemRetryThink = "retry_think"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated random sources per subsystem.
//
// Derivation: a PCG source seeded with (masterSeed, fnv1a64(subsystemName)).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.PCG
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.PCG),
	}
}

// ForSubsystem returns a deterministically-seeded source for the named subsystem.
// The same subsystem name always returns the same source instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) rand.Source {
	if src, ok := p.subsystems[name]; ok {
		return src
	}
	src := rand.NewPCG(uint64(p.key), fnv1a64(name))
	p.subsystems[name] = src
	return src
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
