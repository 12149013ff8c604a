// Package config holds the package-level tunables for the aSMC engine.
// cmd/asmcd reads the package vars below as its flag defaults; a
// library caller of engine.Run must still set Options explicitly.
package config

// NumParticles is the default target number of completed particles,
// used as the flag default in cmd/asmcd. engine.Run itself requires an
// explicit positive value on Options and never substitutes this in.
var NumParticles int = 1000

// BufferSize (ρ) is the default maximum buffer occupancy, used as the
// flag default in cmd/asmcd.
var BufferSize int = 100

// InitialFractionNumerator / InitialFractionDenominator control the
// fraction of BufferSize seeded with fresh particles at startup (ρ0 =
// ⌊3·bufferSize/5⌋, i.e. 3/5 by default).
const (
	InitialFractionNumerator   = 3
	InitialFractionDenominator = 5
)
