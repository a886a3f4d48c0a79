package iamf

import (
	"log/slog"
	"math"
)

// SampleProvider supplies decoded audio samples for a given audio element,
// start timestamp, and channel label, over one subblock's window. The
// original and demixed-then-downmixed programs are each given through a
// separate SampleProvider (spec.md §6's Sample access API); audio decoding
// itself is an external collaborator this package never performs.
type SampleProvider interface {
	Samples(audioElementID DecodedUleb128, startTimestamp int32, label string) ([]int32, error)
}

// ReconGainGenerator computes per-channel recon-gain values by comparing
// energy between the original and demixed-decoded programs. Verbose
// logging is emitted only for the first temporal unit it processes,
// matching spec.md §4.7's "only the first unit logs details" rule.
type ReconGainGenerator struct {
	original     SampleProvider
	demixed      SampleProvider
	logger       *slog.Logger
	verboseLeft  bool
}

// NewReconGainGenerator builds a generator backed by the given sample
// providers. logger may be nil, in which case slog.Default() is used.
func NewReconGainGenerator(original, demixed SampleProvider, logger *slog.Logger) *ReconGainGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconGainGenerator{original: original, demixed: demixed, logger: logger, verboseLeft: true}
}

// DisableVerboseLogging turns off the first-unit verbose log, for callers
// that want deterministic quiet output in tests.
func (g *ReconGainGenerator) DisableVerboseLogging() {
	g.verboseLeft = false
}

const opComputeReconGain = "ReconGainGenerator.ComputeReconGain"

// ComputeReconGain returns the energy ratio r = energy(demixed)/energy(original)
// for label's samples in the subblock starting at t for audio element aid,
// clipped to [0,1] per spec.md §4.6.
func (g *ReconGainGenerator) ComputeReconGain(label string, aid DecodedUleb128, t int32) (float64, error) {
	origSamples, err := g.original.Samples(aid, t, label)
	if err != nil {
		return 0, unknownf(opComputeReconGain, "reading original samples for %s: %v", label, err)
	}
	demixedSamples, err := g.demixed.Samples(aid, t, label)
	if err != nil {
		return 0, unknownf(opComputeReconGain, "reading demixed samples for %s: %v", label, err)
	}
	origEnergy := sumSquares(origSamples)
	demixedEnergy := sumSquares(demixedSamples)
	var ratio float64
	if origEnergy == 0 {
		ratio = 0
	} else {
		ratio = demixedEnergy / origEnergy
	}
	ratio = clamp01(ratio)
	if g.verboseLeft {
		g.logger.Info("computed recon gain", "label", label, "audio_element_id", aid, "start_timestamp", t, "ratio", ratio)
	}
	return ratio, nil
}

func sumSquares(samples []int32) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ScaleReconGain converts an energy ratio in [0,1] to the 8-bit quantized
// value written on the wire: round(r*255) clamped to [0,255].
func ScaleReconGain(ratio float64) uint8 {
	scaled := math.Round(clamp01(ratio) * 255)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

// endOfFirstTemporalUnit marks that the generator has now processed one
// temporal unit, so subsequent ComputeReconGain calls stay quiet.
func (g *ReconGainGenerator) endOfFirstTemporalUnit() {
	g.verboseLeft = false
}
