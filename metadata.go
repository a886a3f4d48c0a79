package iamf

// ParameterBlockMetadata is the host-facing description of one Parameter
// Block's worth of data for one temporal unit (spec.md §6's Input). The
// host builds one of these per parameter_id per unit and passes it to
// Generator.AddMetadata, which routes it by the parameter_id's
// ParamDefinition type into the matching typed field below.
//
// Duration and ConstantSubblockDuration are only read when the
// parameter_id's ParamDefinition has ParamDefinitionMode == 1; under mode 0
// the timing is fixed on the ParamDefinition itself and they are ignored.
// NumSubblocks is not read in either mode: the subblock count follows from
// ConstantSubblockDuration or from the number of subblock entries supplied.
type ParameterBlockMetadata struct {
	ParameterID              DecodedUleb128
	StartTimestamp           int32
	Duration                 DecodedUleb128
	ConstantSubblockDuration DecodedUleb128
	NumSubblocks             DecodedUleb128

	MixGainSubblocks  []MixGainSubblockMetadata
	DemixingSubblock  *DemixingSubblockMetadata
	ReconGainSubblock *ReconGainSubblockMetadata
}

// MixGainSubblockMetadata is one subblock's worth of user-supplied mix-gain
// curve data. Start/End/Control arrive as 32-bit values and are
// range-checked into int16 during generation (spec.md §4.7 point 3);
// ControlPointRelativeTime is range-checked into a uint8 in [0,255].
type MixGainSubblockMetadata struct {
	Duration                 DecodedUleb128
	AnimationType            AnimationType
	Start                    int32
	End                      int32
	Control                  int32
	ControlPointRelativeTime int32
}

// DemixingSubblockMetadata is the user-supplied demixing subblock (always
// exactly one per Parameter Block, per spec.md §4.7).
type DemixingSubblockMetadata struct {
	DmixpMode DemixingMode
	Reserved  uint8
}

// ReconGainLayerMetadata is one layer's user-declared recon-gain data.
// BitPositionToGain holds the (bit_position, gain) pairs the user supplies
// directly; layers the owning audio element marks recon_gain_is_present
// must appear here in layer order, others must not.
type ReconGainLayerMetadata struct {
	BitPositionToGain map[int]uint8
	// OverrideComputedReconGains, when set, makes the generator emit these
	// values verbatim instead of validating them against its own
	// ComputeReconGain results (spec.md §4.7 point 3c).
	OverrideComputedReconGains bool
}

// ReconGainSubblockMetadata is the user-supplied recon-gain subblock
// (always exactly one per Parameter Block, per spec.md §4.7).
type ReconGainSubblockMetadata struct {
	Layers []ReconGainLayerMetadata
}

const opReconGainLayerToElement = "reconGainLayerToElement"

// toReconGainElement packs BitPositionToGain into the wire's flag+array
// form, failing if a bit position is out of [0,11] (property 5 is enforced
// separately by ReconGainElement.Validate once the element is built).
func (l ReconGainLayerMetadata) toReconGainElement() (ReconGainElement, error) {
	var e ReconGainElement
	for pos, gain := range l.BitPositionToGain {
		if pos < 0 || pos >= numReconGainPositions {
			return e, invalidArgf(opReconGainLayerToElement, "bit position %d out of range [0,%d)", pos, numReconGainPositions)
		}
		if gain == 0 {
			continue
		}
		e.ReconGainFlag |= 1 << uint(pos)
		e.ReconGain[pos] = gain
	}
	return e, nil
}
