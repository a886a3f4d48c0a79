package iamf

// DecodedUleb128 is an unsigned 32-bit integer serialized on the wire as a
// ULEB128 (1-5 bytes, 7 data bits per byte, MSB of each byte signals
// continuation).
type DecodedUleb128 = uint32

// ParameterDefinitionType tags the polymorphic ParamDefinition. It is
// serialized as a ULEB128.
type ParameterDefinitionType uint32

const (
	ParamDefinitionMixGain   ParameterDefinitionType = 0
	ParamDefinitionDemixing  ParameterDefinitionType = 1
	ParamDefinitionReconGain ParameterDefinitionType = 2
	// ParamDefinitionReservedStart begins the reserved/extension range;
	// any value >= this is carried as a length-prefixed opaque blob.
	ParamDefinitionReservedStart ParameterDefinitionType = 3
)

func (t ParameterDefinitionType) String() string {
	switch t {
	case ParamDefinitionMixGain:
		return "mix_gain"
	case ParamDefinitionDemixing:
		return "demixing"
	case ParamDefinitionReconGain:
		return "recon_gain"
	default:
		return "reserved"
	}
}

// LoudspeakerLayout is a 4-bit enum naming a channel layer's speaker
// layout.
type LoudspeakerLayout uint8

const (
	LayoutMono     LoudspeakerLayout = 0
	LayoutStereo   LoudspeakerLayout = 1
	Layout5_1      LoudspeakerLayout = 2
	Layout5_1_2    LoudspeakerLayout = 3
	Layout5_1_4    LoudspeakerLayout = 4
	Layout7_1      LoudspeakerLayout = 5
	Layout7_1_2    LoudspeakerLayout = 6
	Layout7_1_4    LoudspeakerLayout = 7
	Layout3_1_2    LoudspeakerLayout = 8
	LayoutBinaural LoudspeakerLayout = 9
	// LayoutReservedBegin..LayoutReservedEnd = [10,15].
	LayoutReservedBegin LoudspeakerLayout = 10
	LayoutReservedEnd   LoudspeakerLayout = 15
)

// ChannelNumbers describes a layout's channel budget: the number of
// surround (non-height, non-LFE) channels, height channels, and LFE
// channels.
type ChannelNumbers struct {
	Surround int
	Height   int
	LFE      int
}

// channelNumbersForLayout gives the (surround, height, lfe) triple for each
// defined LoudspeakerLayout, per the IAMF channel layout table.
func channelNumbersForLayout(layout LoudspeakerLayout) (ChannelNumbers, error) {
	switch layout {
	case LayoutMono:
		return ChannelNumbers{Surround: 1, Height: 0, LFE: 0}, nil
	case LayoutStereo:
		return ChannelNumbers{Surround: 2, Height: 0, LFE: 0}, nil
	case Layout5_1:
		return ChannelNumbers{Surround: 5, Height: 0, LFE: 1}, nil
	case Layout5_1_2:
		return ChannelNumbers{Surround: 5, Height: 2, LFE: 1}, nil
	case Layout5_1_4:
		return ChannelNumbers{Surround: 5, Height: 4, LFE: 1}, nil
	case Layout7_1:
		return ChannelNumbers{Surround: 7, Height: 0, LFE: 1}, nil
	case Layout7_1_2:
		return ChannelNumbers{Surround: 7, Height: 2, LFE: 1}, nil
	case Layout7_1_4:
		return ChannelNumbers{Surround: 7, Height: 4, LFE: 1}, nil
	case Layout3_1_2:
		return ChannelNumbers{Surround: 3, Height: 2, LFE: 1}, nil
	case LayoutBinaural:
		return ChannelNumbers{Surround: 2, Height: 0, LFE: 0}, nil
	default:
		return ChannelNumbers{}, invalidArgf("channelNumbersForLayout", "unsupported or reserved loudspeaker layout %d", layout)
	}
}

// TotalChannels returns the sum of surround, height, and LFE channels.
func (c ChannelNumbers) TotalChannels() int {
	return c.Surround + c.Height + c.LFE
}

// AudioElementType is a 3-bit enum naming the kind of Audio Element.
type AudioElementType uint8

const (
	AudioElementChannelBased AudioElementType = 0
	AudioElementSceneBased   AudioElementType = 1
	// AudioElementBeginReserved..AudioElementEndReserved = [2,7].
	AudioElementBeginReserved AudioElementType = 2
	AudioElementEndReserved   AudioElementType = 7
)

// AmbisonicsMode is a ULEB128 enum naming the method of coding Ambisonics.
type AmbisonicsMode DecodedUleb128

const (
	AmbisonicsModeMono       AmbisonicsMode = 0
	AmbisonicsModeProjection AmbisonicsMode = 1
	AmbisonicsModeReservedStart AmbisonicsMode = 2
)

// AnimationType is a 2-bit enum naming the shape of a mix-gain subblock's
// animation curve.
type AnimationType uint8

const (
	AnimateStep   AnimationType = 0
	AnimateLinear AnimationType = 1
	AnimateBezier AnimationType = 2
)

// DemixingMode is a 3-bit enum; values 0-6 are defined by the IAMF spec,
// 7 is reserved.
type DemixingMode uint8

const maxDemixingMode DemixingMode = 6

// ProfileVersion names the IA Sequence Header's primary_profile field.
type ProfileVersion uint8

const (
	ProfileSimple       ProfileVersion = 0
	ProfileBase         ProfileVersion = 1
	ProfileBaseEnhanced ProfileVersion = 2
)
