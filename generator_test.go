package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, reconGainGen *ReconGainGenerator, audioElements map[DecodedUleb128]AudioElementObu, paramDefs map[DecodedUleb128]ParamDefinitionTableEntry) *Generator {
	g := NewGenerator(reconGainGen)
	require.NoError(t, g.Initialize(IASequenceHeaderObu{}, audioElements, nil, paramDefs))
	return g
}

// TestGenerator_MixGainStep_S1 reproduces spec.md's S1 scenario end to end
// through the Generator pipeline.
func TestGenerator_MixGainStep_S1(t *testing.T) {
	pd, err := NewFixedParamDefinition(ParamDefinitionMixGain, 1, 48000, 960, 960, nil)
	require.NoError(t, err)
	g := newTestGenerator(t, nil, nil, map[DecodedUleb128]ParamDefinitionTableEntry{
		1: {Type: ParamDefinitionMixGain, ParamDefinition: pd},
	})

	duration, err := g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    1,
		StartTimestamp: 0,
		MixGainSubblocks: []MixGainSubblockMetadata{
			{AnimationType: AnimateStep, Start: -1024},
		},
	})
	require.NoError(t, err)
	require.EqualValues(t, 960, duration)

	blocks, err := g.GenerateMixGain()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.EqualValues(t, 0, blocks[0].StartTimestamp)
	require.EqualValues(t, 960, blocks[0].EndTimestamp)
	require.Equal(t, int16(-1024), blocks[0].Obu.Subblocks[0].MixGain.Start)
}

// TestGenerator_MixGainLinear_S2 reproduces spec.md's S2 scenario: mode=1,
// two 960-sample subblocks, and a hard requirement that the next emit
// claims start=1920.
func TestGenerator_MixGainLinear_S2(t *testing.T) {
	pd := NewPerBlockParamDefinition(ParamDefinitionMixGain, 2, 48000)
	g := newTestGenerator(t, nil, nil, map[DecodedUleb128]ParamDefinitionTableEntry{
		2: {Type: ParamDefinitionMixGain, ParamDefinition: pd},
	})

	_, err := g.AddMetadata(ParameterBlockMetadata{
		ParameterID:              2,
		StartTimestamp:           0,
		Duration:                 1920,
		ConstantSubblockDuration: 0,
		MixGainSubblocks: []MixGainSubblockMetadata{
			{Duration: 960, AnimationType: AnimateLinear, Start: 0, End: 512},
			{Duration: 960, AnimationType: AnimateLinear, Start: 512, End: 512},
		},
	})
	require.NoError(t, err)

	blocks, err := g.GenerateMixGain()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.EqualValues(t, 0, blocks[0].StartTimestamp)
	require.EqualValues(t, 1920, blocks[0].EndTimestamp)
	require.Len(t, blocks[0].Obu.Subblocks, 2)
	require.EqualValues(t, 960, blocks[0].Obu.Subblocks[1].Duration)

	// The next emit for parameter_id 2 must claim start=1920.
	_, err = g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    2,
		StartTimestamp: 0, // wrong: should be 1920
		Duration:       960,
		MixGainSubblocks: []MixGainSubblockMetadata{
			{Duration: 960, AnimationType: AnimateStep, Start: 0},
		},
	})
	require.NoError(t, err) // AddMetadata only queues; the violation surfaces at Generate time.
	_, err = g.GenerateMixGain()
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func reconGainTestAudioElements() map[DecodedUleb128]AudioElementObu {
	return map[DecodedUleb128]AudioElementObu{
		1: {
			AudioElementID: 1,
			Type:           AudioElementChannelBased,
			ScalableChannelLayout: &ScalableChannelLayoutConfig{Layers: []ChannelAudioLayerConfig{
				{LoudspeakerLayout: LayoutStereo, ReconGainIsPresent: false, SubstreamCount: 1, CoupledSubstreamCount: 1},
				{LoudspeakerLayout: Layout5_1, ReconGainIsPresent: true, SubstreamCount: 4, CoupledSubstreamCount: 1},
			}},
		},
	}
}

func reconGainTestSamples() (orig, demixed fakeSampleProvider) {
	return fakeSampleProvider{samples: map[string][]int32{
			labelL3:  {1, 1},
			labelR3:  {1, 1},
			labelLs5: {2, 0},
			labelRs5: {2, 0},
		}}, fakeSampleProvider{samples: map[string][]int32{
			labelL3:  {1, 0},
			labelR3:  {1, 0},
			labelLs5: {1, 0},
			labelRs5: {1, 0},
		}}
}

// TestGenerator_ReconGain_S4 reproduces spec.md's S4 scenario: layer 1's
// demixed labels {D_L3,D_R3,D_Ls5,D_Rs5} scale to {128,128,64,64} and pack
// into flag bits {0,2,3,4} = 0b11101 = 29.
func TestGenerator_ReconGain_S4(t *testing.T) {
	orig, demixed := reconGainTestSamples()
	reconGainGen := NewReconGainGenerator(orig, demixed, nil)
	pd := NewPerBlockParamDefinition(ParamDefinitionReconGain, 20, 48000).WithReconGain(1)
	g := newTestGenerator(t, reconGainGen, reconGainTestAudioElements(), map[DecodedUleb128]ParamDefinitionTableEntry{
		20: {Type: ParamDefinitionReconGain, ParamDefinition: pd},
	})

	_, err := g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    20,
		StartTimestamp: 0,
		Duration:       2,
		ReconGainSubblock: &ReconGainSubblockMetadata{
			Layers: []ReconGainLayerMetadata{
				{BitPositionToGain: map[int]uint8{0: 128, 2: 128, 3: 64, 4: 64}},
			},
		},
	})
	require.NoError(t, err)

	blocks, err := g.GenerateReconGain()
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	elements := blocks[0].Obu.Subblocks[0].ReconGain.ReconGainElements
	require.Len(t, elements, 1)
	require.EqualValues(t, 0b11101, elements[0].ReconGainFlag)
	require.EqualValues(t, 128, elements[0].ReconGain[0])
	require.EqualValues(t, 128, elements[0].ReconGain[2])
	require.EqualValues(t, 64, elements[0].ReconGain[3])
	require.EqualValues(t, 64, elements[0].ReconGain[4])
}

// TestGenerator_ReconGain_MismatchRejected_S5 reproduces spec.md's S5
// scenario: the user omits a position the computed values require, and the
// call fails with InvalidArgument.
func TestGenerator_ReconGain_MismatchRejected_S5(t *testing.T) {
	orig, demixed := reconGainTestSamples()
	reconGainGen := NewReconGainGenerator(orig, demixed, nil)
	pd := NewPerBlockParamDefinition(ParamDefinitionReconGain, 20, 48000).WithReconGain(1)
	g := newTestGenerator(t, reconGainGen, reconGainTestAudioElements(), map[DecodedUleb128]ParamDefinitionTableEntry{
		20: {Type: ParamDefinitionReconGain, ParamDefinition: pd},
	})

	_, err := g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    20,
		StartTimestamp: 0,
		Duration:       2,
		ReconGainSubblock: &ReconGainSubblockMetadata{
			Layers: []ReconGainLayerMetadata{
				// Omits position 0 (D_L3), which the computation requires.
				{BitPositionToGain: map[int]uint8{2: 128, 3: 64, 4: 64}},
			},
		},
	})
	require.NoError(t, err)

	_, err = g.GenerateReconGain()
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

// TestGenerator_TimingGap_S6 reproduces spec.md's S6 scenario through the
// full pipeline.
func TestGenerator_TimingGap_S6(t *testing.T) {
	pd := NewPerBlockParamDefinition(ParamDefinitionMixGain, 1, 48000)
	g := newTestGenerator(t, nil, nil, map[DecodedUleb128]ParamDefinitionTableEntry{
		1: {Type: ParamDefinitionMixGain, ParamDefinition: pd},
	})

	_, err := g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    1,
		StartTimestamp: 0,
		Duration:       100,
		MixGainSubblocks: []MixGainSubblockMetadata{
			{Duration: 100, AnimationType: AnimateStep, Start: 0},
		},
	})
	require.NoError(t, err)
	_, err = g.GenerateMixGain()
	require.NoError(t, err)

	_, err = g.AddMetadata(ParameterBlockMetadata{
		ParameterID:    1,
		StartTimestamp: 200,
		Duration:       50,
		MixGainSubblocks: []MixGainSubblockMetadata{
			{Duration: 50, AnimationType: AnimateStep, Start: 0},
		},
	})
	require.NoError(t, err)
	_, err = g.GenerateMixGain()
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func TestGenerator_GenerateBeforeInitialize_FailedPrecondition(t *testing.T) {
	g := NewGenerator(nil)
	_, err := g.GenerateMixGain()
	require.Error(t, err)
	require.Equal(t, FailedPrecondition, KindOf(err))
}

func TestGenerator_Initialize_RejectsDanglingAudioElementRef(t *testing.T) {
	pd := NewPerBlockParamDefinition(ParamDefinitionReconGain, 1, 48000).WithReconGain(99)
	g := NewGenerator(nil)
	err := g.Initialize(IASequenceHeaderObu{}, nil, nil, map[DecodedUleb128]ParamDefinitionTableEntry{
		1: {Type: ParamDefinitionReconGain, ParamDefinition: pd},
	})
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func TestGenerator_Initialize_RejectsUnsupportedParamType(t *testing.T) {
	pd := NewPerBlockParamDefinition(ParamDefinitionReservedStart, 1, 48000)
	g := NewGenerator(nil)
	err := g.Initialize(IASequenceHeaderObu{}, nil, nil, map[DecodedUleb128]ParamDefinitionTableEntry{
		1: {Type: ParamDefinitionReservedStart, ParamDefinition: pd},
	})
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}
