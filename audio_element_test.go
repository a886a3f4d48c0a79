package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafasloth/iamf-tools/internal/bitio"
)

func TestScalableChannelLayoutConfig_ChannelGrowthInvariant(t *testing.T) {
	cfg := ScalableChannelLayoutConfig{Layers: []ChannelAudioLayerConfig{
		{LoudspeakerLayout: LayoutStereo, SubstreamCount: 1, CoupledSubstreamCount: 1},
		{LoudspeakerLayout: LayoutStereo, SubstreamCount: 1, CoupledSubstreamCount: 1},
	}}
	err := cfg.Validate()
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func TestScalableChannelLayoutConfig_RoundTrip(t *testing.T) {
	cfg := ScalableChannelLayoutConfig{Layers: []ChannelAudioLayerConfig{
		{LoudspeakerLayout: LayoutStereo, SubstreamCount: 1, CoupledSubstreamCount: 1},
		{
			LoudspeakerLayout:     Layout5_1,
			OutputGainIsPresent:   true,
			SubstreamCount:        4,
			CoupledSubstreamCount: 1,
			OutputGainFlag:        0b111111,
			OutputGain:            -512,
		},
	}}
	w := bitio.NewWriter(0)
	require.NoError(t, cfg.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseScalableChannelLayoutConfig(r)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestGetNextValidOutputChannelCount(t *testing.T) {
	tests := []struct {
		current int
		want    int
	}{
		{0, 1},
		{1, 4},
		{4, 9},
		{9, 16},
		{16, 25},
	}
	for _, tc := range tests {
		got, err := GetNextValidOutputChannelCount(tc.current)
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
	_, err := GetNextValidOutputChannelCount(25)
	require.Error(t, err)
}

func TestAmbisonicsMonoConfig_RoundTrip(t *testing.T) {
	cfg := AmbisonicsMonoConfig{
		OutputChannelCount: 4,
		SubstreamCount:     4,
		ChannelMapping:     []uint8{0, 1, 2, 3},
	}
	w := bitio.NewWriter(0)
	require.NoError(t, cfg.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseAmbisonicsMonoConfig(r)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestAmbisonicsMonoConfig_InactiveSentinel(t *testing.T) {
	cfg := AmbisonicsMonoConfig{
		OutputChannelCount: 4,
		SubstreamCount:     3,
		ChannelMapping:     []uint8{0, 1, 2, ambisonicsInactiveChannel},
	}
	require.NoError(t, cfg.Validate())
}

func TestAmbisonicsMonoConfig_RejectsNonSquareChannelCount(t *testing.T) {
	cfg := AmbisonicsMonoConfig{OutputChannelCount: 5, SubstreamCount: 5, ChannelMapping: make([]uint8, 5)}
	require.Error(t, cfg.Validate())
}

func TestAmbisonicsProjectionConfig_RoundTrip(t *testing.T) {
	cfg := AmbisonicsProjectionConfig{
		OutputChannelCount:    4,
		SubstreamCount:        2,
		CoupledSubstreamCount: 1,
		DemixingMatrix:        make([]int16, 3*4),
	}
	for i := range cfg.DemixingMatrix {
		cfg.DemixingMatrix[i] = int16(i * 100)
	}
	w := bitio.NewWriter(0)
	require.NoError(t, cfg.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseAmbisonicsProjectionConfig(r)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestAudioElementObu_ChannelBasedRoundTrip(t *testing.T) {
	var a AudioElementObu
	a.AudioElementID = 1
	a.Type = AudioElementChannelBased
	a.CodecConfigID = 99
	require.NoError(t, a.InitializeAudioSubstreams([]DecodedUleb128{10, 11}))
	pd, err := NewFixedParamDefinition(ParamDefinitionMixGain, 5, 48000, 960, 960, nil)
	require.NoError(t, err)
	require.NoError(t, a.InitializeParams([]AudioElementParam{{Type: ParamDefinitionMixGain, ParamDefinition: pd}}))
	a.ScalableChannelLayout = &ScalableChannelLayoutConfig{Layers: []ChannelAudioLayerConfig{
		{LoudspeakerLayout: LayoutStereo, SubstreamCount: 2, CoupledSubstreamCount: 1},
	}}

	w := bitio.NewWriter(0)
	require.NoError(t, a.WritePayload(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseAudioElementPayload(r)
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestAudioElementObu_InitializeAudioSubstreams_RejectsDuplicates(t *testing.T) {
	var a AudioElementObu
	err := a.InitializeAudioSubstreams([]DecodedUleb128{1, 1})
	require.Error(t, err)
}

func TestAudioElementObu_SceneBasedRoundTrip(t *testing.T) {
	var a AudioElementObu
	a.AudioElementID = 2
	a.Type = AudioElementSceneBased
	a.CodecConfigID = 5
	require.NoError(t, a.InitializeAudioSubstreams([]DecodedUleb128{1}))
	ambi := NewAmbisonicsMonoConfig(AmbisonicsMonoConfig{
		OutputChannelCount: 1,
		SubstreamCount:     1,
		ChannelMapping:     []uint8{0},
	})
	a.Ambisonics = &ambi

	w := bitio.NewWriter(0)
	require.NoError(t, a.WritePayload(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseAudioElementPayload(r)
	require.NoError(t, err)
	require.Equal(t, a, got)
}

func TestAudioElementObu_ValidateRequiresMatchingConfig(t *testing.T) {
	a := AudioElementObu{Type: AudioElementChannelBased}
	require.Error(t, a.Validate())
}
