package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafasloth/iamf-tools/internal/bitio"
)

func TestParameterBlockObu_MixGainRoundTrip_Mode1ExplicitDurations(t *testing.T) {
	var p ParameterBlockObu
	p.ParameterID = 3
	p.ParamType = ParamDefinitionMixGain
	p.ParamDefinitionMode = 1
	p.Duration = 1920
	p.InitializeSubblocks(2)
	require.NoError(t, p.SetSubblockDuration(0, 960))
	require.NoError(t, p.SetSubblockDuration(1, 960))
	p.Subblocks[0].MixGain = ptr(NewLinearMixGain(0, 512))
	p.Subblocks[1].MixGain = ptr(NewLinearMixGain(512, 512))

	w := bitio.NewWriter(0)
	require.NoError(t, p.WritePayload(w))
	r := bitio.NewReader(w.Flush())
	ctx := ParameterBlockDecodeContext{ParamType: ParamDefinitionMixGain, ParamDefinitionMode: 1}
	got, err := ParseParameterBlockPayload(r, ctx)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParameterBlockObu_MixGainRoundTrip_Mode0Fixed(t *testing.T) {
	var p ParameterBlockObu
	p.ParameterID = 3
	p.ParamType = ParamDefinitionMixGain
	p.ParamDefinitionMode = 0
	p.Duration = 960
	p.InitializeSubblocks(1)
	require.NoError(t, p.SetSubblockDuration(0, 960))
	p.Subblocks[0].MixGain = ptr(NewStepMixGain(-1024))

	w := bitio.NewWriter(0)
	require.NoError(t, p.WritePayload(w))
	r := bitio.NewReader(w.Flush())
	ctx := ParameterBlockDecodeContext{
		ParamType:              ParamDefinitionMixGain,
		ParamDefinitionMode:    0,
		FixedDuration:          960,
		FixedSubblockDurations: []DecodedUleb128{960},
	}
	got, err := ParseParameterBlockPayload(r, ctx)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParameterBlockObu_DemixingRejectsMultipleSubblocks(t *testing.T) {
	var p ParameterBlockObu
	p.ParamType = ParamDefinitionDemixing
	p.InitializeSubblocks(2)
	p.Subblocks[0].Demixing = ptr(DemixingInfoParameterData{DmixpMode: 3})
	p.Subblocks[1].Demixing = ptr(DemixingInfoParameterData{DmixpMode: 3})
	require.Error(t, p.Validate())
}

func TestParameterBlockObu_SubblockSumMustMatchDuration(t *testing.T) {
	var p ParameterBlockObu
	p.ParamType = ParamDefinitionMixGain
	p.ParamDefinitionMode = 1
	p.Duration = 1000
	p.InitializeSubblocks(1)
	require.NoError(t, p.SetSubblockDuration(0, 999))
	p.Subblocks[0].MixGain = ptr(NewStepMixGain(0))
	require.Error(t, p.Validate())
}

func TestParameterBlockObu_ReconGainRoundTrip(t *testing.T) {
	var p ParameterBlockObu
	p.ParameterID = 9
	p.ParamType = ParamDefinitionReconGain
	p.ParamDefinitionMode = 0
	p.Duration = 960
	p.InitializeSubblocks(1)
	require.NoError(t, p.SetSubblockDuration(0, 960))
	e := ReconGainElement{ReconGainFlag: 0b101}
	e.ReconGain[0] = 10
	e.ReconGain[2] = 20
	p.Subblocks[0].ReconGain = ptr(ReconGainInfoParameterData{ReconGainElements: []ReconGainElement{e}})

	w := bitio.NewWriter(0)
	require.NoError(t, p.WritePayload(w))
	r := bitio.NewReader(w.Flush())
	ctx := ParameterBlockDecodeContext{
		ParamType:                 ParamDefinitionReconGain,
		ParamDefinitionMode:       0,
		FixedDuration:             960,
		FixedSubblockDurations:    []DecodedUleb128{960},
		NumReconGainPresentLayers: 1,
	}
	got, err := ParseParameterBlockPayload(r, ctx)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func ptr[T any](v T) *T { return &v }
