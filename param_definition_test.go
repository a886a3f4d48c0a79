package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafasloth/iamf-tools/internal/bitio"
)

func TestNewFixedParamDefinition_ConstantSubblock(t *testing.T) {
	p, err := NewFixedParamDefinition(ParamDefinitionMixGain, 1, 48000, 960, 960, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, p.NumSubblocks())
}

func TestNewFixedParamDefinition_ExplicitSubblocksMustSumToDuration(t *testing.T) {
	_, err := NewFixedParamDefinition(ParamDefinitionMixGain, 1, 48000, 1920, 0, []DecodedUleb128{960, 900})
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func TestParamDefinitionRoundTrip_Demixing(t *testing.T) {
	p := NewPerBlockParamDefinition(ParamDefinitionDemixing, 7, 48000).WithDemixing(3, 0)
	w := bitio.NewWriter(0)
	require.NoError(t, p.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseParamDefinition(r, ParamDefinitionDemixing)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParamDefinitionRoundTrip_ReconGain(t *testing.T) {
	p, err := NewFixedParamDefinition(ParamDefinitionReconGain, 2, 48000, 1920, 0, []DecodedUleb128{960, 960})
	require.NoError(t, err)
	p = p.WithReconGain(42)
	w := bitio.NewWriter(0)
	require.NoError(t, p.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseParamDefinition(r, ParamDefinitionReconGain)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParamDefinitionRoundTrip_Extension(t *testing.T) {
	p, err := NewExtensionParamDefinition(ParamDefinitionReservedStart, 9, 1, []byte{0xde, 0xad})
	require.NoError(t, err)
	w := bitio.NewWriter(0)
	require.NoError(t, p.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseParamDefinition(r, ParamDefinitionReservedStart)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestNewExtensionParamDefinition_RejectsNonReservedType(t *testing.T) {
	_, err := NewExtensionParamDefinition(ParamDefinitionMixGain, 1, 1, nil)
	require.Error(t, err)
}

func TestParamDefinitionValidate_BadMode(t *testing.T) {
	p := ParamDefinition{ParamDefinitionMode: 2}
	err := p.Validate()
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}
