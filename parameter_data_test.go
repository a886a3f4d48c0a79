package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rafasloth/iamf-tools/internal/bitio"
)

// TestMixGainStep_S1 reproduces spec.md's S1 scenario: a step subblock with
// start=-1024 serializes to the byte 0x00 (2-bit step + 6-bit pad) followed
// by FC 00.
func TestMixGainStep_S1(t *testing.T) {
	data := NewStepMixGain(-1024)
	w := bitio.NewWriter(0)
	require.NoError(t, data.Write(w))
	require.Equal(t, []byte{0x00, 0xFC, 0x00}, w.Flush())
}

func TestMixGainParameterData_RoundTrip(t *testing.T) {
	tests := []MixGainParameterData{
		NewStepMixGain(-1024),
		NewLinearMixGain(0, 512),
		NewBezierMixGain(0, 512, 256, 128),
	}
	for _, data := range tests {
		w := bitio.NewWriter(0)
		require.NoError(t, data.Write(w))
		r := bitio.NewReader(w.Flush())
		got, err := ParseMixGainParameterData(r)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestMixGainParameterData_SampleAt(t *testing.T) {
	step := NewStepMixGain(100)
	v, err := step.SampleAt(500, 1000)
	require.NoError(t, err)
	require.Equal(t, 100.0, v)

	linear := NewLinearMixGain(0, 1000)
	v, err = linear.SampleAt(250, 1000)
	require.NoError(t, err)
	require.Equal(t, 250.0, v)
}

// TestDemixing_S3 reproduces spec.md's S3 scenario: dmixp_mode=3 writes a
// single byte 0x60 (011 00000).
func TestDemixing_S3(t *testing.T) {
	data := DemixingInfoParameterData{DmixpMode: 3}
	w := bitio.NewWriter(0)
	require.NoError(t, data.Write(w))
	require.Equal(t, []byte{0x60}, w.Flush())
}

func TestDemixingInfoParameterData_RejectsModeAboveMax(t *testing.T) {
	data := DemixingInfoParameterData{DmixpMode: 7}
	w := bitio.NewWriter(0)
	err := data.Write(w)
	require.Error(t, err)
}

func TestReconGainElement_RoundTrip(t *testing.T) {
	e := ReconGainElement{ReconGainFlag: 0b11101}
	e.ReconGain[0] = 128
	e.ReconGain[2] = 128
	e.ReconGain[3] = 64
	e.ReconGain[4] = 64
	require.NoError(t, e.Validate())

	data := ReconGainInfoParameterData{ReconGainElements: []ReconGainElement{e}}
	w := bitio.NewWriter(0)
	require.NoError(t, data.Write(w))
	r := bitio.NewReader(w.Flush())
	got, err := ParseReconGainInfoParameterData(r, 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReconGainElement_ValidateCatchesFlagMismatch(t *testing.T) {
	e := ReconGainElement{ReconGainFlag: 0b1} // bit 0 set
	e.ReconGain[0] = 0                        // but gain is zero
	require.Error(t, e.Validate())
}
