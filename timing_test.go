package iamf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalTimingModule_ContiguousEmits(t *testing.T) {
	m := NewGlobalTimingModule()
	start, end, err := m.GetNextParameterBlockTimestamps(1, 0, 100)
	require.NoError(t, err)
	require.EqualValues(t, 0, start)
	require.EqualValues(t, 100, end)

	start, end, err = m.GetNextParameterBlockTimestamps(1, 100, 50)
	require.NoError(t, err)
	require.EqualValues(t, 100, start)
	require.EqualValues(t, 150, end)
}

// TestGlobalTimingModule_Gap_S6 reproduces spec.md's S6 scenario: a gap
// between successive emits for the same parameter_id is rejected.
func TestGlobalTimingModule_Gap_S6(t *testing.T) {
	m := NewGlobalTimingModule()
	_, _, err := m.GetNextParameterBlockTimestamps(1, 0, 100)
	require.NoError(t, err)

	_, _, err = m.GetNextParameterBlockTimestamps(1, 200, 50)
	require.Error(t, err)
	require.Equal(t, InvalidArgument, KindOf(err))
}

func TestGlobalTimingModule_IndependentParameterIDs(t *testing.T) {
	m := NewGlobalTimingModule()
	_, _, err := m.GetNextParameterBlockTimestamps(1, 0, 100)
	require.NoError(t, err)
	// parameter_id 2 has never been seen, so it starts at 0 too.
	_, _, err = m.GetNextParameterBlockTimestamps(2, 0, 10)
	require.NoError(t, err)
}

func TestGlobalTimingModule_OverflowRejected(t *testing.T) {
	m := NewGlobalTimingModule()
	_, _, err := m.GetNextParameterBlockTimestamps(1, 0, uint32(int32Max))
	require.NoError(t, err)
	_, _, err = m.GetNextParameterBlockTimestamps(1, int32Max, 1)
	require.Error(t, err)
}
