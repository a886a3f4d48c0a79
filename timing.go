package iamf

// GlobalTimingModule issues contiguous [start, end) timestamp intervals per
// parameter_id. It is the sole owner of timing state across a stream's
// lifetime; the host must serialize calls for a given parameter_id (it is
// not goroutine-safe, per doc.go's concurrency note).
type GlobalTimingModule struct {
	nextExpectedStart map[DecodedUleb128]int32
}

// NewGlobalTimingModule returns a module with no parameter_ids registered
// yet; each is implicitly initialized to next_expected_start=0 on first use.
func NewGlobalTimingModule() *GlobalTimingModule {
	return &GlobalTimingModule{nextExpectedStart: make(map[DecodedUleb128]int32)}
}

const opGetNextParameterBlockTimestamps = "GlobalTimingModule.GetNextParameterBlockTimestamps"

// GetNextParameterBlockTimestamps validates claimedStart against the
// parameter_id's expected next start, then advances that expectation by
// duration. Fails with InvalidArgument on a gap, overlap, or signed
// overflow of the resulting end timestamp.
func (m *GlobalTimingModule) GetNextParameterBlockTimestamps(parameterID DecodedUleb128, claimedStart int32, duration DecodedUleb128) (start, end int32, err error) {
	expected := m.nextExpectedStart[parameterID]
	if claimedStart != expected {
		return 0, 0, invalidArgf(opGetNextParameterBlockTimestamps, "parameter_id %d: claimed_start=%d does not match expected %d", parameterID, claimedStart, expected)
	}
	end64 := int64(claimedStart) + int64(duration)
	if end64 > int64(int32Max) {
		return 0, 0, invalidArgf(opGetNextParameterBlockTimestamps, "parameter_id %d: end timestamp %d overflows int32", parameterID, end64)
	}
	end = int32(end64)
	m.nextExpectedStart[parameterID] = end
	return claimedStart, end, nil
}

const int32Max = 1<<31 - 1

// NextExpectedStart reports the next start timestamp GetNextParameterBlockTimestamps
// will accept for parameterID, for diagnostics and tests.
func (m *GlobalTimingModule) NextExpectedStart(parameterID DecodedUleb128) int32 {
	return m.nextExpectedStart[parameterID]
}
