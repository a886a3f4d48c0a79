package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// numReconGainPositions is the width of the recon-gain presence bitmask and
// the size of each layer's gain array (positions 1 and 11 are the center
// and LFE channels, which are never demixed and so never set).
const numReconGainPositions = 12

// MixGainParameterData is a mix-gain subblock payload: an animation curve
// shape plus the int16 control points that shape requires.
type MixGainParameterData struct {
	AnimationType AnimationType
	Reserved      uint8 // 6 bits

	Start   int16 // Step, Linear, Bezier
	End     int16 // Linear, Bezier
	Control int16 // Bezier

	// ControlPointRelativeTime is Bezier's control-point time, in [0,255]
	// mapping to the relative time fraction [0,1].
	ControlPointRelativeTime uint8
}

// NewStepMixGain builds a Step-shaped MixGainParameterData.
func NewStepMixGain(start int16) MixGainParameterData {
	return MixGainParameterData{AnimationType: AnimateStep, Start: start}
}

// NewLinearMixGain builds a Linear-shaped MixGainParameterData.
func NewLinearMixGain(start, end int16) MixGainParameterData {
	return MixGainParameterData{AnimationType: AnimateLinear, Start: start, End: end}
}

// NewBezierMixGain builds a Bezier-shaped MixGainParameterData.
func NewBezierMixGain(start, end, control int16, controlPointRelativeTime uint8) MixGainParameterData {
	return MixGainParameterData{
		AnimationType:            AnimateBezier,
		Start:                    start,
		End:                      end,
		Control:                  control,
		ControlPointRelativeTime: controlPointRelativeTime,
	}
}

const opMixGainWrite = "MixGainParameterData.Write"

// Write serializes the payload per spec.md §4.4: 2-bit animation_type, 6-bit
// reserved, then the int16 control points the curve shape requires.
func (m MixGainParameterData) Write(w *bitio.Writer) error {
	if err := w.WriteUnsignedLiteral(uint32(m.AnimationType), 2); err != nil {
		return wrapBitioErr(opMixGainWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(m.Reserved), 6); err != nil {
		return wrapBitioErr(opMixGainWrite, err)
	}
	if err := w.WriteSigned16(m.Start); err != nil {
		return wrapBitioErr(opMixGainWrite, err)
	}
	switch m.AnimationType {
	case AnimateStep:
		return nil
	case AnimateLinear:
		return wrapBitioErr(opMixGainWrite, w.WriteSigned16(m.End))
	case AnimateBezier:
		if err := w.WriteSigned16(m.End); err != nil {
			return wrapBitioErr(opMixGainWrite, err)
		}
		if err := w.WriteSigned16(m.Control); err != nil {
			return wrapBitioErr(opMixGainWrite, err)
		}
		return wrapBitioErr(opMixGainWrite, w.WriteUnsignedLiteral(uint32(m.ControlPointRelativeTime), 8))
	default:
		return invalidArgf(opMixGainWrite, "animation_type=%d is not a supported mix-gain curve shape", m.AnimationType)
	}
}

const opMixGainParse = "ParseMixGainParameterData"

// ParseMixGainParameterData parses bytes written by Write.
func ParseMixGainParameterData(r *bitio.Reader) (MixGainParameterData, error) {
	var m MixGainParameterData
	v, err := r.ReadUnsignedLiteral(2)
	if err != nil {
		return m, wrapBitioErr(opMixGainParse, err)
	}
	m.AnimationType = AnimationType(v)
	v, err = r.ReadUnsignedLiteral(6)
	if err != nil {
		return m, wrapBitioErr(opMixGainParse, err)
	}
	m.Reserved = uint8(v)
	if m.Start, err = r.ReadSigned16(); err != nil {
		return m, wrapBitioErr(opMixGainParse, err)
	}
	switch m.AnimationType {
	case AnimateStep:
		return m, nil
	case AnimateLinear:
		if m.End, err = r.ReadSigned16(); err != nil {
			return m, wrapBitioErr(opMixGainParse, err)
		}
		return m, nil
	case AnimateBezier:
		if m.End, err = r.ReadSigned16(); err != nil {
			return m, wrapBitioErr(opMixGainParse, err)
		}
		if m.Control, err = r.ReadSigned16(); err != nil {
			return m, wrapBitioErr(opMixGainParse, err)
		}
		ct, err := r.ReadUnsignedLiteral(8)
		if err != nil {
			return m, wrapBitioErr(opMixGainParse, err)
		}
		m.ControlPointRelativeTime = uint8(ct)
		return m, nil
	default:
		return m, invalidArgf(opMixGainParse, "animation_type=%d is not a supported mix-gain curve shape", m.AnimationType)
	}
}

// SampleAt evaluates the curve at time t within a subblock of duration D,
// per spec.md §3: step is constant, linear interpolates, Bezier follows a
// standard quadratic Bezier with the control point placed at relative time
// p = ControlPointRelativeTime/255.
func (m MixGainParameterData) SampleAt(t, duration uint32) (float64, error) {
	const op = "MixGainParameterData.SampleAt"
	if duration == 0 {
		return 0, invalidArgf(op, "duration must be positive")
	}
	frac := float64(t) / float64(duration)
	switch m.AnimationType {
	case AnimateStep:
		return float64(m.Start), nil
	case AnimateLinear:
		return float64(m.Start) + (float64(m.End)-float64(m.Start))*frac, nil
	case AnimateBezier:
		// Quadratic Bezier anchored at (0, start), (p, control), (1, end),
		// evaluated at parameter frac (not inverted from p; p only fixes
		// the control point's placement, so it does not enter the value).
		u := 1 - frac
		return u*u*float64(m.Start) + 2*u*frac*float64(m.Control) + frac*frac*float64(m.End), nil
	default:
		return 0, invalidArgf(op, "animation_type=%d is not a supported mix-gain curve shape", m.AnimationType)
	}
}

// DemixingInfoParameterData is a demixing subblock payload.
type DemixingInfoParameterData struct {
	DmixpMode DemixingMode
	Reserved  uint8 // 5 bits
}

const opDemixingWrite = "DemixingInfoParameterData.Write"

// Write serializes the payload: 3-bit dmixp_mode, 5-bit reserved.
func (d DemixingInfoParameterData) Write(w *bitio.Writer) error {
	if d.DmixpMode > maxDemixingMode {
		return invalidArgf(opDemixingWrite, "dmixp_mode=%d exceeds maximum %d", d.DmixpMode, maxDemixingMode)
	}
	if err := w.WriteUnsignedLiteral(uint32(d.DmixpMode), 3); err != nil {
		return wrapBitioErr(opDemixingWrite, err)
	}
	return wrapBitioErr(opDemixingWrite, w.WriteUnsignedLiteral(uint32(d.Reserved), 5))
}

const opDemixingParse = "ParseDemixingInfoParameterData"

// ParseDemixingInfoParameterData parses bytes written by Write.
func ParseDemixingInfoParameterData(r *bitio.Reader) (DemixingInfoParameterData, error) {
	var d DemixingInfoParameterData
	v, err := r.ReadUnsignedLiteral(3)
	if err != nil {
		return d, wrapBitioErr(opDemixingParse, err)
	}
	d.DmixpMode = DemixingMode(v)
	v, err = r.ReadUnsignedLiteral(5)
	if err != nil {
		return d, wrapBitioErr(opDemixingParse, err)
	}
	d.Reserved = uint8(v)
	return d, nil
}

// ReconGainElement is one layer's recon-gain entry: a 12-bit presence mask
// (carried in a ULEB128) and the size-12 array of gain values it indexes.
// Only positions with the corresponding flag bit set are meaningful.
type ReconGainElement struct {
	ReconGainFlag DecodedUleb128
	ReconGain     [numReconGainPositions]uint8
}

const opReconGainElementValidate = "ReconGainElement.Validate"

// Validate checks property 5 from spec.md §8: a bit is set in
// ReconGainFlag iff its position holds a nonzero gain.
func (e ReconGainElement) Validate() error {
	for pos := 0; pos < numReconGainPositions; pos++ {
		bitSet := e.ReconGainFlag&(1<<uint(pos)) != 0
		nonZero := e.ReconGain[pos] != 0
		if bitSet != nonZero {
			return invalidArgf(opReconGainElementValidate, "position %d: flag bit set=%v but gain nonzero=%v", pos, bitSet, nonZero)
		}
	}
	return nil
}

func (e ReconGainElement) write(w *bitio.Writer) error {
	const op = "ReconGainElement.Write"
	if err := w.WriteUleb128(e.ReconGainFlag); err != nil {
		return wrapBitioErr(op, err)
	}
	for pos := 0; pos < numReconGainPositions; pos++ {
		if e.ReconGainFlag&(1<<uint(pos)) == 0 {
			continue
		}
		if err := w.WriteUnsignedLiteral(uint32(e.ReconGain[pos]), 8); err != nil {
			return wrapBitioErr(op, err)
		}
	}
	return nil
}

func parseReconGainElement(r *bitio.Reader) (ReconGainElement, error) {
	const op = "ParseReconGainElement"
	var e ReconGainElement
	flag, err := r.ReadUleb128()
	if err != nil {
		return e, wrapBitioErr(op, err)
	}
	e.ReconGainFlag = flag
	for pos := 0; pos < numReconGainPositions; pos++ {
		if flag&(1<<uint(pos)) == 0 {
			continue
		}
		v, err := r.ReadUnsignedLiteral(8)
		if err != nil {
			return e, wrapBitioErr(op, err)
		}
		e.ReconGain[pos] = uint8(v)
	}
	return e, nil
}

// ReconGainInfoParameterData is a recon-gain subblock payload: one
// ReconGainElement per layer whose recon_gain_is_present flag is set, in
// layer order. Layers with the flag clear contribute nothing and are not
// represented here (spec.md §4.4).
type ReconGainInfoParameterData struct {
	ReconGainElements []ReconGainElement
}

const opReconGainInfoWrite = "ReconGainInfoParameterData.Write"

// Write serializes each element in order.
func (d ReconGainInfoParameterData) Write(w *bitio.Writer) error {
	for i, e := range d.ReconGainElements {
		if err := e.Validate(); err != nil {
			return err
		}
		if err := e.write(w); err != nil {
			return unknownf(opReconGainInfoWrite, "layer %d: %v", i, err)
		}
	}
	return nil
}

const opReconGainInfoParse = "ParseReconGainInfoParameterData"

// ParseReconGainInfoParameterData parses numPresentLayers elements written
// by Write. The caller supplies numPresentLayers from the owning
// PerIdParameterMetadata since the wire format carries no count of its own.
func ParseReconGainInfoParameterData(r *bitio.Reader, numPresentLayers int) (ReconGainInfoParameterData, error) {
	var d ReconGainInfoParameterData
	d.ReconGainElements = make([]ReconGainElement, numPresentLayers)
	for i := range d.ReconGainElements {
		e, err := parseReconGainElement(r)
		if err != nil {
			return d, err
		}
		d.ReconGainElements[i] = e
	}
	return d, nil
}
