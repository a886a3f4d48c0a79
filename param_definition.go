package iamf

import (
	"github.com/rafasloth/iamf-tools/internal/bitio"
)

// ParamDefinition describes one parameter track's timing, plus the extra
// fields its ParameterDefinitionType requires. The tag and payload cannot
// drift apart because construction only ever happens through the
// NewXxxParamDefinition smart constructors below.
type ParamDefinition struct {
	typ ParameterDefinitionType

	ParameterID   DecodedUleb128
	ParameterRate DecodedUleb128
	// ParamDefinitionMode selects where subblock timing lives: 0 means it
	// is fixed here (Duration/ConstantSubblockDuration/SubblockDurations);
	// 1 means each Parameter Block OBU carries its own.
	ParamDefinitionMode uint8
	Reserved            uint8 // 7 bits

	// The following are only meaningful when ParamDefinitionMode == 0.
	Duration                 DecodedUleb128
	ConstantSubblockDuration DecodedUleb128
	SubblockDurations        []DecodedUleb128 // length NumSubblocks when ConstantSubblockDuration == 0

	// ReconGain-only.
	AudioElementID DecodedUleb128

	// Demixing-only.
	DefaultDemixingMode    DemixingMode
	DefaultDemixingReserved uint8 // 5 bits
	DefaultW                uint8 // 4 bits
	DefaultWReserved         uint8 // 4 bits

	// ExtensionConfig-only (reserved parameter-definition types): opaque,
	// length-prefixed bytes the writer accepts but the parameter-block
	// generator rejects (spec.md §9's open question resolution).
	ExtensionBytes []byte
}

// Type reports the parameter-definition's tag.
func (p ParamDefinition) Type() ParameterDefinitionType { return p.typ }

// NumSubblocks returns the number of subblocks implied by Duration and
// ConstantSubblockDuration (mode 0 only): ceil(duration/constant) when
// constant != 0, or len(SubblockDurations) when constant == 0.
func (p ParamDefinition) NumSubblocks() DecodedUleb128 {
	if p.ConstantSubblockDuration != 0 {
		return ceilDiv(p.Duration, p.ConstantSubblockDuration)
	}
	return DecodedUleb128(len(p.SubblockDurations))
}

func ceilDiv(a, b DecodedUleb128) DecodedUleb128 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

const opParamDefValidate = "ParamDefinition.Validate"

// Validate checks the invariants from spec.md §3-4.2.
func (p ParamDefinition) Validate() error {
	if p.ParamDefinitionMode > 1 {
		return invalidArgf(opParamDefValidate, "param_definition_mode=%d must be 0 or 1", p.ParamDefinitionMode)
	}
	if p.ParamDefinitionMode == 0 {
		if p.ConstantSubblockDuration == 0 {
			var sum DecodedUleb128
			for _, d := range p.SubblockDurations {
				sum += d
			}
			if sum != p.Duration {
				return invalidArgf(opParamDefValidate, "explicit subblock durations sum to %d, want duration %d", sum, p.Duration)
			}
		} else {
			want := ceilDiv(p.Duration, p.ConstantSubblockDuration)
			if DecodedUleb128(len(p.SubblockDurations)) != 0 && DecodedUleb128(len(p.SubblockDurations)) != want {
				return invalidArgf(opParamDefValidate, "num_subblocks=%d, want ceil(duration/constant)=%d", len(p.SubblockDurations), want)
			}
		}
	}
	if p.typ == ParamDefinitionDemixing && p.DefaultDemixingMode > maxDemixingMode {
		return invalidArgf(opParamDefValidate, "default demixing mode %d exceeds maximum %d", p.DefaultDemixingMode, maxDemixingMode)
	}
	return nil
}

// NewFixedParamDefinition builds a ParamDefinition with mode=0 (fixed
// subblock partitioning carried here rather than per Parameter Block OBU).
// If constantSubblockDuration is 0, subblockDurations must sum to duration
// and sets NumSubblocks(); otherwise subblockDurations is optional and
// NumSubblocks() is computed as ceil(duration/constantSubblockDuration),
// with the last subblock absorbing the remainder when the generator
// partitions a block.
func NewFixedParamDefinition(typ ParameterDefinitionType, parameterID, parameterRate, duration, constantSubblockDuration DecodedUleb128, subblockDurations []DecodedUleb128) (ParamDefinition, error) {
	p := ParamDefinition{
		typ:                      typ,
		ParameterID:              parameterID,
		ParameterRate:            parameterRate,
		ParamDefinitionMode:      0,
		Duration:                 duration,
		ConstantSubblockDuration: constantSubblockDuration,
		SubblockDurations:        subblockDurations,
	}
	if err := p.Validate(); err != nil {
		return ParamDefinition{}, err
	}
	return p, nil
}

// NewPerBlockParamDefinition builds a ParamDefinition with mode=1: every
// Parameter Block OBU for this parameter_id carries its own timing.
func NewPerBlockParamDefinition(typ ParameterDefinitionType, parameterID, parameterRate DecodedUleb128) ParamDefinition {
	return ParamDefinition{
		typ:                 typ,
		ParameterID:          parameterID,
		ParameterRate:        parameterRate,
		ParamDefinitionMode:  1,
	}
}

// WithReconGain returns a copy tagged as a recon-gain parameter definition,
// attached to the given audio element.
func (p ParamDefinition) WithReconGain(audioElementID DecodedUleb128) ParamDefinition {
	p.typ = ParamDefinitionReconGain
	p.AudioElementID = audioElementID
	return p
}

// WithDemixing returns a copy tagged as a demixing parameter definition,
// carrying its default demixing info.
func (p ParamDefinition) WithDemixing(mode DemixingMode, defaultW uint8) ParamDefinition {
	p.typ = ParamDefinitionDemixing
	p.DefaultDemixingMode = mode
	p.DefaultW = defaultW
	return p
}

// NewExtensionParamDefinition builds a reserved/extension ParamDefinition:
// accepted by the writer as length-prefixed opaque bytes, but rejected by
// Generator.Initialize (spec.md §9). parameterID and parameterRate are kept
// on the value but are not serialized by Write.
func NewExtensionParamDefinition(typ ParameterDefinitionType, parameterID, parameterRate DecodedUleb128, extensionBytes []byte) (ParamDefinition, error) {
	if typ < ParamDefinitionReservedStart {
		return ParamDefinition{}, invalidArgf("NewExtensionParamDefinition", "type %d is not a reserved/extension type", typ)
	}
	return ParamDefinition{
		typ:            typ,
		ParameterID:    parameterID,
		ParameterRate:  parameterRate,
		ExtensionBytes: extensionBytes,
	}, nil
}

const opParamDefWrite = "ParamDefinition.Write"

// Write serializes the ParamDefinition per spec.md §4.2's field order. For
// reserved types it writes only a ULEB128 length prefix followed by the
// opaque bytes, per the audio-element payload layout of §4.3; parameter_id,
// parameter_rate and the mode/duration fields are not written.
func (p ParamDefinition) Write(w *bitio.Writer) error {
	if p.typ >= ParamDefinitionReservedStart {
		if err := w.WriteUleb128(uint32(len(p.ExtensionBytes))); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
		return wrapBitioErr(opParamDefWrite, w.WriteBytes(p.ExtensionBytes))
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := w.WriteUleb128(p.ParameterID); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if err := w.WriteUleb128(p.ParameterRate); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(p.ParamDefinitionMode), 1); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(p.Reserved), 7); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if p.ParamDefinitionMode == 0 {
		if err := p.writeFixedTiming(w); err != nil {
			return err
		}
	}
	switch p.typ {
	case ParamDefinitionReconGain:
		if err := w.WriteUleb128(p.AudioElementID); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
	case ParamDefinitionDemixing:
		if err := w.WriteUnsignedLiteral(uint32(p.DefaultDemixingMode), 3); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
		if err := w.WriteUnsignedLiteral(uint32(p.DefaultDemixingReserved), 5); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
		if err := w.WriteUnsignedLiteral(uint32(p.DefaultW), 4); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
		if err := w.WriteUnsignedLiteral(uint32(p.DefaultWReserved), 4); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
	}
	return nil
}

func (p ParamDefinition) writeFixedTiming(w *bitio.Writer) error {
	if err := w.WriteUleb128(p.Duration); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if err := w.WriteUleb128(p.ConstantSubblockDuration); err != nil {
		return wrapBitioErr(opParamDefWrite, err)
	}
	if p.ConstantSubblockDuration == 0 {
		numSubblocks := DecodedUleb128(len(p.SubblockDurations))
		if err := w.WriteUleb128(numSubblocks); err != nil {
			return wrapBitioErr(opParamDefWrite, err)
		}
		// The last subblock's duration is implicit (derivable as the
		// remainder), so only num_subblocks-1 are written.
		for i := 0; i < len(p.SubblockDurations)-1; i++ {
			if err := w.WriteUleb128(p.SubblockDurations[i]); err != nil {
				return wrapBitioErr(opParamDefWrite, err)
			}
		}
	}
	return nil
}

// ParseParamDefinition parses bytes written by Write, given the
// already-known ParameterDefinitionType (the caller reads the type tag
// separately, per spec.md §4.3's audio-element payload layout).
func ParseParamDefinition(r *bitio.Reader, typ ParameterDefinitionType) (ParamDefinition, error) {
	const op = "ParseParamDefinition"
	p := ParamDefinition{typ: typ}
	if typ >= ParamDefinitionReservedStart {
		size, err := r.ReadUleb128()
		if err != nil {
			return p, wrapBitioErr(op, err)
		}
		if p.ExtensionBytes, err = r.ReadBytes(int(size)); err != nil {
			return p, wrapBitioErr(op, err)
		}
		return p, nil
	}
	var err error
	if p.ParameterID, err = r.ReadUleb128(); err != nil {
		return p, wrapBitioErr(op, err)
	}
	if p.ParameterRate, err = r.ReadUleb128(); err != nil {
		return p, wrapBitioErr(op, err)
	}
	mode, err := r.ReadUnsignedLiteral(1)
	if err != nil {
		return p, wrapBitioErr(op, err)
	}
	p.ParamDefinitionMode = uint8(mode)
	reserved, err := r.ReadUnsignedLiteral(7)
	if err != nil {
		return p, wrapBitioErr(op, err)
	}
	p.Reserved = uint8(reserved)
	if p.ParamDefinitionMode == 0 {
		if err := p.parseFixedTiming(r); err != nil {
			return p, err
		}
	}
	switch typ {
	case ParamDefinitionReconGain:
		if p.AudioElementID, err = r.ReadUleb128(); err != nil {
			return p, wrapBitioErr(op, err)
		}
	case ParamDefinitionDemixing:
		mode, err := r.ReadUnsignedLiteral(3)
		if err != nil {
			return p, wrapBitioErr(op, err)
		}
		p.DefaultDemixingMode = DemixingMode(mode)
		reserved, err := r.ReadUnsignedLiteral(5)
		if err != nil {
			return p, wrapBitioErr(op, err)
		}
		p.DefaultDemixingReserved = uint8(reserved)
		w4, err := r.ReadUnsignedLiteral(4)
		if err != nil {
			return p, wrapBitioErr(op, err)
		}
		p.DefaultW = uint8(w4)
		wres, err := r.ReadUnsignedLiteral(4)
		if err != nil {
			return p, wrapBitioErr(op, err)
		}
		p.DefaultWReserved = uint8(wres)
	}
	return p, nil
}

func (p *ParamDefinition) parseFixedTiming(r *bitio.Reader) error {
	const op = "ParseParamDefinition"
	var err error
	if p.Duration, err = r.ReadUleb128(); err != nil {
		return wrapBitioErr(op, err)
	}
	if p.ConstantSubblockDuration, err = r.ReadUleb128(); err != nil {
		return wrapBitioErr(op, err)
	}
	if p.ConstantSubblockDuration == 0 {
		numSubblocks, err := r.ReadUleb128()
		if err != nil {
			return wrapBitioErr(op, err)
		}
		durations := make([]DecodedUleb128, numSubblocks)
		var sum DecodedUleb128
		for i := 0; i < int(numSubblocks)-1; i++ {
			if durations[i], err = r.ReadUleb128(); err != nil {
				return wrapBitioErr(op, err)
			}
			sum += durations[i]
		}
		if numSubblocks > 0 {
			durations[numSubblocks-1] = p.Duration - sum
		}
		p.SubblockDurations = durations
	}
	return nil
}
