package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// ParameterSubblock is one subblock of a Parameter Block OBU: an optional
// explicit duration (present only when the owning OBU's param_definition
// mode is 1 and its constant_subblock_duration is 0) plus exactly one typed
// payload, matching the owning ParamDefinition's type.
type ParameterSubblock struct {
	Duration DecodedUleb128

	MixGain   *MixGainParameterData
	Demixing  *DemixingInfoParameterData
	ReconGain *ReconGainInfoParameterData
}

// NewMixGainSubblock builds a mix-gain-typed subblock.
func NewMixGainSubblock(duration DecodedUleb128, data MixGainParameterData) ParameterSubblock {
	return ParameterSubblock{Duration: duration, MixGain: &data}
}

// NewDemixingSubblock builds a demixing-typed subblock.
func NewDemixingSubblock(duration DecodedUleb128, data DemixingInfoParameterData) ParameterSubblock {
	return ParameterSubblock{Duration: duration, Demixing: &data}
}

// NewReconGainSubblock builds a recon-gain-typed subblock.
func NewReconGainSubblock(duration DecodedUleb128, data ReconGainInfoParameterData) ParameterSubblock {
	return ParameterSubblock{Duration: duration, ReconGain: &data}
}

func (s ParameterSubblock) write(w *bitio.Writer, typ ParameterDefinitionType) error {
	const op = "ParameterSubblock.Write"
	switch typ {
	case ParamDefinitionMixGain:
		if s.MixGain == nil {
			return invalidArgf(op, "parameter type is mix_gain but subblock has no MixGain payload")
		}
		return s.MixGain.Write(w)
	case ParamDefinitionDemixing:
		if s.Demixing == nil {
			return invalidArgf(op, "parameter type is demixing but subblock has no Demixing payload")
		}
		return s.Demixing.Write(w)
	case ParamDefinitionReconGain:
		if s.ReconGain == nil {
			return invalidArgf(op, "parameter type is recon_gain but subblock has no ReconGain payload")
		}
		return s.ReconGain.Write(w)
	default:
		return invalidArgf(op, "parameter type %s is not supported in a Parameter Block OBU", typ)
	}
}

// ParameterBlockObu models a Parameter Block OBU. ParamType and
// ParamDefinitionMode are resolved from the owning PerIdParameterMetadata
// rather than carried on the wire; Duration and ConstantSubblockDuration are
// always populated (for the subblock-sum invariant check) but only
// serialized when ParamDefinitionMode == 1.
type ParameterBlockObu struct {
	ParameterID              DecodedUleb128
	ParamType                ParameterDefinitionType
	ParamDefinitionMode      uint8
	Duration                 DecodedUleb128
	ConstantSubblockDuration DecodedUleb128
	Subblocks                []ParameterSubblock
}

// InitializeSubblocks allocates n empty subblocks, replacing any existing
// ones.
func (p *ParameterBlockObu) InitializeSubblocks(n int) {
	p.Subblocks = make([]ParameterSubblock, n)
}

const opSetSubblockDuration = "ParameterBlockObu.SetSubblockDuration"

// SetSubblockDuration sets the duration of subblock i, failing if i is out
// of range.
func (p *ParameterBlockObu) SetSubblockDuration(i int, duration DecodedUleb128) error {
	if i < 0 || i >= len(p.Subblocks) {
		return invalidArgf(opSetSubblockDuration, "subblock index %d out of range [0,%d)", i, len(p.Subblocks))
	}
	p.Subblocks[i].Duration = duration
	return nil
}

const opParamBlockValidate = "ParameterBlockObu.Validate"

// Validate enforces: exactly one subblock for Demixing/ReconGain types
// (spec.md §4.7); and, when ParamDefinitionMode == 1, that the explicit
// subblock durations sum to Duration (spec.md §8 property 4).
func (p ParameterBlockObu) Validate() error {
	if p.ParamDefinitionMode > 1 {
		return invalidArgf(opParamBlockValidate, "param_definition_mode=%d must be 0 or 1", p.ParamDefinitionMode)
	}
	switch p.ParamType {
	case ParamDefinitionDemixing, ParamDefinitionReconGain:
		if len(p.Subblocks) != 1 {
			return invalidArgf(opParamBlockValidate, "%s parameter blocks carry exactly one subblock, got %d", p.ParamType, len(p.Subblocks))
		}
	}
	if p.ParamDefinitionMode == 1 {
		var sum DecodedUleb128
		for _, s := range p.Subblocks {
			sum += s.Duration
		}
		if sum != p.Duration {
			return invalidArgf(opParamBlockValidate, "subblock durations sum to %d, want duration %d", sum, p.Duration)
		}
	}
	return nil
}

const opParamBlockWrite = "ParameterBlockObu.WritePayload"

// WritePayload serializes the payload per spec.md §4.4.
func (p ParameterBlockObu) WritePayload(w *bitio.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := w.WriteUleb128(p.ParameterID); err != nil {
		return wrapBitioErr(opParamBlockWrite, err)
	}
	explicitDurations := false
	if p.ParamDefinitionMode == 1 {
		if err := w.WriteUleb128(p.Duration); err != nil {
			return wrapBitioErr(opParamBlockWrite, err)
		}
		if err := w.WriteUleb128(p.ConstantSubblockDuration); err != nil {
			return wrapBitioErr(opParamBlockWrite, err)
		}
		if p.ConstantSubblockDuration == 0 {
			if err := w.WriteUleb128(uint32(len(p.Subblocks))); err != nil {
				return wrapBitioErr(opParamBlockWrite, err)
			}
			explicitDurations = true
		}
	}
	for i, s := range p.Subblocks {
		if explicitDurations {
			if err := w.WriteUleb128(s.Duration); err != nil {
				return wrapBitioErr(opParamBlockWrite, err)
			}
		}
		if err := s.write(w, p.ParamType); err != nil {
			return unknownf(opParamBlockWrite, "subblock %d: %v", i, err)
		}
	}
	return nil
}

// ParameterBlockDecodeContext carries the information a Parameter Block
// OBU's payload cannot recover on its own: the associated ParamDefinition's
// type, mode, and (for mode=0) fixed timing, plus — for recon-gain
// parameters — how many layers have recon_gain_is_present set.
type ParameterBlockDecodeContext struct {
	ParamType                ParameterDefinitionType
	ParamDefinitionMode      uint8
	FixedDuration            DecodedUleb128 // used when ParamDefinitionMode == 0
	FixedSubblockDurations   []DecodedUleb128
	NumReconGainPresentLayers int
}

const opParamBlockParse = "ParseParameterBlockPayload"

// ParseParameterBlockPayload parses bytes written by WritePayload.
func ParseParameterBlockPayload(r *bitio.Reader, ctx ParameterBlockDecodeContext) (ParameterBlockObu, error) {
	var p ParameterBlockObu
	p.ParamType = ctx.ParamType
	p.ParamDefinitionMode = ctx.ParamDefinitionMode
	var err error
	if p.ParameterID, err = r.ReadUleb128(); err != nil {
		return p, wrapBitioErr(opParamBlockParse, err)
	}
	var numSubblocks int
	explicitDurations := false
	if p.ParamDefinitionMode == 1 {
		if p.Duration, err = r.ReadUleb128(); err != nil {
			return p, wrapBitioErr(opParamBlockParse, err)
		}
		if p.ConstantSubblockDuration, err = r.ReadUleb128(); err != nil {
			return p, wrapBitioErr(opParamBlockParse, err)
		}
		if p.ConstantSubblockDuration == 0 {
			n, err := r.ReadUleb128()
			if err != nil {
				return p, wrapBitioErr(opParamBlockParse, err)
			}
			numSubblocks = int(n)
			explicitDurations = true
		} else {
			numSubblocks = int(ceilDiv(p.Duration, p.ConstantSubblockDuration))
		}
	} else {
		p.Duration = ctx.FixedDuration
		numSubblocks = len(ctx.FixedSubblockDurations)
	}
	p.Subblocks = make([]ParameterSubblock, numSubblocks)
	for i := range p.Subblocks {
		if explicitDurations {
			if p.Subblocks[i].Duration, err = r.ReadUleb128(); err != nil {
				return p, wrapBitioErr(opParamBlockParse, err)
			}
		} else if p.ParamDefinitionMode == 1 {
			p.Subblocks[i].Duration = p.ConstantSubblockDuration
			if i == numSubblocks-1 {
				// The last subblock absorbs the remainder.
				p.Subblocks[i].Duration = p.Duration - p.ConstantSubblockDuration*DecodedUleb128(numSubblocks-1)
			}
		} else {
			p.Subblocks[i].Duration = ctx.FixedSubblockDurations[i]
		}
		if err := parseSubblockPayload(r, ctx, &p.Subblocks[i]); err != nil {
			return p, err
		}
	}
	return p, nil
}

func parseSubblockPayload(r *bitio.Reader, ctx ParameterBlockDecodeContext, s *ParameterSubblock) error {
	switch ctx.ParamType {
	case ParamDefinitionMixGain:
		data, err := ParseMixGainParameterData(r)
		if err != nil {
			return err
		}
		s.MixGain = &data
	case ParamDefinitionDemixing:
		data, err := ParseDemixingInfoParameterData(r)
		if err != nil {
			return err
		}
		s.Demixing = &data
	case ParamDefinitionReconGain:
		data, err := ParseReconGainInfoParameterData(r, ctx.NumReconGainPresentLayers)
		if err != nil {
			return err
		}
		s.ReconGain = &data
	default:
		return invalidArgf(opParamBlockParse, "parameter type %s is not supported in a Parameter Block OBU", ctx.ParamType)
	}
	return nil
}

// ParameterBlockWithData pairs a ParameterBlockObu with the
// [StartTimestamp, EndTimestamp) interval the global timing module issued
// for it.
type ParameterBlockWithData struct {
	Obu            ParameterBlockObu
	StartTimestamp int32
	EndTimestamp   int32
}
