package iamf

import (
	"fmt"
	"math"
)

// PerIdParameterMetadata is the resolved, read-only view of one
// parameter_id built during Generator.Initialize: its ParamDefinition and
// type, plus — for recon-gain parameters only — the owning audio element
// and the per-layer channel/presence data the recon-gain pipeline needs.
type PerIdParameterMetadata struct {
	ParamDefinition ParamDefinition
	Type            ParameterDefinitionType

	AudioElementID          DecodedUleb128
	NumLayers               int
	ReconGainIsPresent      []bool
	ChannelNumbersForLayers []ChannelNumbers
}

// Generator orchestrates the per-temporal-unit parameter-block pipeline
// (spec.md §4.7): user metadata is routed by AddMetadata into one of three
// typed queues, then GenerateMixGain, GenerateDemixing, and
// GenerateReconGain each drain their queue into ParameterBlockWithData
// values. It is not safe for concurrent use (doc.go's concurrency note).
type Generator struct {
	initialized  bool
	perID        map[DecodedUleb128]PerIdParameterMetadata
	timing       *GlobalTimingModule
	reconGainGen *ReconGainGenerator

	mixGainQueue   []ParameterBlockMetadata
	demixingQueue  []ParameterBlockMetadata
	reconGainQueue []ParameterBlockMetadata
}

// NewGenerator builds an uninitialized Generator. reconGainGen is used only
// by GenerateReconGain and may be nil if no parameter_id in the stream is
// recon-gain typed.
func NewGenerator(reconGainGen *ReconGainGenerator) *Generator {
	return &Generator{
		timing:       NewGlobalTimingModule(),
		reconGainGen: reconGainGen,
	}
}

// ParamDefinitionTableEntry pairs a parameter_id's ParameterDefinitionType
// with its ParamDefinition, as carried in the global ParamDefinition table
// passed to Generator.Initialize.
type ParamDefinitionTableEntry struct {
	Type            ParameterDefinitionType
	ParamDefinition ParamDefinition
}

const opGeneratorInitialize = "Generator.Initialize"

// Initialize builds PerIdParameterMetadata for every entry in
// paramDefinitions. iaSeqHeader is accepted but neither read nor stored;
// mixPresentations are validated for dangling audio-element
// references. audioElements maps audio_element_id to the owning
// AudioElementObu and is required to resolve recon-gain parameters' layer
// data.
func (g *Generator) Initialize(
	iaSeqHeader IASequenceHeaderObu,
	audioElements map[DecodedUleb128]AudioElementObu,
	mixPresentations []MixPresentationObu,
	paramDefinitions map[DecodedUleb128]ParamDefinitionTableEntry,
) error {
	_ = iaSeqHeader
	for _, mp := range mixPresentations {
		for _, aid := range mp.AudioElementIDs {
			if _, ok := audioElements[aid]; !ok {
				return invalidArgf(opGeneratorInitialize, "mix_presentation_id %d references unknown audio_element_id %d", mp.MixPresentationID, aid)
			}
		}
	}
	perID := make(map[DecodedUleb128]PerIdParameterMetadata, len(paramDefinitions))
	for pid, entry := range paramDefinitions {
		meta := PerIdParameterMetadata{ParamDefinition: entry.ParamDefinition, Type: entry.Type}
		switch entry.Type {
		case ParamDefinitionMixGain, ParamDefinitionDemixing:
			// No additional resolution required.
		case ParamDefinitionReconGain:
			aid := entry.ParamDefinition.AudioElementID
			ae, ok := audioElements[aid]
			if !ok {
				return invalidArgf(opGeneratorInitialize, "parameter_id %d: recon-gain references unknown audio_element_id %d", pid, aid)
			}
			if ae.ScalableChannelLayout == nil {
				return invalidArgf(opGeneratorInitialize, "parameter_id %d: audio_element_id %d has no scalable channel layout to recon-gain against", pid, aid)
			}
			layers := ae.ScalableChannelLayout.Layers
			meta.AudioElementID = aid
			meta.NumLayers = len(layers)
			meta.ReconGainIsPresent = make([]bool, len(layers))
			meta.ChannelNumbersForLayers = make([]ChannelNumbers, len(layers))
			for i, layer := range layers {
				meta.ReconGainIsPresent[i] = layer.ReconGainIsPresent
				cn, err := channelNumbersForLayout(layer.LoudspeakerLayout)
				if err != nil {
					return err
				}
				meta.ChannelNumbersForLayers[i] = cn
			}
		default:
			return invalidArgf(opGeneratorInitialize, "parameter_id %d: parameter type %s is not supported", pid, entry.Type)
		}
		perID[pid] = meta
	}
	g.perID = perID
	g.initialized = true
	return nil
}

const opAddMetadata = "Generator.AddMetadata"

// AddMetadata routes metadata into the queue matching its parameter_id's
// ParamDefinition type, returning the duration that will be used when it
// is drained (ParamDefinition.Duration under mode 0, metadata.Duration
// under mode 1).
func (g *Generator) AddMetadata(metadata ParameterBlockMetadata) (DecodedUleb128, error) {
	if !g.initialized {
		return 0, failedPrecondition(opAddMetadata, "Initialize must be called before AddMetadata")
	}
	meta, ok := g.perID[metadata.ParameterID]
	if !ok {
		return 0, invalidArgf(opAddMetadata, "parameter_id %d has no ParamDefinition", metadata.ParameterID)
	}
	duration := resolvedDuration(meta, metadata)
	switch meta.Type {
	case ParamDefinitionMixGain:
		g.mixGainQueue = append(g.mixGainQueue, metadata)
	case ParamDefinitionDemixing:
		g.demixingQueue = append(g.demixingQueue, metadata)
	case ParamDefinitionReconGain:
		g.reconGainQueue = append(g.reconGainQueue, metadata)
	default:
		return 0, invalidArgf(opAddMetadata, "parameter_id %d: parameter type %s is not supported", metadata.ParameterID, meta.Type)
	}
	return duration, nil
}

func resolvedDuration(meta PerIdParameterMetadata, metadata ParameterBlockMetadata) DecodedUleb128 {
	if meta.ParamDefinition.ParamDefinitionMode == 0 {
		return meta.ParamDefinition.Duration
	}
	return metadata.Duration
}

// subblockDurationsFor computes the (duration, constant_subblock_duration,
// per-subblock durations) triple for a parameter_id given its resolved
// mode: under mode 0 these come from the ParamDefinition; under mode 1
// they come from metadata, with explicit durations supplied by the caller
// when constant_subblock_duration is 0.
func subblockDurationsFor(meta PerIdParameterMetadata, metadata ParameterBlockMetadata, explicit []DecodedUleb128) (duration, constant DecodedUleb128, durations []DecodedUleb128, err error) {
	if meta.ParamDefinition.ParamDefinitionMode == 0 {
		duration = meta.ParamDefinition.Duration
		constant = meta.ParamDefinition.ConstantSubblockDuration
		if constant != 0 {
			durations, err = uniformSubblockDurations(duration, constant)
		} else {
			durations = meta.ParamDefinition.SubblockDurations
		}
		return duration, constant, durations, err
	}
	duration = metadata.Duration
	constant = metadata.ConstantSubblockDuration
	if constant != 0 {
		durations, err = uniformSubblockDurations(duration, constant)
	} else {
		durations = explicit
		var sum DecodedUleb128
		for _, d := range durations {
			sum += d
		}
		if sum != duration {
			err = invalidArgf("subblockDurationsFor", "explicit subblock durations sum to %d, want duration %d", sum, duration)
		}
	}
	return duration, constant, durations, err
}

func uniformSubblockDurations(duration, constant DecodedUleb128) ([]DecodedUleb128, error) {
	if constant == 0 {
		return nil, invalidArgf("uniformSubblockDurations", "constant_subblock_duration must be nonzero")
	}
	n := ceilDiv(duration, constant)
	out := make([]DecodedUleb128, n)
	for i := DecodedUleb128(0); i < n-1; i++ {
		out[i] = constant
	}
	out[n-1] = duration - constant*(n-1)
	return out, nil
}

const opGenerateDemixing = "Generator.GenerateDemixing"

// GenerateDemixing drains the demixing queue.
func (g *Generator) GenerateDemixing() ([]ParameterBlockWithData, error) {
	if !g.initialized {
		return nil, failedPrecondition(opGenerateDemixing, "Initialize must be called before GenerateDemixing")
	}
	var out []ParameterBlockWithData
	for _, metadata := range g.demixingQueue {
		pbwd, err := g.generateDemixingOne(metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, pbwd)
	}
	g.demixingQueue = nil
	return out, nil
}

func (g *Generator) generateDemixingOne(metadata ParameterBlockMetadata) (ParameterBlockWithData, error) {
	const op = "Generator.GenerateDemixing"
	meta := g.perID[metadata.ParameterID]
	if metadata.DemixingSubblock == nil {
		return ParameterBlockWithData{}, invalidArgf(op, "parameter_id %d: demixing metadata requires exactly one subblock", metadata.ParameterID)
	}
	duration := resolvedDuration(meta, metadata)
	start, end, err := g.timing.GetNextParameterBlockTimestamps(metadata.ParameterID, metadata.StartTimestamp, duration)
	if err != nil {
		return ParameterBlockWithData{}, err
	}
	constant := meta.ParamDefinition.ConstantSubblockDuration
	if meta.ParamDefinition.ParamDefinitionMode == 1 {
		constant = metadata.ConstantSubblockDuration
	}
	obu := ParameterBlockObu{
		ParameterID:              metadata.ParameterID,
		ParamType:                ParamDefinitionDemixing,
		ParamDefinitionMode:      meta.ParamDefinition.ParamDefinitionMode,
		Duration:                 duration,
		ConstantSubblockDuration: constant,
	}
	obu.InitializeSubblocks(1)
	obu.Subblocks[0] = NewDemixingSubblock(duration, DemixingInfoParameterData{
		DmixpMode: metadata.DemixingSubblock.DmixpMode,
		Reserved:  metadata.DemixingSubblock.Reserved,
	})
	if err := obu.Validate(); err != nil {
		return ParameterBlockWithData{}, err
	}
	return ParameterBlockWithData{Obu: obu, StartTimestamp: start, EndTimestamp: end}, nil
}

const opGenerateMixGain = "Generator.GenerateMixGain"

// GenerateMixGain drains the mix-gain queue.
func (g *Generator) GenerateMixGain() ([]ParameterBlockWithData, error) {
	if !g.initialized {
		return nil, failedPrecondition(opGenerateMixGain, "Initialize must be called before GenerateMixGain")
	}
	var out []ParameterBlockWithData
	for _, metadata := range g.mixGainQueue {
		pbwd, err := g.generateMixGainOne(metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, pbwd)
	}
	g.mixGainQueue = nil
	return out, nil
}

func (g *Generator) generateMixGainOne(metadata ParameterBlockMetadata) (ParameterBlockWithData, error) {
	const op = "Generator.GenerateMixGain"
	meta := g.perID[metadata.ParameterID]
	explicit := make([]DecodedUleb128, len(metadata.MixGainSubblocks))
	for i, sb := range metadata.MixGainSubblocks {
		explicit[i] = sb.Duration
	}
	duration, constant, durations, err := subblockDurationsFor(meta, metadata, explicit)
	if err != nil {
		return ParameterBlockWithData{}, err
	}
	if meta.ParamDefinition.ParamDefinitionMode == 1 && len(metadata.MixGainSubblocks) != len(durations) {
		return ParameterBlockWithData{}, invalidArgf(op, "parameter_id %d: got %d mix-gain subblocks, want %d", metadata.ParameterID, len(metadata.MixGainSubblocks), len(durations))
	}
	start, end, err := g.timing.GetNextParameterBlockTimestamps(metadata.ParameterID, metadata.StartTimestamp, duration)
	if err != nil {
		return ParameterBlockWithData{}, err
	}
	obu := ParameterBlockObu{
		ParameterID:              metadata.ParameterID,
		ParamType:                ParamDefinitionMixGain,
		ParamDefinitionMode:      meta.ParamDefinition.ParamDefinitionMode,
		Duration:                 duration,
		ConstantSubblockDuration: constant,
	}
	obu.InitializeSubblocks(len(durations))
	for i := range durations {
		var sbMeta MixGainSubblockMetadata
		if i < len(metadata.MixGainSubblocks) {
			sbMeta = metadata.MixGainSubblocks[i]
		}
		data, err := buildMixGainParameterData(sbMeta)
		if err != nil {
			return ParameterBlockWithData{}, invalidArgf(op, "subblock %d: %v", i, err)
		}
		obu.Subblocks[i] = NewMixGainSubblock(durations[i], data)
	}
	if err := obu.Validate(); err != nil {
		return ParameterBlockWithData{}, err
	}
	return ParameterBlockWithData{Obu: obu, StartTimestamp: start, EndTimestamp: end}, nil
}

func buildMixGainParameterData(m MixGainSubblockMetadata) (MixGainParameterData, error) {
	const op = "buildMixGainParameterData"
	start, err := coerceInt16(m.Start)
	if err != nil {
		return MixGainParameterData{}, invalidArgf(op, "start: %v", err)
	}
	switch m.AnimationType {
	case AnimateStep:
		return NewStepMixGain(start), nil
	case AnimateLinear:
		end, err := coerceInt16(m.End)
		if err != nil {
			return MixGainParameterData{}, invalidArgf(op, "end: %v", err)
		}
		return NewLinearMixGain(start, end), nil
	case AnimateBezier:
		end, err := coerceInt16(m.End)
		if err != nil {
			return MixGainParameterData{}, invalidArgf(op, "end: %v", err)
		}
		control, err := coerceInt16(m.Control)
		if err != nil {
			return MixGainParameterData{}, invalidArgf(op, "control: %v", err)
		}
		if m.ControlPointRelativeTime < 0 || m.ControlPointRelativeTime > 255 {
			return MixGainParameterData{}, invalidArgf(op, "control_point_relative_time=%d out of [0,255]", m.ControlPointRelativeTime)
		}
		return NewBezierMixGain(start, end, control, uint8(m.ControlPointRelativeTime)), nil
	default:
		return MixGainParameterData{}, invalidArgf(op, "animation_type=%d is not a supported mix-gain curve shape", m.AnimationType)
	}
}

func coerceInt16(v int32) (int16, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, fmt.Errorf("value %d overflows int16", v)
	}
	return int16(v), nil
}

const opGenerateReconGain = "Generator.GenerateReconGain"

// GenerateReconGain drains the recon-gain queue. It must be called after
// the host has decoded and demixed the audio frames for this temporal
// unit, since it reads their samples through the ReconGainGenerator
// (spec.md §5's hard ordering dependency).
func (g *Generator) GenerateReconGain() ([]ParameterBlockWithData, error) {
	if !g.initialized {
		return nil, failedPrecondition(opGenerateReconGain, "Initialize must be called before GenerateReconGain")
	}
	var out []ParameterBlockWithData
	for _, metadata := range g.reconGainQueue {
		pbwd, err := g.generateReconGainOne(metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, pbwd)
	}
	g.reconGainQueue = nil
	if g.reconGainGen != nil {
		g.reconGainGen.endOfFirstTemporalUnit()
	}
	return out, nil
}

func (g *Generator) generateReconGainOne(metadata ParameterBlockMetadata) (ParameterBlockWithData, error) {
	const op = "Generator.GenerateReconGain"
	meta := g.perID[metadata.ParameterID]
	if metadata.ReconGainSubblock == nil {
		return ParameterBlockWithData{}, invalidArgf(op, "parameter_id %d: recon-gain metadata requires exactly one subblock", metadata.ParameterID)
	}
	duration := resolvedDuration(meta, metadata)
	start, end, err := g.timing.GetNextParameterBlockTimestamps(metadata.ParameterID, metadata.StartTimestamp, duration)
	if err != nil {
		return ParameterBlockWithData{}, err
	}
	var elements []ReconGainElement
	var accumulated ChannelNumbers
	layerMetaIdx := 0
	for i := 0; i < meta.NumLayers; i++ {
		layerChannels := meta.ChannelNumbersForLayers[i]
		if !meta.ReconGainIsPresent[i] {
			accumulated = layerChannels
			continue
		}
		if layerMetaIdx >= len(metadata.ReconGainSubblock.Layers) {
			return ParameterBlockWithData{}, invalidArgf(op, "parameter_id %d: layer %d expects recon-gain metadata, none supplied", metadata.ParameterID, i)
		}
		layerMeta := metadata.ReconGainSubblock.Layers[layerMetaIdx]
		layerMetaIdx++
		userElement, err := layerMeta.toReconGainElement()
		if err != nil {
			return ParameterBlockWithData{}, err
		}
		var element ReconGainElement
		if layerMeta.OverrideComputedReconGains {
			element = userElement
		} else {
			labels, err := FindDemixedChannels(accumulated, layerChannels)
			if err != nil {
				return ParameterBlockWithData{}, err
			}
			computed, err := g.computeReconGainElement(labels, meta.AudioElementID, start)
			if err != nil {
				return ParameterBlockWithData{}, err
			}
			if err := compareReconGainElements(computed, userElement); err != nil {
				return ParameterBlockWithData{}, invalidArgf(op, "parameter_id %d, layer %d: %v", metadata.ParameterID, i, err)
			}
			element = computed
		}
		if err := element.Validate(); err != nil {
			return ParameterBlockWithData{}, unknownf(op, "layer %d: %v", i, err)
		}
		elements = append(elements, element)
		accumulated = layerChannels
	}
	obu := ParameterBlockObu{
		ParameterID:         metadata.ParameterID,
		ParamType:           ParamDefinitionReconGain,
		ParamDefinitionMode: meta.ParamDefinition.ParamDefinitionMode,
		Duration:            duration,
	}
	obu.InitializeSubblocks(1)
	obu.Subblocks[0] = NewReconGainSubblock(duration, ReconGainInfoParameterData{ReconGainElements: elements})
	if err := obu.Validate(); err != nil {
		return ParameterBlockWithData{}, err
	}
	return ParameterBlockWithData{Obu: obu, StartTimestamp: start, EndTimestamp: end}, nil
}

func (g *Generator) computeReconGainElement(labels []string, aid DecodedUleb128, t int32) (ReconGainElement, error) {
	const op = "Generator.computeReconGainElement"
	var e ReconGainElement
	if g.reconGainGen == nil {
		return e, unknownf(op, "a recon-gain-typed parameter_id requires a ReconGainGenerator")
	}
	for _, label := range labels {
		ratio, err := g.reconGainGen.ComputeReconGain(label, aid, t)
		if err != nil {
			return e, err
		}
		pos, err := LabelToBitPosition(label)
		if err != nil {
			return e, err
		}
		gain := ScaleReconGain(ratio)
		if gain == 0 {
			continue
		}
		e.ReconGainFlag |= 1 << uint(pos)
		e.ReconGain[pos] = gain
	}
	return e, nil
}

// compareReconGainElements reports every position where computed and user
// disagree, per spec.md's S5 scenario ("lists all position deltas").
func compareReconGainElements(computed, user ReconGainElement) error {
	var mismatches []string
	for pos := 0; pos < numReconGainPositions; pos++ {
		computedSet := computed.ReconGainFlag&(1<<uint(pos)) != 0
		userSet := user.ReconGainFlag&(1<<uint(pos)) != 0
		if computedSet != userSet || computed.ReconGain[pos] != user.ReconGain[pos] {
			mismatches = append(mismatches, fmt.Sprintf("position %d: computed(set=%v,gain=%d) != user(set=%v,gain=%d)", pos, computedSet, computed.ReconGain[pos], userSet, user.ReconGain[pos]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return fmt.Errorf("recon gain mismatch: %v", mismatches)
}
