package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// AudioElementParam pairs a ParamDefinitionType tag with the ParamDefinition
// it governs; an Audio Element OBU carries zero or more of these ahead of
// its channel/scene config.
type AudioElementParam struct {
	Type            ParameterDefinitionType
	ParamDefinition ParamDefinition
}

// ChannelAudioLayerConfig describes one layer of a ScalableChannelLayoutConfig:
// its speaker layout, how many substreams carry it, and an optional output
// gain applied uniformly to the layer.
type ChannelAudioLayerConfig struct {
	LoudspeakerLayout      LoudspeakerLayout
	OutputGainIsPresent    bool
	ReconGainIsPresent     bool
	Reserved               uint8 // 2 bits
	SubstreamCount         uint8
	CoupledSubstreamCount  uint8
	OutputGainFlag         uint8 // 6 bits, only meaningful if OutputGainIsPresent
	OutputGainReserved     uint8 // 2 bits
	OutputGain             int16
}

// ScalableChannelLayoutConfig is the channel-based Audio Element config: an
// ordered list of layers with strictly increasing total channel counts
// (spec.md's channel-growth invariant).
type ScalableChannelLayoutConfig struct {
	Layers []ChannelAudioLayerConfig
}

const opScalableLayoutValidate = "ScalableChannelLayoutConfig.Validate"

// Validate enforces the monotonic channel-growth invariant: each layer's
// cumulative channel count must be strictly greater than the previous
// layer's, and its surround and height counts must each be no smaller than
// the previous layer's.
func (c ScalableChannelLayoutConfig) Validate() error {
	if len(c.Layers) == 0 {
		return invalidArgf(opScalableLayoutValidate, "at least one layer is required")
	}
	if len(c.Layers) > 7 {
		return invalidArgf(opScalableLayoutValidate, "num_layers=%d exceeds the 3-bit field's range", len(c.Layers))
	}
	prevTotal := 0
	var prev ChannelNumbers
	for i, layer := range c.Layers {
		cn, err := channelNumbersForLayout(layer.LoudspeakerLayout)
		if err != nil {
			return err
		}
		total := cn.TotalChannels()
		if total <= prevTotal {
			return invalidArgf(opScalableLayoutValidate, "layer %d total channels %d does not exceed previous layer's %d", i, total, prevTotal)
		}
		if cn.Surround < prev.Surround || cn.Height < prev.Height {
			return invalidArgf(opScalableLayoutValidate, "layer %d surround/height channels (%d,%d) decrease from previous layer's (%d,%d)", i, cn.Surround, cn.Height, prev.Surround, prev.Height)
		}
		prevTotal = total
		prev = cn
	}
	return nil
}

const opScalableLayoutWrite = "ScalableChannelLayoutConfig.Write"

// Write serializes the config per spec.md §4.3.
func (c ScalableChannelLayoutConfig) Write(w *bitio.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.WriteUnsignedLiteral(uint32(len(c.Layers)), 3); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(0, 5); err != nil { // reserved
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	for _, layer := range c.Layers {
		if err := layer.write(w); err != nil {
			return err
		}
	}
	return nil
}

func (l ChannelAudioLayerConfig) write(w *bitio.Writer) error {
	if err := w.WriteUnsignedLiteral(uint32(l.LoudspeakerLayout), 4); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(boolBit(l.OutputGainIsPresent), 1); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(boolBit(l.ReconGainIsPresent), 1); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(l.Reserved), 2); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(l.SubstreamCount), 8); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(l.CoupledSubstreamCount), 8); err != nil {
		return wrapBitioErr(opScalableLayoutWrite, err)
	}
	if l.OutputGainIsPresent {
		if err := w.WriteUnsignedLiteral(uint32(l.OutputGainFlag), 6); err != nil {
			return wrapBitioErr(opScalableLayoutWrite, err)
		}
		if err := w.WriteUnsignedLiteral(uint32(l.OutputGainReserved), 2); err != nil {
			return wrapBitioErr(opScalableLayoutWrite, err)
		}
		if err := w.WriteSigned16(l.OutputGain); err != nil {
			return wrapBitioErr(opScalableLayoutWrite, err)
		}
	}
	return nil
}

const opScalableLayoutParse = "ParseScalableChannelLayoutConfig"

// ParseScalableChannelLayoutConfig parses bytes written by Write.
func ParseScalableChannelLayoutConfig(r *bitio.Reader) (ScalableChannelLayoutConfig, error) {
	var c ScalableChannelLayoutConfig
	numLayers, err := r.ReadUnsignedLiteral(3)
	if err != nil {
		return c, wrapBitioErr(opScalableLayoutParse, err)
	}
	if _, err := r.ReadUnsignedLiteral(5); err != nil { // reserved
		return c, wrapBitioErr(opScalableLayoutParse, err)
	}
	c.Layers = make([]ChannelAudioLayerConfig, numLayers)
	for i := range c.Layers {
		if c.Layers[i], err = parseChannelAudioLayerConfig(r); err != nil {
			return c, err
		}
	}
	return c, nil
}

func parseChannelAudioLayerConfig(r *bitio.Reader) (ChannelAudioLayerConfig, error) {
	var l ChannelAudioLayerConfig
	v, err := r.ReadUnsignedLiteral(4)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.LoudspeakerLayout = LoudspeakerLayout(v)
	v, err = r.ReadUnsignedLiteral(1)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.OutputGainIsPresent = v != 0
	v, err = r.ReadUnsignedLiteral(1)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.ReconGainIsPresent = v != 0
	v, err = r.ReadUnsignedLiteral(2)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.Reserved = uint8(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.SubstreamCount = uint8(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return l, wrapBitioErr(opScalableLayoutParse, err)
	}
	l.CoupledSubstreamCount = uint8(v)
	if l.OutputGainIsPresent {
		v, err = r.ReadUnsignedLiteral(6)
		if err != nil {
			return l, wrapBitioErr(opScalableLayoutParse, err)
		}
		l.OutputGainFlag = uint8(v)
		v, err = r.ReadUnsignedLiteral(2)
		if err != nil {
			return l, wrapBitioErr(opScalableLayoutParse, err)
		}
		l.OutputGainReserved = uint8(v)
		if l.OutputGain, err = r.ReadSigned16(); err != nil {
			return l, wrapBitioErr(opScalableLayoutParse, err)
		}
	}
	return l, nil
}

// validOutputChannelCounts are the perfect squares Ambisonics output channel
// counts are restricted to, per spec.md's Ambisonics invariant.
var validOutputChannelCounts = []int{1, 4, 9, 16, 25}

const opNextValidOutputChannelCount = "GetNextValidOutputChannelCount"

// GetNextValidOutputChannelCount returns the smallest perfect square in
// {1,4,9,16,25} that is strictly greater than current, or an error if
// current is already at or beyond the largest supported order.
func GetNextValidOutputChannelCount(current int) (int, error) {
	for _, n := range validOutputChannelCounts {
		if n > current {
			return n, nil
		}
	}
	return 0, invalidArgf(opNextValidOutputChannelCount, "no valid output channel count greater than %d (max supported is %d)", current, validOutputChannelCounts[len(validOutputChannelCounts)-1])
}

// AmbisonicsMonoConfig maps each output Ambisonics (ACN) channel to a
// substream, or marks it inactive with the 255 sentinel.
type AmbisonicsMonoConfig struct {
	OutputChannelCount uint8
	SubstreamCount     uint8
	ChannelMapping     []uint8 // length OutputChannelCount; 255 means inactive
}

const ambisonicsInactiveChannel = 255

const opAmbisonicsMonoValidate = "AmbisonicsMonoConfig.Validate"

// Validate checks the output channel count is a perfect square from
// validOutputChannelCounts, that the channel mapping only references
// substream indices below SubstreamCount (or the inactive sentinel), and
// that the number of distinct non-sentinel entries equals SubstreamCount.
func (c AmbisonicsMonoConfig) Validate() error {
	if !isValidOutputChannelCount(int(c.OutputChannelCount)) {
		return invalidArgf(opAmbisonicsMonoValidate, "output_channel_count=%d is not a supported Ambisonics order", c.OutputChannelCount)
	}
	if len(c.ChannelMapping) != int(c.OutputChannelCount) {
		return invalidArgf(opAmbisonicsMonoValidate, "channel_mapping has %d entries, want output_channel_count=%d", len(c.ChannelMapping), c.OutputChannelCount)
	}
	distinct := make(map[uint8]bool, c.SubstreamCount)
	for i, ch := range c.ChannelMapping {
		if ch == ambisonicsInactiveChannel {
			continue
		}
		if ch >= c.SubstreamCount {
			return invalidArgf(opAmbisonicsMonoValidate, "channel_mapping[%d]=%d is not a valid substream index (substream_count=%d)", i, ch, c.SubstreamCount)
		}
		distinct[ch] = true
	}
	if len(distinct) != int(c.SubstreamCount) {
		return invalidArgf(opAmbisonicsMonoValidate, "channel_mapping references %d distinct substreams, want substream_count=%d", len(distinct), c.SubstreamCount)
	}
	return nil
}

func isValidOutputChannelCount(n int) bool {
	for _, v := range validOutputChannelCounts {
		if v == n {
			return true
		}
	}
	return false
}

const opAmbisonicsMonoWrite = "AmbisonicsMonoConfig.Write"

// Write serializes the config per spec.md §4.3.
func (c AmbisonicsMonoConfig) Write(w *bitio.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.WriteUnsignedLiteral(uint32(c.OutputChannelCount), 8); err != nil {
		return wrapBitioErr(opAmbisonicsMonoWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(c.SubstreamCount), 8); err != nil {
		return wrapBitioErr(opAmbisonicsMonoWrite, err)
	}
	for _, ch := range c.ChannelMapping {
		if err := w.WriteUnsignedLiteral(uint32(ch), 8); err != nil {
			return wrapBitioErr(opAmbisonicsMonoWrite, err)
		}
	}
	return nil
}

const opAmbisonicsMonoParse = "ParseAmbisonicsMonoConfig"

// ParseAmbisonicsMonoConfig parses bytes written by Write.
func ParseAmbisonicsMonoConfig(r *bitio.Reader) (AmbisonicsMonoConfig, error) {
	var c AmbisonicsMonoConfig
	v, err := r.ReadUnsignedLiteral(8)
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsMonoParse, err)
	}
	c.OutputChannelCount = uint8(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsMonoParse, err)
	}
	c.SubstreamCount = uint8(v)
	c.ChannelMapping = make([]uint8, c.OutputChannelCount)
	for i := range c.ChannelMapping {
		v, err = r.ReadUnsignedLiteral(8)
		if err != nil {
			return c, wrapBitioErr(opAmbisonicsMonoParse, err)
		}
		c.ChannelMapping[i] = uint8(v)
	}
	return c, nil
}

// AmbisonicsProjectionConfig carries a row-major demixing matrix mapping
// (SubstreamCount+CoupledSubstreamCount) input rows to OutputChannelCount
// columns, for Ambisonics configurations that mix substreams rather than
// mapping them 1:1.
type AmbisonicsProjectionConfig struct {
	OutputChannelCount    uint8
	SubstreamCount        uint8
	CoupledSubstreamCount uint8
	DemixingMatrix        []int16 // row-major, (SubstreamCount+CoupledSubstreamCount) x OutputChannelCount
}

const opAmbisonicsProjectionValidate = "AmbisonicsProjectionConfig.Validate"

// Validate checks the output channel count and the demixing matrix's shape.
func (c AmbisonicsProjectionConfig) Validate() error {
	if !isValidOutputChannelCount(int(c.OutputChannelCount)) {
		return invalidArgf(opAmbisonicsProjectionValidate, "output_channel_count=%d is not a supported Ambisonics order", c.OutputChannelCount)
	}
	want := int(c.SubstreamCount+c.CoupledSubstreamCount) * int(c.OutputChannelCount)
	if len(c.DemixingMatrix) != want {
		return invalidArgf(opAmbisonicsProjectionValidate, "demixing_matrix has %d entries, want (substream_count+coupled_substream_count)*output_channel_count=%d", len(c.DemixingMatrix), want)
	}
	return nil
}

const opAmbisonicsProjectionWrite = "AmbisonicsProjectionConfig.Write"

// Write serializes the config per spec.md §4.3.
func (c AmbisonicsProjectionConfig) Write(w *bitio.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.WriteUnsignedLiteral(uint32(c.OutputChannelCount), 8); err != nil {
		return wrapBitioErr(opAmbisonicsProjectionWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(c.SubstreamCount), 8); err != nil {
		return wrapBitioErr(opAmbisonicsProjectionWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(c.CoupledSubstreamCount), 8); err != nil {
		return wrapBitioErr(opAmbisonicsProjectionWrite, err)
	}
	for _, v := range c.DemixingMatrix {
		if err := w.WriteSigned16(v); err != nil {
			return wrapBitioErr(opAmbisonicsProjectionWrite, err)
		}
	}
	return nil
}

const opAmbisonicsProjectionParse = "ParseAmbisonicsProjectionConfig"

// ParseAmbisonicsProjectionConfig parses bytes written by Write.
func ParseAmbisonicsProjectionConfig(r *bitio.Reader) (AmbisonicsProjectionConfig, error) {
	var c AmbisonicsProjectionConfig
	v, err := r.ReadUnsignedLiteral(8)
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsProjectionParse, err)
	}
	c.OutputChannelCount = uint8(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsProjectionParse, err)
	}
	c.SubstreamCount = uint8(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsProjectionParse, err)
	}
	c.CoupledSubstreamCount = uint8(v)
	n := int(c.SubstreamCount+c.CoupledSubstreamCount) * int(c.OutputChannelCount)
	c.DemixingMatrix = make([]int16, n)
	for i := range c.DemixingMatrix {
		if c.DemixingMatrix[i], err = r.ReadSigned16(); err != nil {
			return c, wrapBitioErr(opAmbisonicsProjectionParse, err)
		}
	}
	return c, nil
}

// AmbisonicsConfig is the scene-based Audio Element config: a tagged union
// over AmbisonicsModeMono and AmbisonicsModeProjection.
type AmbisonicsConfig struct {
	Mode       AmbisonicsMode
	Mono       *AmbisonicsMonoConfig
	Projection *AmbisonicsProjectionConfig
}

// NewAmbisonicsMonoConfig builds a Mono-mode AmbisonicsConfig.
func NewAmbisonicsMonoConfig(c AmbisonicsMonoConfig) AmbisonicsConfig {
	return AmbisonicsConfig{Mode: AmbisonicsModeMono, Mono: &c}
}

// NewAmbisonicsProjectionConfig builds a Projection-mode AmbisonicsConfig.
func NewAmbisonicsProjectionConfig(c AmbisonicsProjectionConfig) AmbisonicsConfig {
	return AmbisonicsConfig{Mode: AmbisonicsModeProjection, Projection: &c}
}

const opAmbisonicsConfigWrite = "AmbisonicsConfig.Write"

// Write serializes the mode tag followed by the active variant's payload.
func (c AmbisonicsConfig) Write(w *bitio.Writer) error {
	if err := w.WriteUleb128(uint32(c.Mode)); err != nil {
		return wrapBitioErr(opAmbisonicsConfigWrite, err)
	}
	switch c.Mode {
	case AmbisonicsModeMono:
		if c.Mono == nil {
			return invalidArgf(opAmbisonicsConfigWrite, "mode is Mono but Mono config is nil")
		}
		return c.Mono.Write(w)
	case AmbisonicsModeProjection:
		if c.Projection == nil {
			return invalidArgf(opAmbisonicsConfigWrite, "mode is Projection but Projection config is nil")
		}
		return c.Projection.Write(w)
	default:
		return invalidArgf(opAmbisonicsConfigWrite, "ambisonics_mode=%d is reserved and cannot be written", c.Mode)
	}
}

const opAmbisonicsConfigParse = "ParseAmbisonicsConfig"

// ParseAmbisonicsConfig parses bytes written by Write.
func ParseAmbisonicsConfig(r *bitio.Reader) (AmbisonicsConfig, error) {
	var c AmbisonicsConfig
	mode, err := r.ReadUleb128()
	if err != nil {
		return c, wrapBitioErr(opAmbisonicsConfigParse, err)
	}
	c.Mode = AmbisonicsMode(mode)
	switch c.Mode {
	case AmbisonicsModeMono:
		mono, err := ParseAmbisonicsMonoConfig(r)
		if err != nil {
			return c, err
		}
		c.Mono = &mono
	case AmbisonicsModeProjection:
		proj, err := ParseAmbisonicsProjectionConfig(r)
		if err != nil {
			return c, err
		}
		c.Projection = &proj
	default:
		return c, invalidArgf(opAmbisonicsConfigParse, "ambisonics_mode=%d is reserved and cannot be parsed", c.Mode)
	}
	return c, nil
}

// ExtensionConfig carries an opaque, length-prefixed payload for reserved
// AudioElementType values (spec.md §1 places exotic config grammars out of
// scope beyond round-tripping their bytes).
type ExtensionConfig struct {
	Bytes []byte
}

const opExtensionConfigWrite = "ExtensionConfig.Write"

// Write serializes the config as a ULEB128 length followed by the bytes.
func (c ExtensionConfig) Write(w *bitio.Writer) error {
	if err := w.WriteUleb128(uint32(len(c.Bytes))); err != nil {
		return wrapBitioErr(opExtensionConfigWrite, err)
	}
	return wrapBitioErr(opExtensionConfigWrite, w.WriteBytes(c.Bytes))
}

const opExtensionConfigParse = "ParseExtensionConfig"

// ParseExtensionConfig parses bytes written by Write.
func ParseExtensionConfig(r *bitio.Reader) (ExtensionConfig, error) {
	var c ExtensionConfig
	size, err := r.ReadUleb128()
	if err != nil {
		return c, wrapBitioErr(opExtensionConfigParse, err)
	}
	if c.Bytes, err = r.ReadBytes(int(size)); err != nil {
		return c, wrapBitioErr(opExtensionConfigParse, err)
	}
	return c, nil
}

// AudioElementObu models an Audio Element OBU: a codec config reference, a
// list of substream ids, the ParamDefinitions that govern this element's
// parameter tracks, and a channel-based or scene-based config.
type AudioElementObu struct {
	AudioElementID   DecodedUleb128
	Type             AudioElementType
	Reserved         uint8 // 5 bits
	CodecConfigID    DecodedUleb128
	AudioSubstreamIDs []DecodedUleb128
	Params           []AudioElementParam

	ScalableChannelLayout *ScalableChannelLayoutConfig
	Ambisonics            *AmbisonicsConfig
	Extension             *ExtensionConfig
}

const opAudioElementInitSubstreams = "AudioElementObu.InitializeAudioSubstreams"

// InitializeAudioSubstreams sets the element's substream id list, rejecting
// duplicates.
func (a *AudioElementObu) InitializeAudioSubstreams(ids []DecodedUleb128) error {
	seen := make(map[DecodedUleb128]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return invalidArgf(opAudioElementInitSubstreams, "duplicate audio_substream_id %d", id)
		}
		seen[id] = true
	}
	a.AudioSubstreamIDs = ids
	return nil
}

const opAudioElementInitParams = "AudioElementObu.InitializeParams"

// InitializeParams sets the element's parameter list, rejecting duplicate
// (type, parameter_id) pairs.
func (a *AudioElementObu) InitializeParams(params []AudioElementParam) error {
	type key struct {
		typ ParameterDefinitionType
		id  DecodedUleb128
	}
	seen := make(map[key]bool, len(params))
	for _, p := range params {
		k := key{p.Type, p.ParamDefinition.ParameterID}
		if seen[k] {
			return invalidArgf(opAudioElementInitParams, "duplicate parameter (type=%s, parameter_id=%d)", p.Type, p.ParamDefinition.ParameterID)
		}
		seen[k] = true
	}
	a.Params = params
	return nil
}

const opAudioElementValidate = "AudioElementObu.Validate"

// Validate checks that exactly one config variant matches the element's
// type, that variant's own invariants, and that the number of declared
// substreams matches the config's arithmetic.
func (a AudioElementObu) Validate() error {
	set := 0
	for _, present := range []bool{a.ScalableChannelLayout != nil, a.Ambisonics != nil, a.Extension != nil} {
		if present {
			set++
		}
	}
	if set > 1 {
		return invalidArgf(opAudioElementValidate, "%d config variants are set, want exactly one", set)
	}
	switch a.Type {
	case AudioElementChannelBased:
		if a.ScalableChannelLayout == nil {
			return invalidArgf(opAudioElementValidate, "channel-based element requires a ScalableChannelLayout config")
		}
		if err := a.ScalableChannelLayout.Validate(); err != nil {
			return err
		}
		var want int
		for _, layer := range a.ScalableChannelLayout.Layers {
			want += int(layer.SubstreamCount)
		}
		if got := len(a.AudioSubstreamIDs); got != want {
			return invalidArgf(opAudioElementValidate, "audio_substream_ids has %d entries, want %d (sum of layer substream_count)", got, want)
		}
		return nil
	case AudioElementSceneBased:
		if a.Ambisonics == nil {
			return invalidArgf(opAudioElementValidate, "scene-based element requires an Ambisonics config")
		}
		var want int
		switch a.Ambisonics.Mode {
		case AmbisonicsModeMono:
			if a.Ambisonics.Mono == nil {
				return invalidArgf(opAudioElementValidate, "ambisonics mono mode requires a Mono config")
			}
			want = int(a.Ambisonics.Mono.SubstreamCount)
		case AmbisonicsModeProjection:
			if a.Ambisonics.Projection == nil {
				return invalidArgf(opAudioElementValidate, "ambisonics projection mode requires a Projection config")
			}
			want = int(a.Ambisonics.Projection.SubstreamCount)
		default:
			return invalidArgf(opAudioElementValidate, "ambisonics_mode=%d is not a supported Ambisonics mode", a.Ambisonics.Mode)
		}
		if got := len(a.AudioSubstreamIDs); got != want {
			return invalidArgf(opAudioElementValidate, "audio_substream_ids has %d entries, want %d (N from Ambisonics config)", got, want)
		}
		return nil
	default:
		if a.Extension == nil {
			return invalidArgf(opAudioElementValidate, "reserved-type element requires an Extension config")
		}
		return nil
	}
}

const opAudioElementWrite = "AudioElementObu.WritePayload"

// WritePayload serializes the payload (without OBU header/size framing).
func (a AudioElementObu) WritePayload(w *bitio.Writer) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := w.WriteUleb128(a.AudioElementID); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(a.Type), 3); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(a.Reserved), 5); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	if err := w.WriteUleb128(a.CodecConfigID); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	if err := w.WriteUleb128(uint32(len(a.AudioSubstreamIDs))); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	for _, id := range a.AudioSubstreamIDs {
		if err := w.WriteUleb128(id); err != nil {
			return wrapBitioErr(opAudioElementWrite, err)
		}
	}
	if err := w.WriteUleb128(uint32(len(a.Params))); err != nil {
		return wrapBitioErr(opAudioElementWrite, err)
	}
	for _, p := range a.Params {
		if err := w.WriteUleb128(uint32(p.Type)); err != nil {
			return wrapBitioErr(opAudioElementWrite, err)
		}
		if err := p.ParamDefinition.Write(w); err != nil {
			return err
		}
	}
	switch a.Type {
	case AudioElementChannelBased:
		return a.ScalableChannelLayout.Write(w)
	case AudioElementSceneBased:
		return a.Ambisonics.Write(w)
	default:
		return a.Extension.Write(w)
	}
}

const opAudioElementParse = "ParseAudioElementPayload"

// ParseAudioElementPayload parses bytes written by WritePayload.
func ParseAudioElementPayload(r *bitio.Reader) (AudioElementObu, error) {
	var a AudioElementObu
	var err error
	if a.AudioElementID, err = r.ReadUleb128(); err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	v, err := r.ReadUnsignedLiteral(3)
	if err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	a.Type = AudioElementType(v)
	v, err = r.ReadUnsignedLiteral(5)
	if err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	a.Reserved = uint8(v)
	if a.CodecConfigID, err = r.ReadUleb128(); err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	numSubstreams, err := r.ReadUleb128()
	if err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	a.AudioSubstreamIDs = make([]DecodedUleb128, numSubstreams)
	for i := range a.AudioSubstreamIDs {
		if a.AudioSubstreamIDs[i], err = r.ReadUleb128(); err != nil {
			return a, wrapBitioErr(opAudioElementParse, err)
		}
	}
	numParams, err := r.ReadUleb128()
	if err != nil {
		return a, wrapBitioErr(opAudioElementParse, err)
	}
	if numParams > 0 {
		a.Params = make([]AudioElementParam, numParams)
	}
	for i := range a.Params {
		typ, err := r.ReadUleb128()
		if err != nil {
			return a, wrapBitioErr(opAudioElementParse, err)
		}
		a.Params[i].Type = ParameterDefinitionType(typ)
		if a.Params[i].ParamDefinition, err = ParseParamDefinition(r, a.Params[i].Type); err != nil {
			return a, err
		}
	}
	switch a.Type {
	case AudioElementChannelBased:
		cfg, err := ParseScalableChannelLayoutConfig(r)
		if err != nil {
			return a, err
		}
		a.ScalableChannelLayout = &cfg
	case AudioElementSceneBased:
		cfg, err := ParseAmbisonicsConfig(r)
		if err != nil {
			return a, err
		}
		a.Ambisonics = &cfg
	default:
		cfg, err := ParseExtensionConfig(r)
		if err != nil {
			return a, err
		}
		a.Extension = &cfg
	}
	return a, nil
}
