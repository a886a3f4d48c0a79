package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// CodecConfigObu is a minimal model of the Codec Config OBU: enough to be a
// legitimate cross-reference target for AudioElementObu.codec_config_id.
// The codec-specific decoder_config grammar is an external collaborator
// (spec.md §1 places FLAC/Opus/AAC/LPCM encoder adapters out of scope), so
// it is carried here as an opaque byte span.
type CodecConfigObu struct {
	CodecConfigID      DecodedUleb128
	CodecID            [4]byte // FourCC, e.g. "opus", "mp4a", "fLaC", "ipcm"
	NumSamplesPerFrame DecodedUleb128
	AudioRollDistance  int16
	DecoderConfig      []byte
}

const opCodecConfigWrite = "CodecConfigObu.WritePayload"

// WritePayload serializes the Codec Config payload (without the OBU
// header/size framing).
func (c CodecConfigObu) WritePayload(w *bitio.Writer) error {
	if err := w.WriteUleb128(c.CodecConfigID); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	if err := w.WriteBytes(c.CodecID[:]); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	if err := w.WriteUleb128(c.NumSamplesPerFrame); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	if err := w.WriteSigned16(c.AudioRollDistance); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	if err := w.WriteUleb128(uint32(len(c.DecoderConfig))); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	if err := w.WriteBytes(c.DecoderConfig); err != nil {
		return wrapBitioErr(opCodecConfigWrite, err)
	}
	return nil
}

const opCodecConfigParse = "ParseCodecConfigPayload"

// ParseCodecConfigPayload parses bytes written by WritePayload.
func ParseCodecConfigPayload(r *bitio.Reader) (CodecConfigObu, error) {
	var c CodecConfigObu
	var err error
	if c.CodecConfigID, err = r.ReadUleb128(); err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	idBytes, err := r.ReadBytes(4)
	if err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	copy(c.CodecID[:], idBytes)
	if c.NumSamplesPerFrame, err = r.ReadUleb128(); err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	if c.AudioRollDistance, err = r.ReadSigned16(); err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	size, err := r.ReadUleb128()
	if err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	if c.DecoderConfig, err = r.ReadBytes(int(size)); err != nil {
		return c, wrapBitioErr(opCodecConfigParse, err)
	}
	return c, nil
}
