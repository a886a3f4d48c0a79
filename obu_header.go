package iamf

import (
	"github.com/rafasloth/iamf-tools/internal/bitio"
)

// ObuType names the five OBU kinds this package models. Serialized as a
// 5-bit field in the OBU header, matching the low-overhead framing IAMF
// inherits from AV1.
type ObuType uint8

const (
	ObuIASequenceHeader ObuType = 0
	ObuCodecConfig      ObuType = 1
	ObuAudioElement     ObuType = 2
	ObuMixPresentation  ObuType = 3
	ObuParameterBlock   ObuType = 4
)

// ObuHeader is the framing every OBU carries ahead of its payload: the type,
// three single-bit flags, and (when HasSize is set) a ULEB128 payload size
// written by WriteObuWithSize once the payload length is known.
type ObuHeader struct {
	Type               ObuType
	ObuRedundantCopy   bool
	ObuTrimmingStatus  bool
	ObuExtensionFlag   bool
	HasSize            bool
}

const opObuHeaderWrite = "ObuHeader.Write"

// Write writes the header's fixed fields (not the size field, which is
// written by WriteObuWithSize once the payload is known).
func (h ObuHeader) Write(w *bitio.Writer) error {
	if err := w.WriteUnsignedLiteral(uint32(h.Type), 5); err != nil {
		return wrapBitioErr(opObuHeaderWrite, err)
	}
	if err := w.WriteUnsignedLiteral(boolBit(h.ObuRedundantCopy), 1); err != nil {
		return wrapBitioErr(opObuHeaderWrite, err)
	}
	if err := w.WriteUnsignedLiteral(boolBit(h.ObuTrimmingStatus), 1); err != nil {
		return wrapBitioErr(opObuHeaderWrite, err)
	}
	if err := w.WriteUnsignedLiteral(boolBit(h.ObuExtensionFlag), 1); err != nil {
		return wrapBitioErr(opObuHeaderWrite, err)
	}
	return nil
}

const opObuHeaderParse = "ParseObuHeader"

// ParseObuHeader reads the header's fixed fields, mirroring Write.
func ParseObuHeader(r *bitio.Reader) (ObuHeader, error) {
	var h ObuHeader
	v, err := r.ReadUnsignedLiteral(5)
	if err != nil {
		return h, wrapBitioErr(opObuHeaderParse, err)
	}
	h.Type = ObuType(v)
	redundant, err := r.ReadUnsignedLiteral(1)
	if err != nil {
		return h, wrapBitioErr(opObuHeaderParse, err)
	}
	h.ObuRedundantCopy = redundant != 0
	trimming, err := r.ReadUnsignedLiteral(1)
	if err != nil {
		return h, wrapBitioErr(opObuHeaderParse, err)
	}
	h.ObuTrimmingStatus = trimming != 0
	ext, err := r.ReadUnsignedLiteral(1)
	if err != nil {
		return h, wrapBitioErr(opObuHeaderParse, err)
	}
	h.ObuExtensionFlag = ext != 0
	return h, nil
}

// WriteObuWithSize writes header, then a ULEB128 payload size, then the
// already-serialized payload bytes. This is how every top-level OBU
// serializer assembles its final byte span.
func WriteObuWithSize(w *bitio.Writer, header ObuHeader, payload []byte) error {
	const op = "WriteObuWithSize"
	header.HasSize = true
	if err := header.Write(w); err != nil {
		return err
	}
	if err := w.WriteUleb128(uint32(len(payload))); err != nil {
		return wrapBitioErr(op, err)
	}
	if err := w.WriteBytes(payload); err != nil {
		return wrapBitioErr(op, err)
	}
	return nil
}

// ParseObuWithSize reads a header and a ULEB128-length-prefixed payload,
// returning the header and the raw payload bytes for further parsing.
func ParseObuWithSize(r *bitio.Reader) (ObuHeader, []byte, error) {
	const op = "ParseObuWithSize"
	header, err := ParseObuHeader(r)
	if err != nil {
		return header, nil, err
	}
	size, err := r.ReadUleb128()
	if err != nil {
		return header, nil, wrapBitioErr(op, err)
	}
	payload, err := r.ReadBytes(int(size))
	if err != nil {
		return header, nil, wrapBitioErr(op, err)
	}
	header.HasSize = true
	return header, payload, nil
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
