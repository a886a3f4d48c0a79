package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// IASequenceHeaderObu marks the start of an IAMF sequence and carries the
// profile the rest of the stream must conform to. Generator.Initialize
// takes one as an argument but does not inspect it.
type IASequenceHeaderObu struct {
	IACode         [4]byte // always "iamf"
	PrimaryProfile ProfileVersion
	AdditionalProfile ProfileVersion
}

const opIASeqHeaderWrite = "IASequenceHeaderObu.WritePayload"

// WritePayload serializes the payload (without OBU header/size framing).
func (h IASequenceHeaderObu) WritePayload(w *bitio.Writer) error {
	if err := w.WriteBytes(h.IACode[:]); err != nil {
		return wrapBitioErr(opIASeqHeaderWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(h.PrimaryProfile), 8); err != nil {
		return wrapBitioErr(opIASeqHeaderWrite, err)
	}
	if err := w.WriteUnsignedLiteral(uint32(h.AdditionalProfile), 8); err != nil {
		return wrapBitioErr(opIASeqHeaderWrite, err)
	}
	return nil
}

const opIASeqHeaderParse = "ParseIASequenceHeaderPayload"

// ParseIASequenceHeaderPayload parses bytes written by WritePayload.
func ParseIASequenceHeaderPayload(r *bitio.Reader) (IASequenceHeaderObu, error) {
	var h IASequenceHeaderObu
	idBytes, err := r.ReadBytes(4)
	if err != nil {
		return h, wrapBitioErr(opIASeqHeaderParse, err)
	}
	copy(h.IACode[:], idBytes)
	v, err := r.ReadUnsignedLiteral(8)
	if err != nil {
		return h, wrapBitioErr(opIASeqHeaderParse, err)
	}
	h.PrimaryProfile = ProfileVersion(v)
	v, err = r.ReadUnsignedLiteral(8)
	if err != nil {
		return h, wrapBitioErr(opIASeqHeaderParse, err)
	}
	h.AdditionalProfile = ProfileVersion(v)
	return h, nil
}
