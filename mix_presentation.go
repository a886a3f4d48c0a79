package iamf

import "github.com/rafasloth/iamf-tools/internal/bitio"

// MixPresentationObu is a minimal model carrying only what
// Generator.Initialize needs: the presentation's id and the audio elements
// it mixes. Loudness/layout annex fields are out of scope (spec.md's
// Non-goals exclude playback-side rendering).
type MixPresentationObu struct {
	MixPresentationID  DecodedUleb128
	AudioElementIDs    []DecodedUleb128
}

const opMixPresentationWrite = "MixPresentationObu.WritePayload"

// WritePayload serializes the payload (without OBU header/size framing).
func (m MixPresentationObu) WritePayload(w *bitio.Writer) error {
	if err := w.WriteUleb128(m.MixPresentationID); err != nil {
		return wrapBitioErr(opMixPresentationWrite, err)
	}
	if err := w.WriteUleb128(uint32(len(m.AudioElementIDs))); err != nil {
		return wrapBitioErr(opMixPresentationWrite, err)
	}
	for _, id := range m.AudioElementIDs {
		if err := w.WriteUleb128(id); err != nil {
			return wrapBitioErr(opMixPresentationWrite, err)
		}
	}
	return nil
}

const opMixPresentationParse = "ParseMixPresentationPayload"

// ParseMixPresentationPayload parses bytes written by WritePayload.
func ParseMixPresentationPayload(r *bitio.Reader) (MixPresentationObu, error) {
	var m MixPresentationObu
	var err error
	if m.MixPresentationID, err = r.ReadUleb128(); err != nil {
		return m, wrapBitioErr(opMixPresentationParse, err)
	}
	count, err := r.ReadUleb128()
	if err != nil {
		return m, wrapBitioErr(opMixPresentationParse, err)
	}
	m.AudioElementIDs = make([]DecodedUleb128, count)
	for i := range m.AudioElementIDs {
		if m.AudioElementIDs[i], err = r.ReadUleb128(); err != nil {
			return m, wrapBitioErr(opMixPresentationParse, err)
		}
	}
	return m, nil
}
