// Package fixtures loads WAV-encoded test audio into the in-memory sample
// maps the recon-gain generator's SampleProvider interface expects. It
// exists for tests only: production sample decoding (FLAC/Opus/AAC/LPCM)
// is an external collaborator the core package never performs.
package fixtures

import (
	"fmt"
	"os"

	"github.com/youpy/go-wav"

	iamf "github.com/rafasloth/iamf-tools"
)

// WavSampleProvider implements iamf.SampleProvider by serving slices out of
// fully-decoded mono WAV files, one per (audio_element_id, channel label)
// pair. subblockDuration fixes the window length every Samples call
// returns, matching a single test's fixed frame size.
type WavSampleProvider struct {
	channels         map[iamf.DecodedUleb128]map[string][]int32
	subblockDuration int32
}

// NewWavSampleProvider returns an empty provider. Load each channel's audio
// with LoadChannel before use.
func NewWavSampleProvider(subblockDuration int32) *WavSampleProvider {
	return &WavSampleProvider{
		channels:         make(map[iamf.DecodedUleb128]map[string][]int32),
		subblockDuration: subblockDuration,
	}
}

// LoadChannel decodes the mono WAV file at path and registers it under
// (audioElementID, label).
func (p *WavSampleProvider) LoadChannel(audioElementID iamf.DecodedUleb128, label, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fixtures: opening %s: %w", path, err)
	}
	defer f.Close()

	reader := wav.NewReader(f)
	format, err := reader.Format()
	if err != nil {
		return fmt.Errorf("fixtures: reading WAV format from %s: %w", path, err)
	}
	if format.AudioFormat != wav.AudioFormatPCM {
		return fmt.Errorf("fixtures: %s: unsupported WAV audio format %d, want PCM", path, format.AudioFormat)
	}
	if format.NumChannels != 1 {
		return fmt.Errorf("fixtures: %s: expected a mono channel, got %d channels", path, format.NumChannels)
	}

	var samples []int32
	for {
		chunk, err := reader.ReadSamples()
		if len(chunk) == 0 || err != nil {
			break
		}
		for _, s := range chunk {
			samples = append(samples, int32(s.Values[0]))
		}
	}

	if p.channels[audioElementID] == nil {
		p.channels[audioElementID] = make(map[string][]int32)
	}
	p.channels[audioElementID][label] = samples
	return nil
}

// Samples implements iamf.SampleProvider: it returns the subblockDuration
// samples of label's channel starting at startTimestamp.
func (p *WavSampleProvider) Samples(audioElementID iamf.DecodedUleb128, startTimestamp int32, label string) ([]int32, error) {
	byLabel, ok := p.channels[audioElementID]
	if !ok {
		return nil, fmt.Errorf("fixtures: no channels loaded for audio_element_id %d", audioElementID)
	}
	samples, ok := byLabel[label]
	if !ok {
		return nil, fmt.Errorf("fixtures: no channel loaded for label %q on audio_element_id %d", label, audioElementID)
	}
	start := int64(startTimestamp)
	end := start + int64(p.subblockDuration)
	if start < 0 || end > int64(len(samples)) {
		return nil, fmt.Errorf("fixtures: window [%d,%d) out of range for %d loaded samples", start, end, len(samples))
	}
	return samples[start:end], nil
}

var _ iamf.SampleProvider = (*WavSampleProvider)(nil)
