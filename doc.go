// Package iamf implements an authoring pipeline for the Immersive Audio
// Model and Formats (IAMF) bitstream.
//
// Given a typed description of an immersive audio program (channel-based or
// scene-based/Ambisonics) and time-varying mix-gain, demixing, and
// recon-gain metadata, the package produces the Open Bitstream Units (OBUs)
// that form an IAMF stream: Codec Config, Audio Element, Mix Presentation,
// and Parameter Block.
//
// # Two cores
//
// The OBU model (AudioElementObu, ParamDefinition, ParameterBlockObu, and
// friends) is a typed algebraic description of each OBU with per-OBU
// validation and a bit-exact Write method; see obu_header.go,
// param_definition.go, audio_element.go, and parameter_block.go.
//
// The parameter-block generator (Generator, in generator.go) drives one
// temporal unit at a time: metadata is routed by parameter type with
// AddMetadata, then GenerateDemixing, GenerateMixGain, and (after the host
// decodes and demixes the corresponding audio frame) GenerateReconGain each
// drain their queue into ParameterBlockWithData values.
//
// # Scope
//
// Encoding and decoding actual audio (FLAC/Opus/AAC/LPCM), the demixing
// algorithm itself, and any form of CLI, file I/O, or on-disk state are
// external collaborators consumed only through the interfaces in
// recon_gain.go and metadata.go.
//
// # Concurrency
//
// Generator and GlobalTimingModule are single-threaded and cooperative: a
// host loop drives one temporal unit at a time. Neither type is safe for
// concurrent use from multiple goroutines.
package iamf
