// Package archive stores a small structured metadata record and a large opaque
// payload in one file, laid out so the metadata can be decoded in place from a
// memory mapping without reading the payload.
//
// Layout (little-endian):
//
//	offset 0               header        uint32 or uint64 metadata_len
//	offset H               metadata      flatbuffers Meta table, metadata_len bytes
//	offset H+metadata_len  payload       raw bytes up to end of file
//
// There is no payload length field: payload_len is the file size minus the
// first two regions. The only structural check on open is
// H + metadata_len <= file size.
//
// The library is organised into several files for clarity:
//
//	options.go  – encoder/reader options & defaults
//	config.go   – TOML config file
//	header.go   – header read/write
//	layout.go   – region bounds & the size invariant
//	record.go   – MetadataRecord & zero-copy MetadataView
//	codec.go    – flatbuffers encode/decode
//	verify.go   – structural check of untrusted metadata
//	buffer.go   – pooled flatbuffers builders
//	encoder.go  – Encoder
//	mapping.go  – file & mmap handle
//	reader.go   – Open, OpenReaderAt, NewReader & Archive
//	digest.go   – blake3 payload digest
//	stats.go    – lightweight stats accessors
//	metrics.go  – prometheus collectors
//	errors.go   – error kinds
package archive
