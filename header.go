package archive

import (
	"encoding/binary"
	"math"
)

// header layout (little-endian), lebar tetap per build:
// 0..3 : uint32 metadata_len (Header32)
// 0..7 : uint64 metadata_len (Header64)

// putHeader writes n into the first h bytes of buf.
func putHeader(buf []byte, h HeaderSize, n uint64) error {
	switch h {
	case Header32:
		if n > math.MaxUint32 {
			return &Error{Kind: ErrEncoding, Op: "put header", Want: math.MaxUint32, Have: n,
				Err: errMetadataTooLarge}
		}
		binary.LittleEndian.PutUint32(buf[:4], uint32(n))
	case Header64:
		binary.LittleEndian.PutUint64(buf[:8], n)
	default:
		return h.valid()
	}
	return nil
}

// readHeader reads the declared metadata length from the front of buf.
func readHeader(buf []byte, h HeaderSize) (uint64, error) {
	if len(buf) < int(h) {
		return 0, &Error{Kind: ErrCorruptArchive, Op: "read header", Want: uint64(h), Have: uint64(len(buf)),
			Err: errShortHeader}
	}
	switch h {
	case Header32:
		return uint64(binary.LittleEndian.Uint32(buf[:4])), nil
	case Header64:
		return binary.LittleEndian.Uint64(buf[:8]), nil
	}
	return 0, h.valid()
}
