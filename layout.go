package archive

import "github.com/pkg/errors"

var (
	errShortHeader      = errors.New("archive shorter than its header")
	errTruncated        = errors.New("metadata region extends past end of archive")
	errMetadataTooLarge = errors.New("metadata does not fit the header")
)

// Layout describes where the regions of one archive live. It is computed once,
// by the Encoder while writing or by the Reader from the header, and never
// changes afterwards.
type Layout struct {
	HeaderSize  HeaderSize
	MetadataLen uint64
	PayloadLen  uint64

	// RootOffset is the position of the metadata root table inside the
	// metadata region, as recorded by the encoding itself. It is informational;
	// the header only ever stores MetadataLen.
	RootOffset uint32
}

// MetadataOffset returns the absolute offset of the metadata region.
func (l Layout) MetadataOffset() uint64 { return uint64(l.HeaderSize) }

// PayloadOffset returns the absolute offset of the payload region.
func (l Layout) PayloadOffset() uint64 { return uint64(l.HeaderSize) + l.MetadataLen }

// Size returns the total archive length.
func (l Layout) Size() uint64 { return l.PayloadOffset() + l.PayloadLen }

// locate menentukan batas region metadata dan payload dari panjang total arsip.
//
// Ini satu-satunya invarian struktural: header_size + metadata_len <= total.
// Semua aritmetika unsigned agar header 8 byte dengan nilai besar tidak overflow.
func locate(total uint64, h HeaderSize, metadataLen uint64) (Layout, error) {
	hs := uint64(h)
	if total < hs {
		return Layout{}, &Error{Kind: ErrCorruptArchive, Op: "locate", Want: hs, Have: total, Err: errShortHeader}
	}
	if metadataLen > total-hs {
		return Layout{}, &Error{
			Kind:   ErrCorruptArchive,
			Op:     "locate",
			Offset: hs,
			Want:   metadataLen,
			Have:   total - hs,
			Err:    errTruncated,
		}
	}
	return Layout{
		HeaderSize:  h,
		MetadataLen: metadataLen,
		PayloadLen:  total - hs - metadataLen,
	}, nil
}
