package archive

import (
	"unicode/utf8"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/pkg/errors"

	"github.com/luhtfiimanal/go-meta-archive/internal/metafb"
)

// validateRecord rejects string fields that are not valid UTF-8.
func validateRecord(rec MetadataRecord) error {
	for _, f := range [...]struct{ name, val string }{
		{"name", rec.Name},
		{"description", rec.Description},
		{"payload_digest", rec.PayloadDigest},
	} {
		if !utf8.ValidString(f.val) {
			return &Error{Kind: ErrEncoding, Op: "encode metadata", Err: errors.Errorf("field %s is not valid UTF-8", f.name)}
		}
	}
	return nil
}

// encodeRecord serializes a validated rec with b and returns a copy of the
// finished bytes. A panic from the builder (for example a string too large
// for 32-bit offsets) is reported as ErrEncoding.
func encodeRecord(b *flatbuffers.Builder, rec MetadataRecord) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &Error{Kind: ErrEncoding, Op: "encode metadata", Err: errors.Errorf("builder: %v", r)}
		}
	}()

	name := b.CreateString(rec.Name)
	var desc, digest flatbuffers.UOffsetT
	if rec.Description != "" {
		desc = b.CreateString(rec.Description)
	}
	if rec.PayloadDigest != "" {
		digest = b.CreateString(rec.PayloadDigest)
	}

	metafb.MetaStart(b)
	metafb.MetaAddName(b, name)
	metafb.MetaAddAge(b, rec.Age)
	if desc != 0 {
		metafb.MetaAddDescription(b, desc)
	}
	if digest != 0 {
		metafb.MetaAddPayloadDigest(b, digest)
	}
	metafb.FinishMetaBuffer(b, metafb.MetaEnd(b))

	fin := b.FinishedBytes()
	out = make([]byte, len(fin))
	copy(out, fin)
	return out, nil
}

// decodeMetadata builds a view over region. base is the absolute offset of
// region in the archive.
func decodeMetadata(region []byte, base uint64, mode VerifyMode) (MetadataView, uint32, error) {
	var view MetadataView
	if len(region) < flatbuffers.SizeUOffsetT {
		return view, 0, &Error{
			Kind:   ErrInvalidMetadata,
			Op:     "decode metadata",
			Offset: base,
			Want:   flatbuffers.SizeUOffsetT,
			Have:   uint64(len(region)),
			Err:    errors.New("metadata region shorter than root offset"),
		}
	}
	root := uint32(flatbuffers.GetUOffsetT(region))
	if mode != VerifyTrusted {
		var err error
		if root, err = verifyMetadata(region, base); err != nil {
			return view, 0, err
		}
	}
	view.init(region)
	return view, root, nil
}
